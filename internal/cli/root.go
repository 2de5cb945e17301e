package cli

import (
	"github.com/spf13/cobra"
	"github.com/stitchprep/stitchprep/internal/logging"
)

var (
	logLevel   string
	noColor    bool
	projectDir string
	configFile string
	properties map[string]string
)

var rootCmd = &cobra.Command{
	Use:   "stitchprep",
	Short: "Provision the video stitching build environment",
	Long: `stitchprep prepares a machine or container to build the video stitching service.

Run without arguments it performs, in order, stopping at the first failure:
  • pip install -r requirements.txt
  • apt-get update
  • apt-get install -y ffmpeg
  • ffmpeg -version`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitWithWriter(logLevel, cmd.ErrOrStderr())
	},
	RunE: runApply,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "chdir", "C", ".", "Project directory containing requirements.txt")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default stitchprep.pkl in the project directory)")
	rootCmd.PersistentFlags().StringToStringVarP(&properties, "prop", "D", nil, "Set external config properties (format: key=value)")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}
