package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stitchprep/stitchprep/internal/eval"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the PKL configuration file",
	Long:  `Evaluates the configuration file and checks the target settings.`,
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Validating configuration...")

	entry := configFile
	if entry == "" {
		entry = eval.DefaultEntryPoint
	}

	fmt.Fprintf(out, "Checking %s... ", entry)
	p, err := loadProject(cmd)
	if err != nil {
		fmt.Fprintln(out, "FAILED")
		return fmt.Errorf("validation failed: %w", err)
	}
	if !eval.NewEvaluator(p.dir).Exists(entry) {
		fmt.Fprintln(out, "not found, using defaults")
	} else {
		fmt.Fprintln(out, "OK")
	}

	fmt.Fprintf(out, "\nConfiguration is valid! (target: %s)\n", describeTarget(p.cfg))
	return nil
}
