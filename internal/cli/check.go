package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stitchprep/stitchprep/internal/executor"
)

var errDegraded = errors.New("ffmpeg is not available")

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether FFmpeg is usable",
	Long: `Runs ffmpeg -version in the configured target and reports the result.
Exits non-zero when FFmpeg is missing or broken.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	exec, closeExec, err := openExecutor(ctx, p)
	if err != nil {
		return err
	}
	defer closeExec()

	report := executor.Detect(ctx, exec, p.cfg.Target)
	out := cmd.OutOrStdout()

	if checkJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		color := "\033[32m"
		if !report.FFmpegAvailable {
			color = "\033[31m"
		}
		fmt.Fprintf(out, "Status:  %s%s%s\n", colorize(color), report.Status, colorize("\033[0m"))
		fmt.Fprintf(out, "Target:  %s\n", report.Target)
		fmt.Fprintf(out, "FFmpeg:  %s\n", report.FFmpegVersion)
		if report.FFmpegPath != "" {
			fmt.Fprintf(out, "Path:    %s\n", report.FFmpegPath)
		}
	}

	if !report.FFmpegAvailable {
		return errDegraded
	}
	return nil
}
