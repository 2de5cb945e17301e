package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stitchprep/stitchprep/internal/ir"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the steps a run would execute",
	Long: `Prints the provisioning steps for the resolved configuration without
executing anything. Steps marked with * modify system packages.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	steps := ir.DefaultSteps(p.cfg)

	fmt.Fprintf(out, "Target:  %s\n", describeTarget(p.cfg))
	fmt.Fprintf(out, "Project: %s\n\n", p.dir)
	fmt.Fprintf(out, "stitchprep will run %d steps, stopping at the first failure:\n", len(steps))
	renderSteps(out, steps)
	fmt.Fprintf(out, "\nOn success: echo %q\n", ir.SuccessMessage)
	return nil
}

func describeTarget(cfg *ir.Config) string {
	if cfg.Target != ir.TargetDocker || cfg.Docker == nil {
		return cfg.Target
	}
	if cfg.Docker.Container != "" {
		return fmt.Sprintf("docker (container %s)", cfg.Docker.Container)
	}
	if cfg.Docker.Image == "" {
		return "docker (default image)"
	}
	return fmt.Sprintf("docker (image %s)", cfg.Docker.Image)
}
