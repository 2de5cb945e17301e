package cli

import (
	"github.com/spf13/cobra"
	"github.com/stitchprep/stitchprep/internal/engine"
	"github.com/stitchprep/stitchprep/internal/ir"
	"github.com/stitchprep/stitchprep/internal/logging"
)

var applyTarget string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run the provisioning steps",
	Long: `Runs the provisioning steps in order. The first failing step aborts the
run and its exit status becomes the exit status of stitchprep.

Running stitchprep without a subcommand is equivalent.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyTarget, "target", "", "Override the config target (host or docker)")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Lookup("target") != nil && applyTarget != "" {
		p.cfg.Target = applyTarget
		p.cfg.Normalize()
	}

	exec, closeExec, err := openExecutor(ctx, p)
	if err != nil {
		return err
	}
	defer closeExec()

	eng := engine.NewEngine(exec)
	eng.Env = p.cfg.Env
	eng.Stdout = cmd.OutOrStdout()
	eng.Stderr = cmd.ErrOrStderr()

	steps := ir.DefaultSteps(p.cfg)
	logging.Debug("starting provisioning", "target", p.cfg.Target, "steps", len(steps), "dir", p.dir)

	return eng.RunWithCallback(ctx, steps, func(event engine.StepEvent) {
		logging.Debug("step event",
			"step", event.Name,
			"index", event.Index,
			"status", event.Status,
			"duration", event.Duration,
		)
	})
}
