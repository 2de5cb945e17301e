package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stitchprep/stitchprep/internal/eval"
	"github.com/stitchprep/stitchprep/internal/executor"
	"github.com/stitchprep/stitchprep/internal/ir"
)

// newExecutor builds the executor for a run. Tests replace it.
var newExecutor = executor.Load

// project is the resolved working directory and configuration of a command.
type project struct {
	dir string
	cfg *ir.Config
}

// loadProject resolves the project directory and evaluates its config.
func loadProject(cmd *cobra.Command) (*project, error) {
	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory %s: %w", projectDir, err)
	}

	evaluator := eval.NewEvaluator(dir)
	cfg, err := evaluator.LoadConfig(cmd.Context(), configFile, properties)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &project{dir: dir, cfg: cfg}, nil
}

// openExecutor loads the executor for p and returns a cleanup func.
func openExecutor(ctx context.Context, p *project) (executor.Executor, func(), error) {
	exec, err := newExecutor(ctx, p.cfg, p.dir)
	if err != nil {
		return nil, nil, err
	}
	return exec, func() { _ = exec.Close() }, nil
}

func colorize(code string) string {
	if noColor {
		return ""
	}
	return code
}

// renderSteps prints the numbered step list.
func renderSteps(w io.Writer, steps []*ir.Step) {
	for i, step := range steps {
		marker := " "
		if step.System {
			marker = "*"
		}
		fmt.Fprintf(w, "  %d.%s %-7s %s%s%s\n", i+1, marker, step.Name, colorize("\033[36m"), step, colorize("\033[0m"))
		if step.Message != "" {
			fmt.Fprintf(w, "        echo %q\n", step.Message)
		}
	}
}
