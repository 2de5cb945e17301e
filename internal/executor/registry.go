package executor

import (
	"context"
	"fmt"

	"github.com/stitchprep/stitchprep/internal/ir"
)

// Load builds the executor for cfg.Target. dir is the project directory:
// the working directory on the host, the bind-mount source for docker.
func Load(ctx context.Context, cfg *ir.Config, dir string) (Executor, error) {
	switch cfg.Target {
	case ir.TargetHost, "":
		return NewHost(WithDir(dir)), nil
	case ir.TargetDocker:
		target := cfg.Docker
		if target == nil {
			target = &ir.DockerTarget{}
		}
		d, err := NewDocker(ctx, target, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare docker target: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, cfg.Target)
	}
}
