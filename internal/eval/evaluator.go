package eval

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/apple/pkl-go/pkl"
	"github.com/stitchprep/stitchprep/internal/ir"
	"github.com/stitchprep/stitchprep/internal/logging"
)

// DefaultEntryPoint is the config file looked up in the project directory.
const DefaultEntryPoint = "stitchprep.pkl"

// ErrInvalidConfig is returned when a config evaluates but is unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

// Evaluator handles PKL evaluation into IR types.
type Evaluator struct {
	projectDir string
}

func NewEvaluator(projectDir string) *Evaluator {
	return &Evaluator{
		projectDir: projectDir,
	}
}

// Exists reports whether entryPoint is present in the project directory.
func (e *Evaluator) Exists(entryPoint string) bool {
	_, err := os.Stat(e.path(entryPoint))
	return err == nil
}

// LoadConfig evaluates the config file. An empty entryPoint selects
// DefaultEntryPoint, which falls back to the default config when missing
// without starting a PKL evaluator. An explicit entryPoint must exist.
func (e *Evaluator) LoadConfig(ctx context.Context, entryPoint string, properties map[string]string) (*ir.Config, error) {
	explicit := entryPoint != ""
	if !explicit {
		entryPoint = DefaultEntryPoint
	}
	if !e.Exists(entryPoint) {
		if explicit {
			return nil, fmt.Errorf("config file %s not found: %w", e.path(entryPoint), os.ErrNotExist)
		}
		logging.Debug("no config file, using defaults", "path", e.path(entryPoint))
		return ir.DefaultConfig(), nil
	}

	cfg, err := e.evaluate(ctx, entryPoint, properties)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (e *Evaluator) evaluate(ctx context.Context, entryPoint string, properties map[string]string) (*ir.Config, error) {
	opts := []func(*pkl.EvaluatorOptions){pkl.PreconfiguredOptions}
	if len(properties) > 0 {
		opts = append(opts, func(o *pkl.EvaluatorOptions) {
			if o.Properties == nil {
				o.Properties = make(map[string]string)
			}
			for k, v := range properties {
				o.Properties[k] = v
			}
		})
	}

	var evaluator pkl.Evaluator
	var err error
	if e.hasProject() {
		u, perr := url.Parse("file://" + e.projectDir + "/")
		if perr != nil {
			return nil, fmt.Errorf("failed to parse project directory URL: %w", perr)
		}
		evaluator, err = pkl.NewProjectEvaluator(ctx, u, opts...)
	} else {
		evaluator, err = pkl.NewEvaluator(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create PKL evaluator: %w", err)
	}
	defer evaluator.Close()

	var cfg ir.Config
	if err := evaluator.EvaluateModule(ctx, pkl.FileSource(e.path(entryPoint)), &cfg); err != nil {
		return nil, fmt.Errorf("failed to evaluate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields that PKL typing alone cannot enforce.
func Validate(cfg *ir.Config) error {
	switch cfg.Target {
	case ir.TargetHost:
		if cfg.Docker != nil && (cfg.Docker.Image != "" || cfg.Docker.Container != "") {
			logging.Warn("docker settings ignored for host target")
		}
	case ir.TargetDocker:
		if cfg.Docker != nil && cfg.Docker.Image != "" && cfg.Docker.Container != "" {
			return fmt.Errorf("%w: docker.image and docker.container are mutually exclusive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown target %q (want %q or %q)", ErrInvalidConfig, cfg.Target, ir.TargetHost, ir.TargetDocker)
	}
	return nil
}

// hasProject reports whether the project directory carries a PklProject,
// whose dependencies the project evaluator resolves.
func (e *Evaluator) hasProject() bool {
	_, err := os.Stat(filepath.Join(e.projectDir, "PklProject"))
	return err == nil
}

func (e *Evaluator) path(entryPoint string) string {
	if filepath.IsAbs(entryPoint) {
		return entryPoint
	}
	return filepath.Join(e.projectDir, entryPoint)
}
