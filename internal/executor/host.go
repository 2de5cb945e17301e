package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
)

// defaultEnv is applied to every command unless the request overrides it.
var defaultEnv = map[string]string{
	"DEBIAN_FRONTEND": "noninteractive",
}

// Host runs commands directly on the machine running stitchprep.
type Host struct {
	dir string
}

// HostOption configures a Host executor.
type HostOption func(*Host)

// WithDir sets the working directory for executed commands.
func WithDir(dir string) HostOption {
	return func(h *Host) {
		h.dir = dir
	}
}

func NewHost(opts ...HostOption) *Host {
	h := &Host{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Host) Exec(ctx context.Context, req *Request) (int, error) {
	if len(req.Command) == 0 {
		return -1, fmt.Errorf("empty command")
	}

	path, err := LookPath(req.Command[0])
	if err != nil {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, req.Command[0])
	}

	cmd := exec.CommandContext(ctx, path, req.Command[1:]...)
	cmd.Dir = h.dir
	cmd.Env = append(cmd.Environ(), envList(mergeEnv(defaultEnv, req.Env))...)
	cmd.Stdout = writerOr(req.Stdout)
	cmd.Stderr = writerOr(req.Stderr)

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run %s: %w", req.Command[0], err)
}

func (h *Host) Close() error {
	return nil
}

func mergeEnv(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// envList renders env as sorted KEY=value pairs.
func envList(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(m))
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, m[k]))
	}
	return env
}
