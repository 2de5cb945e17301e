package executor

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when a command binary cannot be located.
var ErrNotFound = errors.New("executable not found")

// ErrUnknownTarget is returned when a config names a target with no executor.
var ErrUnknownTarget = errors.New("unknown target")

// Request describes one command invocation.
type Request struct {
	Command []string
	Env     map[string]string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Executor runs commands in a target environment.
//
// Exec returns the command's exit code. The error is non-nil only when the
// command could not be started or its status could not be collected.
type Executor interface {
	Exec(ctx context.Context, req *Request) (int, error)
	Close() error
}

func writerOr(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
