package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/stitchprep/stitchprep/internal/executor"
	"github.com/stitchprep/stitchprep/internal/ir"
	"github.com/stitchprep/stitchprep/internal/logging"
)

// exitNotFound is the status a shell reports for a command it cannot find.
const exitNotFound = 127

// ErrCancelled is returned when the context ends between steps.
var ErrCancelled = errors.New("provisioning cancelled")

// StepError reports a step that exited non-zero or could not be started.
type StepError struct {
	Step     *ir.Step
	ExitCode int
	Err      error // launch failure, nil for a plain non-zero exit
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %s (%s) failed: %v", e.Step.Name, e.Step, e.Err)
	}
	return fmt.Sprintf("step %s (%s) exited with status %d", e.Step.Name, e.Step, e.ExitCode)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepEvent represents a progress event during a run.
type StepEvent struct {
	Index    int
	Name     string
	Status   string // "started", "completed", "failed"
	Duration time.Duration
	Error    error
}

// StepCallback is called for each step event if set.
type StepCallback func(event StepEvent)

// Engine runs provisioning steps one after another and stops at the first
// failure. Step output goes to Stdout and Stderr untouched.
type Engine struct {
	executor executor.Executor
	Env      map[string]string
	Stdout   io.Writer
	Stderr   io.Writer
}

func NewEngine(exec executor.Executor) *Engine {
	return &Engine{
		executor: exec,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// RunStep executes a single step and returns a *StepError unless it exits 0.
func (e *Engine) RunStep(ctx context.Context, step *ir.Step) error {
	logging.Debug("running step", "step", step.Name, "command", step.String())

	code, err := e.executor.Exec(ctx, &executor.Request{
		Command: step.Command,
		Env:     e.Env,
		Stdout:  e.Stdout,
		Stderr:  e.Stderr,
	})
	if err != nil {
		code = 1
		if errors.Is(err, executor.ErrNotFound) {
			code = exitNotFound
		}
		return &StepError{Step: step, ExitCode: code, Err: err}
	}
	if code != 0 {
		return &StepError{Step: step, ExitCode: code}
	}
	return nil
}

// Run executes steps in order and prints the success message when all of
// them succeed.
func (e *Engine) Run(ctx context.Context, steps []*ir.Step) error {
	return e.RunWithCallback(ctx, steps, nil)
}

// RunWithCallback executes steps in order with progress event callbacks.
// Nothing is printed after a failing step.
func (e *Engine) RunWithCallback(ctx context.Context, steps []*ir.Step, callback StepCallback) error {
	emit := func(event StepEvent) {
		if callback != nil {
			callback(event)
		}
	}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		if step.Message != "" {
			fmt.Fprintln(e.Stdout, step.Message)
		}

		start := time.Now()
		emit(StepEvent{Index: i, Name: step.Name, Status: "started"})
		if err := e.RunStep(ctx, step); err != nil {
			emit(StepEvent{Index: i, Name: step.Name, Status: "failed", Duration: time.Since(start), Error: err})
			logging.Debug("step failed", "step", step.Name, "error", err)
			return err
		}
		emit(StepEvent{Index: i, Name: step.Name, Status: "completed", Duration: time.Since(start)})
	}

	fmt.Fprintln(e.Stdout, ir.SuccessMessage)
	return nil
}

// ExitCode maps a run error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) && stepErr.ExitCode > 0 {
		return stepErr.ExitCode
	}
	return 1
}
