package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stitchprep/stitchprep/internal/executor"
	"github.com/stitchprep/stitchprep/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records commands and answers with preset exit codes.
type fakeExecutor struct {
	codes map[string]int
	errs  map[string]error
	calls []string
	envs  []map[string]string
}

func (f *fakeExecutor) Exec(ctx context.Context, req *executor.Request) (int, error) {
	key := strings.Join(req.Command, " ")
	f.calls = append(f.calls, key)
	f.envs = append(f.envs, req.Env)
	if req.Stdout != nil {
		fmt.Fprintf(req.Stdout, "ran %s\n", key)
	}
	if err := f.errs[key]; err != nil {
		return -1, err
	}
	return f.codes[key], nil
}

func (f *fakeExecutor) Close() error { return nil }

func newTestEngine(exec executor.Executor) (*Engine, *bytes.Buffer) {
	var out bytes.Buffer
	eng := NewEngine(exec)
	eng.Stdout = &out
	eng.Stderr = &out
	return eng, &out
}

func TestEngine_Run_Success(t *testing.T) {
	exec := &fakeExecutor{}
	eng, out := newTestEngine(exec)

	err := eng.Run(context.Background(), ir.DefaultSteps(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"pip install -r requirements.txt",
		"apt-get update",
		"apt-get install -y ffmpeg",
		"ffmpeg -version",
	}, exec.calls)

	expected := strings.Join([]string{
		"Installing Python dependencies...",
		"ran pip install -r requirements.txt",
		"Installing FFmpeg...",
		"ran apt-get update",
		"ran apt-get install -y ffmpeg",
		"Verifying FFmpeg installation...",
		"ran ffmpeg -version",
		ir.SuccessMessage,
	}, "\n") + "\n"
	assert.Equal(t, expected, out.String())
	assert.Equal(t, 0, ExitCode(err))
}

func TestEngine_Run_StopsAtFirstFailure(t *testing.T) {
	steps := ir.DefaultSteps(nil)

	for i, failing := range steps {
		t.Run(failing.Name, func(t *testing.T) {
			exec := &fakeExecutor{codes: map[string]int{failing.String(): 3}}
			eng, out := newTestEngine(exec)

			err := eng.Run(context.Background(), ir.DefaultSteps(nil))
			require.Error(t, err)

			assert.Len(t, exec.calls, i+1)
			assert.Equal(t, failing.String(), exec.calls[len(exec.calls)-1])
			assert.NotContains(t, out.String(), ir.SuccessMessage)
			assert.Equal(t, 3, ExitCode(err))

			var stepErr *StepError
			require.True(t, errors.As(err, &stepErr))
			assert.Equal(t, failing.Name, stepErr.Step.Name)
			assert.Nil(t, stepErr.Err)
		})
	}
}

func TestEngine_Run_ManifestFailure(t *testing.T) {
	exec := &fakeExecutor{codes: map[string]int{"pip install -r requirements.txt": 1}}
	eng, out := newTestEngine(exec)

	err := eng.Run(context.Background(), ir.DefaultSteps(nil))
	require.Error(t, err)

	assert.NotEqual(t, 0, ExitCode(err))
	assert.Contains(t, out.String(), "Installing Python dependencies...")
	assert.NotContains(t, out.String(), "Installing FFmpeg...")
	assert.NotContains(t, out.String(), "Verifying FFmpeg installation...")
	assert.NotContains(t, out.String(), ir.SuccessMessage)
}

func TestEngine_Run_VersionCheckMissingBinary(t *testing.T) {
	exec := &fakeExecutor{errs: map[string]error{
		"ffmpeg -version": fmt.Errorf("%w: ffmpeg", executor.ErrNotFound),
	}}
	eng, out := newTestEngine(exec)

	err := eng.Run(context.Background(), ir.DefaultSteps(nil))
	require.Error(t, err)

	assert.Len(t, exec.calls, 4)
	assert.Equal(t, 127, ExitCode(err))
	assert.ErrorIs(t, err, executor.ErrNotFound)
	assert.NotContains(t, out.String(), ir.SuccessMessage)
}

func TestEngine_Run_LaunchFailure(t *testing.T) {
	exec := &fakeExecutor{errs: map[string]error{
		"apt-get update": errors.New("permission denied"),
	}}
	eng, _ := newTestEngine(exec)

	err := eng.Run(context.Background(), ir.DefaultSteps(nil))
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, err.Error(), "permission denied")
	assert.Len(t, exec.calls, 2)
}

func TestEngine_Run_Idempotent(t *testing.T) {
	exec := &fakeExecutor{}
	eng, out := newTestEngine(exec)

	require.NoError(t, eng.Run(context.Background(), ir.DefaultSteps(nil)))
	first := out.String()
	out.Reset()

	require.NoError(t, eng.Run(context.Background(), ir.DefaultSteps(nil)))
	assert.Equal(t, first, out.String())
	assert.Len(t, exec.calls, 8)
}

func TestEngine_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExecutor{}
	eng, out := newTestEngine(exec)

	err := eng.Run(ctx, ir.DefaultSteps(nil))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.calls)
	assert.Empty(t, out.String())
	assert.Equal(t, 1, ExitCode(err))
}

func TestEngine_RunWithCallback_Events(t *testing.T) {
	exec := &fakeExecutor{codes: map[string]int{"apt-get install -y ffmpeg": 100}}
	eng, _ := newTestEngine(exec)

	var events []StepEvent
	err := eng.RunWithCallback(context.Background(), ir.DefaultSteps(nil), func(event StepEvent) {
		events = append(events, event)
	})
	require.Error(t, err)

	var statuses []string
	for _, ev := range events {
		statuses = append(statuses, ev.Name+":"+ev.Status)
	}
	assert.Equal(t, []string{
		"deps:started", "deps:completed",
		"index:started", "index:completed",
		"ffmpeg:started", "ffmpeg:failed",
	}, statuses)
	assert.Equal(t, 2, events[len(events)-1].Index)
	assert.Error(t, events[len(events)-1].Error)
}

func TestEngine_RunStep_PassesEnv(t *testing.T) {
	exec := &fakeExecutor{}
	eng, _ := newTestEngine(exec)
	eng.Env = map[string]string{"PIP_NO_CACHE_DIR": "1"}

	err := eng.RunStep(context.Background(), &ir.Step{Name: "x", Command: []string{"true"}})
	require.NoError(t, err)
	require.Len(t, exec.envs, 1)
	assert.Equal(t, "1", exec.envs[0]["PIP_NO_CACHE_DIR"])
}

func TestStepError_Error(t *testing.T) {
	step := &ir.Step{Name: "verify", Command: []string{"ffmpeg", "-version"}}

	err := &StepError{Step: step, ExitCode: 2}
	assert.Equal(t, "step verify (ffmpeg -version) exited with status 2", err.Error())

	err = &StepError{Step: step, ExitCode: 127, Err: errors.New("boom")}
	assert.Equal(t, "step verify (ffmpeg -version) failed: boom", err.Error())
}

func TestExitCode(t *testing.T) {
	step := &ir.Step{Name: "deps"}
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("config"), 1},
		{"step error", &StepError{Step: step, ExitCode: 42}, 42},
		{"wrapped step error", fmt.Errorf("run: %w", &StepError{Step: step, ExitCode: 5}), 5},
		{"signal exit", &StepError{Step: step, ExitCode: -1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}
