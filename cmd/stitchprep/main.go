package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/stitchprep/stitchprep/internal/cli"
	"github.com/stitchprep/stitchprep/internal/engine"
)

func main() {
	err := cli.Execute()
	if err == nil {
		return
	}

	// A failing step already printed its own diagnostics.
	var stepErr *engine.StepError
	if !errors.As(err, &stepErr) || stepErr.Err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(engine.ExitCode(err))
}
