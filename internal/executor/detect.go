package executor

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/stitchprep/stitchprep/internal/ir"
)

// LookPath resolves a binary on PATH. Tests replace it.
var LookPath = exec.LookPath

// Detect runs `ffmpeg -version` through e and reports whether FFmpeg works.
// path is filled only for the host target, where PATH can be inspected.
func Detect(ctx context.Context, e Executor, target string) *ir.Report {
	report := &ir.Report{
		Status:        "degraded",
		Target:        target,
		FFmpegVersion: "Not available",
	}

	if target == ir.TargetHost {
		if p, err := LookPath("ffmpeg"); err == nil {
			report.FFmpegPath = p
		}
	}

	var stdout bytes.Buffer
	code, err := e.Exec(ctx, &Request{
		Command: []string{"ffmpeg", "-version"},
		Stdout:  &stdout,
	})
	if err != nil || code != 0 {
		return report
	}

	report.Status = "healthy"
	report.FFmpegAvailable = true
	report.FFmpegVersion = firstLine(stdout.String())
	return report
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
