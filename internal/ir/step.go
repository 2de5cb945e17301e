package ir

import (
	"sort"
	"strings"
)

const (
	// Manifest is the dependency manifest read by pip, relative to the working directory.
	Manifest = "requirements.txt"

	// SuccessMessage is printed once every step has succeeded.
	SuccessMessage = "Build completed successfully!"
)

// Step is a single command of the provisioning sequence.
type Step struct {
	Name    string
	Message string // printed before the step runs, may be empty
	Command []string
	System  bool // modifies system packages
}

// String renders the step command as it would be typed in a shell.
func (s *Step) String() string {
	return strings.Join(s.Command, " ")
}

// DefaultSteps returns the fixed provisioning sequence.
func DefaultSteps(cfg *Config) []*Step {
	steps := []*Step{
		{
			Name:    "deps",
			Message: "Installing Python dependencies...",
			Command: []string{"pip", "install", "-r", Manifest},
		},
		{
			Name:    "index",
			Message: "Installing FFmpeg...",
			Command: []string{"apt-get", "update"},
			System:  true,
		},
		{
			Name:    "ffmpeg",
			Command: []string{"apt-get", "install", "-y", "ffmpeg"},
			System:  true,
		},
		{
			Name:    "verify",
			Message: "Verifying FFmpeg installation...",
			Command: []string{"ffmpeg", "-version"},
		},
	}

	if cfg != nil && cfg.Sudo {
		prefix := sudoPrefix(cfg.Env)
		for _, s := range steps {
			if s.System {
				s.Command = append(append([]string{}, prefix...), s.Command...)
			}
		}
	}
	return steps
}

// sudoPrefix keeps the step environment across sudo's env_reset.
func sudoPrefix(env map[string]string) []string {
	keys := []string{"DEBIAN_FRONTEND"}
	for k := range env {
		if k != "DEBIAN_FRONTEND" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys[1:])
	return []string{"sudo", "--preserve-env=" + strings.Join(keys, ",")}
}
