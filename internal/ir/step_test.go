package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSteps(t *testing.T) {
	steps := DefaultSteps(DefaultConfig())
	require.Len(t, steps, 4)

	tests := []struct {
		name    string
		message string
		command string
		system  bool
	}{
		{"deps", "Installing Python dependencies...", "pip install -r requirements.txt", false},
		{"index", "Installing FFmpeg...", "apt-get update", true},
		{"ffmpeg", "", "apt-get install -y ffmpeg", true},
		{"verify", "Verifying FFmpeg installation...", "ffmpeg -version", false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, steps[i].Name)
			assert.Equal(t, tt.message, steps[i].Message)
			assert.Equal(t, tt.command, steps[i].String())
			assert.Equal(t, tt.system, steps[i].System)
		})
	}
}

func TestDefaultSteps_Sudo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sudo = true

	var commands []string
	for _, s := range DefaultSteps(cfg) {
		commands = append(commands, s.String())
	}
	assert.Equal(t, []string{
		"pip install -r requirements.txt",
		"sudo --preserve-env=DEBIAN_FRONTEND apt-get update",
		"sudo --preserve-env=DEBIAN_FRONTEND apt-get install -y ffmpeg",
		"ffmpeg -version",
	}, commands)
}

func TestDefaultSteps_FreshSlices(t *testing.T) {
	cfg := &Config{Sudo: true}
	DefaultSteps(cfg)

	// A second call must not stack another sudo prefix.
	steps := DefaultSteps(cfg)
	assert.Equal(t, "sudo --preserve-env=DEBIAN_FRONTEND apt-get update", steps[1].String())
}

func TestDefaultSteps_SudoPreservesEnv(t *testing.T) {
	cfg := &Config{
		Sudo: true,
		Env: map[string]string{
			"PIP_NO_CACHE_DIR": "1",
			"DEBIAN_FRONTEND":  "noninteractive",
			"APT_PROXY":        "http://cache:3142",
		},
	}

	steps := DefaultSteps(cfg)
	assert.Equal(t, "sudo --preserve-env=DEBIAN_FRONTEND,APT_PROXY,PIP_NO_CACHE_DIR apt-get install -y ffmpeg", steps[2].String())
	assert.Equal(t, "pip install -r requirements.txt", steps[0].String())
}

func TestConfig_Normalize(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()
	assert.Equal(t, TargetHost, cfg.Target)
	assert.NotNil(t, cfg.Env)
	assert.Nil(t, cfg.Docker)

	cfg = &Config{Target: TargetDocker}
	cfg.Normalize()
	assert.NotNil(t, cfg.Docker)
}
