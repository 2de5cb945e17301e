package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/stitchprep/stitchprep/internal/eval"
	"github.com/stitchprep/stitchprep/internal/ir"
)

const configTemplate = `// stitchprep configuration
//
// The provisioning steps are fixed; this file only chooses where and how
// they run.

// "host" runs the steps on this machine, "docker" inside a container.
target = "host"

// Prefix apt-get steps with sudo.
sudo = false

// Extra environment for every step.
env = new Mapping {
  ["PIP_DISABLE_PIP_VERSION_CHECK"] = "1"
}

// Used when target = "docker". Set either image or container.
docker {
  image = "python:3.11-slim"
  // container = "build-env"
  workDir = "/workspace"
  keep = false
}
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a stitchprep.pkl template",
	Long:  `Writes a commented configuration template and an empty requirements.txt when they do not exist.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	dir, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve project directory %s: %w", projectDir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{eval.DefaultEntryPoint, configTemplate},
		{ir.Manifest, ""},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "Kept existing %s\n", f.name)
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.name, err)
		}
		fmt.Fprintf(out, "Created %s\n", f.name)
	}

	fmt.Fprintln(out, "\nstitchprep initialized successfully!")
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. List Python packages in requirements.txt")
	fmt.Fprintln(out, "  2. Run 'stitchprep plan' to review the steps")
	fmt.Fprintln(out, "  3. Run 'stitchprep' to provision")
	return nil
}
