// Package scaffold writes a new project's starting workflow.toml and
// supporting files, deterministically.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/row/internal/ux"
)

const workflowTemplate = `[workspace]
path = %q
value_file = %q

[[action]]
name = "hello"
command = "echo hello from {directory}"
products = ["hello.out"]
`

const clustersTemplate = `# clusters.toml — cluster definitions beyond the built-in "local" fallback.
# row reads this file from $HOME/.config/row/, not from the project.
#
# [[cluster]]
# name = "delta"
# scheduler = "slurm"
#
# [cluster.identify]
# by_environment = ["CLUSTER", "delta"]
#
# [[cluster.partition]]
# name = "cpu"
# cpus_per_node = 128
# require_cpus_multiple_of = 128
`

const launchersTemplate = `# launchers.toml — named launcher prefixes (mpirun, srun, ...) available
# to action.launchers, scoped per cluster or "default" for every cluster.
# row reads this file from $HOME/.config/row/, not from the project.
#
# [mpirun.default]
# executable = "mpirun"
# processes = "-n "
`

// Options configures Init.
type Options struct {
	Workspace string // directory name under the project root whose children become units of work
	Signac    bool   // use signac_statepoint.json per directory instead of a flat value file
}

// Init writes a new project's workflow.toml, clusters.toml, launchers.toml,
// and an empty workspace directory into targetDir. It refuses to overwrite
// an existing workflow.toml.
func Init(targetDir string, opts Options) error {
	workflowPath := filepath.Join(targetDir, "workflow.toml")
	if _, err := os.Stat(workflowPath); err == nil {
		return fmt.Errorf("workflow.toml already exists in %s", targetDir)
	}

	workspace := opts.Workspace
	if workspace == "" {
		workspace = "workspace"
	}
	valueFile := "value.json"
	if opts.Signac {
		valueFile = "signac_statepoint.json"
	}

	files := map[string]string{
		"workflow.toml":  fmt.Sprintf(workflowTemplate, workspace, valueFile),
		"clusters.toml":  clustersTemplate,
		"launchers.toml": launchersTemplate,
	}

	var written []string
	for relPath, content := range files {
		fullPath := filepath.Join(targetDir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", relPath, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", relPath, err)
		}
		written = append(written, relPath)
	}

	if err := os.MkdirAll(filepath.Join(targetDir, workspace), 0755); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}
	written = append(written, workspace+"/")

	gitignorePath := filepath.Join(targetDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); err != nil {
		if err := os.WriteFile(gitignorePath, []byte(".row/\n"), 0644); err != nil {
			return fmt.Errorf("writing .gitignore: %w", err)
		}
		written = append(written, ".gitignore")
	}

	printSuccess(written)
	return nil
}

func printSuccess(written []string) {
	fmt.Printf("\n%s%s✓ Initialized project%s\n\n", ux.Bold, ux.Green, ux.Reset)
	fmt.Printf("  Created:\n")
	for _, path := range written {
		fmt.Printf("    %s%s%s\n", ux.Cyan, path, ux.Reset)
	}
	fmt.Printf("\n  %sCustomize workflow.toml; copy clusters.toml and launchers.toml to ~/.config/row/ to use them.%s\n", ux.Dim, ux.Reset)
	fmt.Printf("\n  Next: %srow submit --dry-run%s\n\n", ux.Cyan, ux.Reset)
}
