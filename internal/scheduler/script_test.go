package scheduler

import (
	"strings"
	"testing"
)

func TestSynthesize_PerDirectoryLoop(t *testing.T) {
	script, err := Synthesize(ScriptParams{
		Action:        "hello",
		Command:       `echo "Hello, {directory}!"`,
		Directories:   []string{"dir0", "dir1"},
		WorkspacePath: "/ws",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, `Hello, dir0!`) || !strings.Contains(script, `Hello, dir1!`) {
		t.Fatalf("script missing expanded commands:\n%s", script)
	}
	if !strings.Contains(script, "directories=(") {
		t.Fatalf("script missing directories array:\n%s", script)
	}
}

func TestSynthesize_DirectoriesForm(t *testing.T) {
	script, err := Synthesize(ScriptParams{
		Action:        "batch",
		Command:       "process {directories}",
		Directories:   []string{"dir0", "dir1"},
		WorkspacePath: "/ws",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, "process dir0 dir1") {
		t.Fatalf("script missing batch invocation:\n%s", script)
	}
}

func TestSynthesize_ScanTrap(t *testing.T) {
	script, err := Synthesize(ScriptParams{
		Action:      "hello",
		Command:     "echo {directory}",
		Directories: []string{"dir0"},
		ScanCommand: "row scan --action hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(script, "trap") || !strings.Contains(script, "row scan --action hello") {
		t.Fatalf("script missing exit trap:\n%s", script)
	}
}
