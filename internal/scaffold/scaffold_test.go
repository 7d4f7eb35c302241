package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesTemplateFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, Options{}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"workflow.toml", "clusters.toml", "launchers.toml", ".gitignore"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "workspace")); err != nil {
		t.Fatalf("expected default workspace dir: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "workflow.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `value_file = "value.json"`) {
		t.Fatalf("expected default value_file, got:\n%s", data)
	}
}

func TestInit_CustomWorkspaceAndSignac(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, Options{Workspace: "runs", Signac: true}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "runs")); err != nil {
		t.Fatalf("expected custom workspace dir: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "workflow.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `path = "runs"`) {
		t.Fatalf("expected custom workspace path, got:\n%s", data)
	}
	if !strings.Contains(string(data), `value_file = "signac_statepoint.json"`) {
		t.Fatalf("expected signac value file, got:\n%s", data)
	}
}

func TestInit_RefusesExistingWorkflow(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "workflow.toml"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Init(dir, Options{}); err == nil {
		t.Fatal("expected error for existing workflow.toml")
	}
}
