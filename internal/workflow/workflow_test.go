package workflow

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeWorkflow(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "workflow.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Minimal(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir, `
[workspace]
path = "workspace"

[[action]]
name = "hello"
command = "echo {directory}"
`)
	wf, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(wf.Actions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(wf.Actions))
	}
	if wf.Actions[0].Command != "echo {directory}" {
		t.Fatalf("command = %q", wf.Actions[0].Command)
	}
}

func TestLoad_MissingWorkspacePath(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir, `
[[action]]
name = "hello"
command = "echo"
`)
	_, err := Load(path, dir)
	if err == nil || !strings.Contains(err.Error(), "path") {
		t.Fatalf("expected workspace path error, got %v", err)
	}
}

func TestLoad_DefaultInheritance(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir, `
[workspace]
path = "workspace"

[default.action]
launchers = ["mpi"]

[[action]]
name = "hello"
command = "echo"
`)
	wf, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(wf.Actions[0].Launchers) != 1 || wf.Actions[0].Launchers[0] != "mpi" {
		t.Fatalf("launchers = %v", wf.Actions[0].Launchers)
	}
}

func TestLoad_FromInheritance_SelfWins(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir, `
[workspace]
path = "workspace"

[[action]]
name = "base"
command = "echo base"
launchers = ["mpi"]

[[action]]
name = "child"
from = "base"
command = "echo child"
`)
	wf, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	child := wf.ActionsByName("child")[0]
	if child.Command != "echo child" {
		t.Fatalf("self command should win, got %q", child.Command)
	}
	if len(child.Launchers) != 1 || child.Launchers[0] != "mpi" {
		t.Fatalf("launchers should be inherited from base, got %v", child.Launchers)
	}
}

func TestLoad_UnknownPreviousAction(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir, `
[workspace]
path = "workspace"

[[action]]
name = "a"
command = "echo"
previous_actions = ["nope"]
`)
	_, err := Load(path, dir)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Fatalf("expected unknown previous_actions error, got %v", err)
	}
}

func TestLoad_SameNamedVariantsMustAgree(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkflow(t, dir, `
[workspace]
path = "workspace"

[[action]]
name = "a"
command = "echo 1"
products = ["x.out"]

[[action]]
name = "a"
command = "echo 2"
products = ["y.out"]
`)
	_, err := Load(path, dir)
	if err == nil || !strings.Contains(err.Error(), "same-named entries") {
		t.Fatalf("expected variant disagreement error, got %v", err)
	}
}

func TestValidateResources_MutuallyExclusive(t *testing.T) {
	a := Action{Name: "a", Resources: Resources{ProcessesPerSubmission: 1, ProcessesPerDirectory: 1}}
	if err := validateResources(&a); err == nil {
		t.Fatal("expected mutually exclusive error")
	}
}

func TestValidateGroup_UnknownOperator(t *testing.T) {
	a := Action{Name: "a", Group: GroupSpec{Include: []Include{{Condition: &Condition{Pointer: "/x", Op: "~=", Operand: 1.0}}}}}
	if err := validateGroup(&a); err == nil {
		t.Fatal("expected unknown operator error")
	}
}
