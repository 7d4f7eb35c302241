package scheduler

import "testing"

func TestExpandVars(t *testing.T) {
	got := ExpandVars("hello $NAME", map[string]string{"NAME": "world"})
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandCommand_Directory(t *testing.T) {
	got, err := ExpandCommand(`echo "Hello, {directory}!"`, "dir0", "/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != `echo "Hello, dir0!"` {
		t.Fatalf("got %q", got)
	}
}

func TestExpandCommand_Pointer(t *testing.T) {
	value := map[string]any{"seed": 42.0}
	got, err := ExpandCommand(`run --seed {/seed}`, "dir0", "/ws", value)
	if err != nil {
		t.Fatal(err)
	}
	if got != "run --seed 42" {
		t.Fatalf("got %q", got)
	}
}

func TestExpandCommand_MissingPointer(t *testing.T) {
	_, err := ExpandCommand(`run --seed {/seed}`, "dir0", "/ws", map[string]any{})
	if err == nil {
		t.Fatal("expected error for missing pointer")
	}
}

func TestExpandCommand_WholeValue(t *testing.T) {
	value := map[string]any{"seed": 1.0}
	got, err := ExpandCommand(`run --config '{}'`, "dir0", "/ws", value)
	if err != nil {
		t.Fatal(err)
	}
	if got != `run --config '{"seed":1}'` {
		t.Fatalf("got %q", got)
	}
}

func TestExpandCommandAll_Directories(t *testing.T) {
	got, err := ExpandCommandAll(`process {directories}`, []string{"dir0", "dir1"}, "/ws")
	if err != nil {
		t.Fatal(err)
	}
	if got != "process dir0 dir1" {
		t.Fatalf("got %q", got)
	}
}
