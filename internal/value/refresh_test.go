package value

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jorge-barreto/row/internal/scan"
)

func TestRefresh_DiscoversAndDrops(t *testing.T) {
	ws := t.TempDir()
	for _, name := range []string{"dir0", "dir1"} {
		if err := os.MkdirAll(filepath.Join(ws, name), 0755); err != nil {
			t.Fatal(err)
		}
	}
	data, _ := json.Marshal(map[string]int{"n": 1})
	if err := os.WriteFile(filepath.Join(ws, "dir0", "value.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	s := &Store{stateDir: t.TempDir(), values: make(map[string]any)}
	pool := scan.NewPool(2)

	if err := s.Refresh(context.Background(), ws, "value.json", pool, nil); err != nil {
		t.Fatal(err)
	}
	if len(s.Directories()) != 2 {
		t.Fatalf("directories = %v, want 2", s.Directories())
	}
	v, ok := s.Value("dir0")
	if !ok {
		t.Fatal("expected dir0 value cached")
	}
	m, ok := v.(map[string]any)
	if !ok || m["n"].(float64) != 1 {
		t.Fatalf("dir0 value = %#v, want {n:1}", v)
	}

	if err := os.RemoveAll(filepath.Join(ws, "dir1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Refresh(context.Background(), ws, "value.json", pool, nil); err != nil {
		t.Fatal(err)
	}
	if len(s.Directories()) != 1 {
		t.Fatalf("directories after drop = %v, want 1", s.Directories())
	}
}

func TestRefresh_ProgressCallback(t *testing.T) {
	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, "dir0"), 0755); err != nil {
		t.Fatal(err)
	}

	s := &Store{stateDir: t.TempDir(), values: make(map[string]any)}
	pool := scan.NewPool(2)

	var calls int
	onProgress := func(done, total int) { calls++ }

	if err := s.Refresh(context.Background(), ws, "value.json", pool, onProgress); err != nil {
		t.Fatal(err)
	}
	if calls == 0 {
		t.Fatal("expected onProgress to be called for the newly discovered directory")
	}
}
