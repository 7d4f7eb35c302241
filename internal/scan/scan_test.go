package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func mkdirWithFiles(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for fname, content := range files {
		if err := os.WriteFile(filepath.Join(dir, fname), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestScanProducts_CompleteAndIncomplete(t *testing.T) {
	root := t.TempDir()
	mkdirWithFiles(t, root, "dir0", map[string]string{"hello.out": "ok"})
	mkdirWithFiles(t, root, "dir1", map[string]string{})

	pool := NewPool(2)
	result, err := pool.ScanProducts(context.Background(), "hello", root, []string{"hello.out"}, []string{"dir0", "dir1"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Complete) != 1 || result.Complete[0] != "dir0" {
		t.Fatalf("complete = %v, want [dir0]", result.Complete)
	}
}

func TestScanProducts_NoProducts(t *testing.T) {
	root := t.TempDir()
	mkdirWithFiles(t, root, "dir0", map[string]string{})

	pool := NewPool(2)
	result, err := pool.ScanProducts(context.Background(), "hello", root, nil, []string{"dir0"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Complete) != 0 {
		t.Fatalf("expected no directories complete with no products declared, got %v", result.Complete)
	}
}

func TestScanValues_MissingFileIsNull(t *testing.T) {
	root := t.TempDir()
	d0 := mkdirWithFiles(t, root, "dir0", map[string]string{})

	pool := NewPool(2)
	result, err := pool.ScanValues(context.Background(), "value.json", []string{d0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := result.Values[d0]; !ok || v != nil {
		t.Fatalf("expected nil value for missing file, got %v (ok=%v)", v, ok)
	}
}

func TestScanValues_ParsesJSON(t *testing.T) {
	root := t.TempDir()
	d0 := mkdirWithFiles(t, root, "dir0", map[string]string{"value.json": `{"x": 2}`})

	pool := NewPool(2)
	result, err := pool.ScanValues(context.Background(), "value.json", []string{d0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := result.Values[d0].(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", result.Values[d0])
	}
	if m["x"] != 2.0 {
		t.Fatalf("x = %v", m["x"])
	}
}

func TestScanValues_InvalidJSONRecordedNotFatal(t *testing.T) {
	root := t.TempDir()
	d0 := mkdirWithFiles(t, root, "dir0", map[string]string{"value.json": `not json`})

	pool := NewPool(2)
	result, err := pool.ScanValues(context.Background(), "value.json", []string{d0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if _, ok := result.Values[d0]; ok {
		t.Fatalf("expected no value recorded for invalid file")
	}
}

func TestPool_Cancel(t *testing.T) {
	pool := NewPool(2)
	if pool.Cancelled() {
		t.Fatal("should not be cancelled initially")
	}
	pool.Cancel()
	if !pool.Cancelled() {
		t.Fatal("should be cancelled after Cancel()")
	}
}
