package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestWriteAndReadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "doc.json")
	src := map[string]any{"model": "gemini-2.0-flash", "count": float64(3)}

	if err := WriteJSON(path, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]any
	if err := ReadJSON(path, &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["model"] != "gemini-2.0-flash" || got["count"] != float64(3) {
		t.Errorf("unexpected document: %+v", got)
	}
}

func TestReadJSON_Missing(t *testing.T) {
	var got map[string]any
	if err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &got); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := ReadJSON(path, &got); err == nil {
		t.Fatal("expected error for malformed document")
	}
}

func TestListJSONFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := ListJSONFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 json files, got %v", paths)
	}
	if filepath.Base(paths[0]) != "a.json" || filepath.Base(paths[1]) != "b.json" {
		t.Errorf("expected sorted json files, got %v", paths)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input  string
		suffix string
		outDir string
		want   string
	}{
		{filepath.Join("in", "req.json"), "_gemini", "", filepath.Join("in", "req_gemini.json")},
		{filepath.Join("in", "req.json"), "_openai", "out", filepath.Join("out", "req_openai.json")},
		{"req.json", "_gemini", "", "req_gemini.json"},
	}
	for _, tt := range tests {
		if got := OutputPath(tt.input, tt.suffix, tt.outDir); got != tt.want {
			t.Errorf("OutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.suffix, tt.outDir, got, tt.want)
		}
	}
}

func TestProcessFolder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ok1.json", "ok2.json", "bad.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var mu sync.Mutex
	seen := make(map[string]bool)
	summary, err := ProcessFolder(context.Background(), dir, 2, func(ctx context.Context, inputPath string) error {
		mu.Lock()
		seen[filepath.Base(inputPath)] = true
		mu.Unlock()
		if strings.HasPrefix(filepath.Base(inputPath), "bad") {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 3 || summary.Succeeded != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(seen) != 3 {
		t.Errorf("expected every file visited, got %v", seen)
	}
	if msg, ok := summary.Failed[filepath.Join(dir, "bad.json")]; !ok || msg != "boom" {
		t.Errorf("expected bad.json failure recorded, got %+v", summary.Failed)
	}
}

func TestProcessFolder_MissingDir(t *testing.T) {
	_, err := ProcessFolder(context.Background(), filepath.Join(t.TempDir(), "nope"), 1, func(ctx context.Context, inputPath string) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
