package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindSourceFiles(t *testing.T) {
	tmpDir := t.TempDir()

	mustWrite := func(rel string) {
		path := filepath.Join(tmpDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}

	mustWrite("index.mdx")
	mustWrite("guide.md")
	mustWrite("nested/api.mdx")
	mustWrite("notes.txt")
	mustWrite(".hidden/secret.mdx")

	files, err := FindSourceFiles(tmpDir)
	if err != nil {
		t.Fatalf("FindSourceFiles failed: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("expected 3 source files, got %d: %v", len(files), files)
	}

	for _, file := range files {
		if filepath.Ext(file) != ".mdx" && filepath.Ext(file) != ".md" {
			t.Errorf("unexpected file in results: %s", file)
		}
	}
}

func TestFindSourceFiles_MissingDir(t *testing.T) {
	if _, err := FindSourceFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"docs/page.mdx", true},
		{"docs/page.md", true},
		{"docs/page.markdown", false},
		{"docs/page.txt", false},
		{"docs/page", false},
	}

	for _, tt := range tests {
		if got := IsSourceFile(tt.path); got != tt.want {
			t.Errorf("IsSourceFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
