package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ai-primitives/mdxld-workers/internal/compiler/frontmatter"
	"github.com/ai-primitives/mdxld-workers/internal/compiler/metadata"
)

func compileResult(t *testing.T, data map[string]any, content string) *metadata.Result {
	t.Helper()
	return metadata.Compile(&frontmatter.Document{Data: data, Content: content}, metadata.Options{})
}

func TestGenerateWorker_EmbedsMetadataAndContent(t *testing.T) {
	result := compileResult(t, map[string]any{
		"$type": "Article",
		"$worker": map[string]any{
			"name":   "articles",
			"routes": []any{"/articles/*"},
		},
	}, "# Hello\n")

	gen := NewGenerator(Options{Version: "1.2.3"})
	script, err := gen.GenerateWorker(result)
	if err != nil {
		t.Fatalf("GenerateWorker() error = %v", err)
	}

	out := string(script)
	for _, fragment := range []string{
		"mdxld-workers 1.2.3",
		"export const metadata",
		"export const content",
		`"type": "Article"`,
		`"name": "articles"`,
		`"/articles/*"`,
		`"# Hello\n"`,
		"async fetch(request)",
		"/__metadata",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("generated worker missing %q", fragment)
		}
	}
}

func TestGenerateWorker_Deterministic(t *testing.T) {
	result := compileResult(t, map[string]any{
		"$id":    "doc-1",
		"title":  "Hello",
		"$list":  []any{"a", "b"},
		"author": "someone",
	}, "body")

	gen := NewGenerator(Options{})
	first, err := gen.GenerateWorker(result)
	if err != nil {
		t.Fatalf("GenerateWorker() error = %v", err)
	}
	second, err := gen.GenerateWorker(result)
	if err != nil {
		t.Fatalf("GenerateWorker() error = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("generated output differs between identical runs")
	}
}

func TestGenerateWorker_EscapesContent(t *testing.T) {
	result := compileResult(t, map[string]any{}, "line1\n\"quoted\"\n`tick`\n")

	gen := NewGenerator(Options{})
	script, err := gen.GenerateWorker(result)
	if err != nil {
		t.Fatalf("GenerateWorker() error = %v", err)
	}

	if !strings.Contains(string(script), `\"quoted\"`) {
		t.Error("content quotes not escaped as a JSON string literal")
	}
}

func TestGenerateWorker_NilResult(t *testing.T) {
	gen := NewGenerator(Options{})
	if _, err := gen.GenerateWorker(nil); err == nil {
		t.Error("GenerateWorker(nil) error = nil, want error")
	}
}
