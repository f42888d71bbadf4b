// Package codegen generates deployable worker ES modules from compiled
// MDX-LD documents. The generated script embeds the normalized metadata and
// the document body, and exports a fetch handler that serves both.
package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/ai-primitives/mdxld-workers/internal/compiler/metadata"
)

// workerTemplate is the generated worker module. metadata and content are
// embedded as JSON literals, which are valid JavaScript expressions; the
// fetch handler serves /__metadata as JSON and every configured route with
// the document body.
const workerTemplate = `// Generated by mdxld-workers {{.Version}}. Do not edit.
export const metadata = {{.MetadataJSON}};
export const content = {{.ContentJSON}};

const routes = metadata.routes ?? [];

function matches(pattern, path) {
  if (pattern.endsWith("*")) {
    return path.startsWith(pattern.slice(0, -1));
  }
  return path === pattern;
}

export default {
  async fetch(request) {
    const url = new URL(request.url);
    if (url.pathname === "/__metadata") {
      return new Response(JSON.stringify(metadata), {
        headers: { "content-type": "application/json; charset=utf-8" },
      });
    }
    if (routes.length === 0 || routes.some((r) => matches(r, url.pathname))) {
      return new Response(content, {
        headers: {
          "content-type": "text/markdown; charset=utf-8",
          "x-mdxld-type": metadata.type ?? "",
          "x-mdxld-id": metadata.id ?? "",
        },
      });
    }
    return new Response("not found", { status: 404 });
  },
};
`

// Options configure worker generation.
type Options struct {
	// Version is stamped into the generated header.
	Version string
}

// Generator renders worker modules from compile results.
type Generator struct {
	tmpl    *template.Template
	version string
}

// NewGenerator creates a worker module generator.
func NewGenerator(opts Options) *Generator {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Generator{
		tmpl:    template.Must(template.New("worker").Parse(workerTemplate)),
		version: version,
	}
}

// GenerateWorker renders the worker ES module for a compile result.
// Output is deterministic for identical input: metadata serializes with
// sorted keys, so the bytes are stable across runs.
func (g *Generator) GenerateWorker(result *metadata.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("compile result cannot be nil")
	}

	metaJSON, err := json.MarshalIndent(result.Metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}
	contentJSON, err := json.Marshal(result.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize content: %w", err)
	}

	var buf bytes.Buffer
	err = g.tmpl.Execute(&buf, map[string]string{
		"Version":      g.version,
		"MetadataJSON": string(metaJSON),
		"ContentJSON":  string(contentJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render worker module: %w", err)
	}

	return buf.Bytes(), nil
}
