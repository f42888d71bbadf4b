package metadata

import "github.com/ai-primitives/mdxld-workers/internal/compiler/frontmatter"

// Compile produces the final normalized metadata for a parsed document,
// paired with its untouched body.
//
// Sources combine field-by-field, lowest precedence first:
//
//  1. built-in defaults (empty name, empty routes, default config)
//  2. the normalized generic frontmatter mapping
//  3. typed attributes surfaced by the parser
//  4. the nested worker block's name, routes and config
//  5. caller-supplied options - always win when non-empty
//
// Compile never fails: malformed frontmatter shapes degrade to pass-through
// inside a complete result, never to a partial one.
func Compile(doc *frontmatter.Document, opts Options) *Result {
	meta := Metadata{
		"name":   "",
		"routes": []any{},
	}

	normalized, _ := Normalize(doc.Data).(map[string]any)
	for key, value := range normalized {
		meta[key] = value
	}

	resolveSpecialFields(meta, doc.Attributes)

	worker, _ := meta["worker"].(map[string]any)
	if worker != nil {
		if name, ok := worker["name"].(string); ok {
			meta["name"] = name
		}
		if routes, ok := worker["routes"].([]any); ok {
			meta["routes"] = routes
		}
	}

	meta["config"] = resolveConfig(normalized, worker, opts.Config)

	if opts.Name != "" {
		meta["name"] = opts.Name
	}
	if len(opts.Routes) > 0 {
		routes := make([]any, len(opts.Routes))
		for i, r := range opts.Routes {
			routes[i] = r
		}
		meta["routes"] = routes
	}

	return &Result{Metadata: meta, Content: doc.Content}
}

// resolveConfig shallow-merges the worker configuration: built-in defaults,
// then a top-level config mapping from the document, then the worker block's
// nested config, then the caller override. Later entries win per top-level
// key - an env mapping replaces the default env wholesale rather than
// deep-merging into it.
func resolveConfig(normalized, worker map[string]any, override map[string]any) map[string]any {
	config := defaultConfig()

	layers := make([]map[string]any, 0, 3)
	if docConfig, ok := normalized["config"].(map[string]any); ok {
		layers = append(layers, docConfig)
	}
	if worker != nil {
		if workerConfig, ok := worker["config"].(map[string]any); ok {
			layers = append(layers, workerConfig)
		}
	}
	if override != nil {
		layers = append(layers, override)
	}

	for _, layer := range layers {
		for key, value := range layer {
			config[key] = value
		}
	}

	return config
}
