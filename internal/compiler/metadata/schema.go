// Package metadata implements the MDX-LD frontmatter normalizer: the pass
// that turns a loosely-structured parsed frontmatter mapping - plain, "@"-
// and "$"-prefixed keys mixed freely - into one canonical metadata object
// where every special field is readable under all three spellings, nested
// values are normalized recursively, and worker identity is folded in from
// every source under a fixed precedence order.
//
// The pass is purely functional: it never mutates its input, holds no shared
// state between invocations, and is safe for arbitrarily many concurrent
// compiles without coordination.
package metadata

// Metadata is the fully normalized metadata object handed to rendering and
// codegen. It is a plain JSON-serializable mapping; the typed accessors
// cover the fields the rest of the toolchain reads structurally.
//
// Invariants after Compile:
//   - name is a string (default ""), routes a []any of strings (default
//     empty), config a mapping with at least memory and env.
//   - every special field present in the source is readable under its
//     unprefixed, "@"-prefixed and "$"-prefixed spellings, all equal.
type Metadata map[string]any

// Name returns the worker name, empty string when unset.
func (m Metadata) Name() string {
	name, _ := m["name"].(string)
	return name
}

// Routes returns the worker route patterns in source order.
func (m Metadata) Routes() []string {
	raw, _ := m["routes"].([]any)
	routes := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			routes = append(routes, s)
		}
	}
	return routes
}

// Config returns the worker runtime configuration mapping. Always non-nil
// after Compile.
func (m Metadata) Config() map[string]any {
	cfg, _ := m["config"].(map[string]any)
	return cfg
}

// Type returns the document's linked-data type, empty when unset.
func (m Metadata) Type() string {
	t, _ := m["type"].(string)
	return t
}

// ID returns the document's linked-data identifier, empty when unset.
func (m Metadata) ID() string {
	id, _ := m["id"].(string)
	return id
}

// Options are the caller-supplied compile overrides. Non-zero fields win
// over every document- and parser-derived value.
type Options struct {
	// Name overrides the worker name.
	Name string
	// Routes overrides the worker route patterns.
	Routes []string
	// Config entries overlay the resolved config, shallow per top-level key.
	Config map[string]any
}

// Result pairs the normalized metadata with the untouched document body.
type Result struct {
	Metadata Metadata
	Content  string
}

const defaultMemoryMB = 128

// defaultConfig builds a fresh default worker configuration. A new value is
// constructed per call; sharing one mutable default across compiles is how
// the config of one document ends up in another.
func defaultConfig() map[string]any {
	return map[string]any{
		"memory": defaultMemoryMB,
		"env":    map[string]any{"NODE_ENV": "production"},
	}
}
