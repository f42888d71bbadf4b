package metadata

import "sort"

// Normalize recursively normalizes a frontmatter value.
//
// Scalars pass through unchanged. Sequences normalize each element in place
// order (order is semantically meaningful for routes and list). Mappings are
// rebuilt fresh: every key is classified through the prefix model, prefixed
// special fields are expanded to all three spellings, and the context, worker
// and list rewrite rules are applied.
//
// The walk never mutates its input and never fails - malformed shapes (a
// numeric context, a scalar worker) pass through untouched rather than being
// rejected, since frontmatter is user-authored and partial correctness beats
// hard failure. Normalization is idempotent: running it on its own output
// changes nothing.
//
// Go maps have no stable iteration order, so mappings are processed in
// lexicographic key order. This makes the last-writer-wins rule for
// colliding spellings deterministic: "$worker" sorts before "@worker", so
// when both blocks are present the "@"-spelled one wins.
func Normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalizeMap(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Normalize(elem)
		}
		return out
	default:
		return value
	}
}

func normalizeMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))

	for _, rawKey := range sortedKeys(m) {
		key := ClassifyKey(rawKey)
		var val any

		// Value rewrites keyed on the base name, regardless of prefix.
		switch key.Base {
		case "context":
			// A context mapping is a term dictionary, not frontmatter:
			// its keys keep their own prefixes and are never spelling-
			// expanded. Only vocab is canonicalized, to "@vocab".
			if ctx, ok := m[rawKey].(map[string]any); ok {
				val = rewriteContextVocab(ctx)
			} else {
				val = Normalize(m[rawKey])
			}
		case "list":
			val = Normalize(m[rawKey])
			if _, ok := val.([]any); !ok {
				val = []any{val}
			}
		default:
			val = Normalize(m[rawKey])
		}

		if key.Prefix != PrefixNone && IsSpecialField(key.Base) {
			for _, spelling := range Spellings(key.Base) {
				result[spelling] = val
			}
		} else {
			// Ordinary fields keep their original prefix verbatim (after
			// quote stripping); inventing spellings for arbitrary keys
			// would grow the key set without bound.
			result[key.Prefix.String()+key.Base] = val
		}

		// A worker block seeds the enclosing level's worker identity.
		if key.Base == "worker" {
			if wb, ok := val.(map[string]any); ok {
				hoistWorkerIdentity(wb, result)
			}
		}
	}

	return result
}

// rewriteContextVocab returns a copy of a context mapping in which any key
// classifying to base "vocab" (at any prefix) is rewritten to the canonical
// "@vocab". Other context keys are preserved verbatim - context terms have
// their own semantics and are not spelling-expanded.
func rewriteContextVocab(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for _, rawKey := range sortedKeys(ctx) {
		if ClassifyKey(rawKey).Base == "vocab" {
			out["@vocab"] = ctx[rawKey]
		} else {
			out[rawKey] = ctx[rawKey]
		}
	}
	return out
}

// hoistWorkerIdentity copies a worker block's name and routes into the
// enclosing mapping, overwriting any prior value at that level. Only a
// string name and a sequence routes qualify; other shapes stay put.
func hoistWorkerIdentity(worker, enclosing map[string]any) {
	if name, ok := worker["name"].(string); ok {
		enclosing["name"] = name
	}
	if routes, ok := worker["routes"].([]any); ok {
		enclosing["routes"] = routes
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
