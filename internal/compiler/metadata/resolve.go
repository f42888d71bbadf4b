package metadata

import "github.com/ai-primitives/mdxld-workers/internal/compiler/frontmatter"

// resolveSpecialFields folds each special field flat across its sources and
// writes the winner back under all three spellings.
//
// Priority per field, first non-absent wins: the parser's typed attribute,
// then the "$"-spelled, "@"-spelled and unprefixed normalized values. Typed
// attributes outrank frontmatter spellings because the parser is assumed to
// have already disambiguated them.
func resolveSpecialFields(meta Metadata, attrs frontmatter.Attributes) {
	typed := typedAttributeValues(attrs)

	for _, field := range resolverFields {
		value, ok := typed[field]
		if !ok {
			for _, spelling := range []string{"$" + field, "@" + field, field} {
				if v, present := meta[spelling]; present {
					value, ok = v, true
					break
				}
			}
		}
		if !ok {
			continue
		}

		// Typed attributes bypass the normalization walk, so the context
		// and list structural rules are re-applied to the winner here.
		// Context keys are never spelling-expanded, only vocab-rewritten.
		switch field {
		case "context":
			if ctx, isMap := value.(map[string]any); isMap {
				value = rewriteContextVocab(ctx)
			}
		case "list":
			value = Normalize(value)
			if _, isSeq := value.([]any); !isSeq {
				value = []any{value}
			}
		default:
			value = Normalize(value)
		}

		for _, spelling := range Spellings(field) {
			meta[spelling] = value
		}
	}
}

// typedAttributeValues flattens the parser's typed attributes into a lookup
// keyed by special-field name. Zero values mean the parser did not surface
// the field and are omitted.
func typedAttributeValues(attrs frontmatter.Attributes) map[string]any {
	typed := make(map[string]any)

	if attrs.ID != "" {
		typed["id"] = attrs.ID
	}
	if attrs.Type != "" {
		typed["type"] = attrs.Type
	}
	if attrs.Context != nil {
		typed["context"] = attrs.Context
	}
	if attrs.Language != "" {
		typed["language"] = attrs.Language
	}
	if attrs.Base != "" {
		typed["base"] = attrs.Base
	}
	if attrs.Vocab != "" {
		typed["vocab"] = attrs.Vocab
	}
	if attrs.List != nil {
		typed["list"] = attrs.List
	}
	if attrs.Set != nil {
		typed["set"] = attrs.Set
	}
	if attrs.Reverse != nil {
		typed["reverse"] = *attrs.Reverse
	}

	return typed
}
