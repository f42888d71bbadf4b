package metadata

import "strings"

// Prefix identifies the linked-data prefix style of a frontmatter key.
type Prefix int

const (
	// PrefixNone is a plain, unprefixed key.
	PrefixNone Prefix = iota
	// PrefixAt is a JSON-LD style "@" prefix.
	PrefixAt
	// PrefixDollar is the alternate "$" linked-data prefix.
	PrefixDollar
)

// String returns the literal prefix characters, empty for PrefixNone.
func (p Prefix) String() string {
	switch p {
	case PrefixAt:
		return "@"
	case PrefixDollar:
		return "$"
	default:
		return ""
	}
}

// Key is a frontmatter key decomposed into its prefix and base name.
// All prefix inspection in the compiler goes through this type; nothing
// else re-sniffs raw key strings.
type Key struct {
	Prefix Prefix
	Base   string
}

// ClassifyKey decomposes a raw frontmatter key into prefix and base name.
//
// One layer of surrounding quote characters (' or ") is stripped before
// the first character is inspected - some YAML emitters preserve literal
// quotes around keys like "'@context'". Classification is total: every
// string yields a result, worst case PrefixNone with the key unchanged.
func ClassifyKey(key string) Key {
	key = unquote(key)

	switch {
	case strings.HasPrefix(key, "@"):
		return Key{Prefix: PrefixAt, Base: key[1:]}
	case strings.HasPrefix(key, "$"):
		return Key{Prefix: PrefixDollar, Base: key[1:]}
	default:
		return Key{Prefix: PrefixNone, Base: key}
	}
}

// Spellings returns the three canonical forms of a special field base name:
// unprefixed, "@"-prefixed, and "$"-prefixed, in that order.
func Spellings(base string) [3]string {
	return [3]string{base, "@" + base, "$" + base}
}

// unquote strips one matching layer of surrounding single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// normalizerFields are the base names that receive three-spelling expansion
// during the recursive normalization walk when they appear prefixed.
var normalizerFields = map[string]bool{
	"type":    true,
	"id":      true,
	"context": true,
	"list":    true,
	"vocab":   true,
	"worker":  true,
}

// resolverFields are the base names folded flat by the special-field
// resolver after normalization. Superset of normalizerFields.
var resolverFields = []string{
	"type", "id", "context", "list", "vocab", "worker",
	"language", "base", "reverse", "set",
}

// IsSpecialField reports whether base receives multi-spelling treatment
// during normalization.
func IsSpecialField(base string) bool {
	return normalizerFields[base]
}
