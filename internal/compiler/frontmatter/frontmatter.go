// Package frontmatter splits MDX-LD source into its YAML frontmatter block
// and body content, and decodes the frontmatter into a Document: typed
// well-known attributes, a generic data mapping, and the untouched body.
//
// The package owns only the parse boundary. Prefix handling, spelling
// expansion and precedence merging happen downstream in the metadata package;
// this package's generic mapping never assumes its keys are unprefixed.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// Attributes are the well-known fields the parser extracts ahead of
// normalization. Only canonical unprefixed keys populate these; "@"- and
// "$"-spelled variants stay in Document.Data for the normalizer to fold.
type Attributes struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Context  any    `yaml:"context"` // string or mapping
	Language string `yaml:"language"`
	Base     string `yaml:"base"`
	Vocab    string `yaml:"vocab"`
	List     []any  `yaml:"list"`
	Set      []any  `yaml:"set"`
	Reverse  *bool  `yaml:"reverse"`
}

// Document is a parsed MDX-LD source file.
type Document struct {
	Attributes Attributes
	Data       map[string]any
	Content    string
}

// Parse splits source into frontmatter and body and decodes the frontmatter.
//
// A document without an opening fence is valid: it yields an empty Document
// with the full source as Content. A document with an opening fence but no
// closing fence, or with frontmatter that is not a YAML mapping, fails with
// a single wrapped error - the compiler never proceeds from a partially
// parsed document.
func Parse(source []byte) (*Document, error) {
	block, body, ok, err := split(source)
	if err != nil {
		return nil, fmt.Errorf("metadata extraction failed: %w", err)
	}
	if !ok {
		return &Document{Data: map[string]any{}, Content: string(source)}, nil
	}

	doc := &Document{Data: map[string]any{}, Content: string(body)}
	if len(bytes.TrimSpace(block)) == 0 {
		return doc, nil
	}

	if err := yaml.Unmarshal(block, &doc.Attributes); err != nil {
		return nil, fmt.Errorf("metadata extraction failed: %w", err)
	}
	if err := yaml.Unmarshal(block, &doc.Data); err != nil {
		return nil, fmt.Errorf("metadata extraction failed: %w", err)
	}
	if doc.Data == nil {
		doc.Data = map[string]any{}
	}

	return doc, nil
}

// split separates the frontmatter block from the body. Returns ok=false when
// the source has no opening fence. An opening fence without a closing fence
// is a parse error rather than best-effort frontmatter - decoding a markdown
// body as YAML produces errors far more confusing than the real problem.
func split(source []byte) (block, body []byte, ok bool, err error) {
	open := []byte(fence + "\n")
	if !bytes.HasPrefix(source, open) {
		// Tolerate CRLF openings.
		if !bytes.HasPrefix(source, []byte(fence+"\r\n")) {
			return nil, nil, false, nil
		}
		open = []byte(fence + "\r\n")
	}

	rest := source[len(open):]
	// Closing fence directly after the opening one: empty frontmatter.
	if bytes.HasPrefix(rest, []byte(fence+"\n")) {
		return nil, rest[len(fence)+1:], true, nil
	}
	if bytes.Equal(rest, []byte(fence)) {
		return nil, nil, true, nil
	}
	if idx := bytes.Index(rest, []byte("\n"+fence+"\n")); idx >= 0 {
		return rest[:idx], rest[idx+len(fence)+2:], true, nil
	}
	// Closing fence at end of file without a trailing newline.
	if bytes.HasSuffix(rest, []byte("\n"+fence)) {
		return rest[:len(rest)-len(fence)-1], nil, true, nil
	}
	return nil, nil, false, fmt.Errorf("missing closing frontmatter delimiter")
}
