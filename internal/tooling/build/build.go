// Package build runs the document compile pipeline end to end: frontmatter
// parse, metadata normalization, worker generation, artifact output. Both
// the build command and the dev server drive compilation through it.
package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ai-primitives/mdxld-workers/compiler/errors"
	"github.com/ai-primitives/mdxld-workers/internal/compiler/codegen"
	"github.com/ai-primitives/mdxld-workers/internal/compiler/frontmatter"
	"github.com/ai-primitives/mdxld-workers/internal/compiler/metadata"
	"github.com/ai-primitives/mdxld-workers/internal/utils"
	"github.com/ai-primitives/mdxld-workers/runtime/registry"
)

// Compiler compiles MDX-LD documents into worker artifacts.
type Compiler struct {
	generator *codegen.Generator
	options   metadata.Options
}

// NewCompiler creates a compiler. The options apply to every document as
// the caller-supplied override layer of the metadata merge.
func NewCompiler(version string, options metadata.Options) *Compiler {
	return &Compiler{
		generator: codegen.NewGenerator(codegen.Options{Version: version}),
		options:   options,
	}
}

// Result holds the outcome of compiling a set of documents.
type Result struct {
	Workers []*registry.Worker
	Errors  []errors.CompileError
}

// Success reports whether every document compiled cleanly.
func (r *Result) Success() bool {
	for _, e := range r.Errors {
		if e.IsError() {
			return false
		}
	}
	return true
}

// CompileFile compiles a single document into a worker.
//
// The worker name falls back to a slug of the file name when neither the
// caller options nor the document metadata supply one, so every document
// always yields an addressable worker.
func (c *Compiler) CompileFile(path string) (*registry.Worker, *errors.CompileError) {
	source, err := os.ReadFile(path)
	if err != nil {
		ce := errors.Wrap(errors.PhaseFrontmatter, "FM002", path, err)
		return nil, &ce
	}

	doc, err := frontmatter.Parse(source)
	if err != nil {
		ce := errors.Wrap(errors.PhaseFrontmatter, "FM001", path, err)
		return nil, &ce
	}

	result := metadata.Compile(doc, c.options)
	if result.Metadata.Name() == "" {
		result.Metadata["name"] = Slug(path)
	}

	script, err := c.generator.GenerateWorker(result)
	if err != nil {
		ce := errors.Wrap(errors.PhaseCodegen, "CG001", path, err)
		return nil, &ce
	}

	return &registry.Worker{
		Name:       result.Metadata.Name(),
		Routes:     result.Metadata.Routes(),
		Metadata:   result.Metadata,
		Content:    result.Content,
		Script:     script,
		SourceFile: path,
		SourceHash: HashSource(source),
	}, nil
}

// CompileDir compiles every document under sourceDir. Documents that fail
// do not stop the rest; all errors are collected into the result.
func (c *Compiler) CompileDir(sourceDir string) (*Result, error) {
	files, err := utils.FindSourceFiles(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to find source files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .mdx or .md files found in %s", sourceDir)
	}

	result := &Result{}
	for _, file := range files {
		worker, ce := c.CompileFile(file)
		if ce != nil {
			result.Errors = append(result.Errors, *ce)
			continue
		}
		result.Workers = append(result.Workers, worker)
	}

	return result, nil
}

// WriteArtifacts writes a worker's script and metadata JSON into outputDir.
func WriteArtifacts(worker *registry.Worker, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	scriptPath := filepath.Join(outputDir, worker.Name+".js")
	if err := os.WriteFile(scriptPath, worker.Script, 0o644); err != nil {
		return fmt.Errorf("failed to write worker script: %w", err)
	}

	metaPath := filepath.Join(outputDir, worker.Name+".meta.json")
	if err := metadata.WriteToFile(worker.Metadata, metaPath); err != nil {
		return err
	}

	return nil
}

// HashSource computes the change-detection hash for a source document.
func HashSource(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Slug derives a worker name from a source file path: the base name without
// extension, lowercased, with separators collapsed to hyphens.
func Slug(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(base)

	var b strings.Builder
	lastHyphen := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
