package watch

import (
	"os"
	"sync"
	"time"

	"github.com/ai-primitives/mdxld-workers/compiler/errors"
	"github.com/ai-primitives/mdxld-workers/internal/tooling/build"
	"github.com/ai-primitives/mdxld-workers/internal/utils"
	"github.com/ai-primitives/mdxld-workers/runtime/registry"
)

// IncrementalCompiler recompiles only the documents that actually changed,
// tracked by source hash. Documents whose bytes are untouched (editors love
// to fire spurious write events) are skipped.
type IncrementalCompiler struct {
	compiler *build.Compiler

	mu     sync.Mutex
	hashes map[string]string // source file -> last compiled hash
}

// NewIncrementalCompiler wraps a build compiler with change tracking.
func NewIncrementalCompiler(compiler *build.Compiler) *IncrementalCompiler {
	return &IncrementalCompiler{
		compiler: compiler,
		hashes:   make(map[string]string),
	}
}

// BuildResult holds the result of one incremental pass.
type BuildResult struct {
	Workers  []*registry.Worker
	Errors   []errors.CompileError
	Skipped  []string
	Duration time.Duration
}

// Success reports whether the pass produced no errors.
func (r *BuildResult) Success() bool {
	return len(r.Errors) == 0
}

// CompileChanged compiles the changed files that are MDX-LD documents.
// Non-document files and files whose content hash is unchanged are skipped.
func (ic *IncrementalCompiler) CompileChanged(changedFiles []string) *BuildResult {
	start := time.Now()
	result := &BuildResult{}

	for _, file := range changedFiles {
		if !utils.IsSourceFile(file) {
			result.Skipped = append(result.Skipped, file)
			continue
		}

		source, err := os.ReadFile(file)
		if err != nil {
			result.Errors = append(result.Errors,
				errors.Wrap(errors.PhaseFrontmatter, "FM002", file, err))
			continue
		}

		hash := build.HashSource(source)
		if ic.lastHash(file) == hash {
			result.Skipped = append(result.Skipped, file)
			continue
		}

		worker, ce := ic.compiler.CompileFile(file)
		if ce != nil {
			result.Errors = append(result.Errors, *ce)
			continue
		}

		ic.setHash(file, hash)
		result.Workers = append(result.Workers, worker)
	}

	result.Duration = time.Since(start)
	return result
}

// Invalidate forgets the cached hash for a file, forcing the next pass to
// recompile it.
func (ic *IncrementalCompiler) Invalidate(file string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	delete(ic.hashes, file)
}

func (ic *IncrementalCompiler) lastHash(file string) string {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.hashes[file]
}

func (ic *IncrementalCompiler) setHash(file, hash string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.hashes[file] = hash
}
