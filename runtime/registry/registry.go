// Package registry holds the set of compiled workers the dev server serves,
// indexed for route dispatch. Registrations happen from the watch loop while
// requests dispatch concurrently, so all access is guarded.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/ai-primitives/mdxld-workers/internal/compiler/metadata"
)

// Worker is one compiled document ready to serve or deploy.
type Worker struct {
	Name       string
	Routes     []string
	Metadata   metadata.Metadata
	Content    string
	Script     []byte
	SourceFile string
	SourceHash string
}

// Registry is a thread-safe collection of compiled workers.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]*Worker
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{workers: make(map[string]*Worker)}
}

// Register adds or replaces a worker by name.
func (r *Registry) Register(w *Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[w.Name] = w
}

// Remove deletes a worker by name. Removing an unknown name is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workers, name)
}

// Get returns the worker with the given name, or nil.
func (r *Registry) Get(name string) *Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workers[name]
}

// List returns all workers sorted by name.
func (r *Registry) List() []*Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Worker, 0, len(r.workers))
	for _, w := range r.workers {
		list = append(list, w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}

// Match finds the worker whose route pattern best matches path. Exact
// patterns beat wildcard patterns; among wildcard patterns the longest
// prefix wins. Ties break by worker name for determinism. Returns nil when
// nothing matches.
func (r *Registry) Match(path string) *Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Worker
	bestScore := -1

	for _, name := range sortedNames(r.workers) {
		w := r.workers[name]
		for _, pattern := range w.Routes {
			score, ok := matchScore(pattern, path)
			if ok && score > bestScore {
				best, bestScore = w, score
			}
		}
	}

	return best
}

// matchScore reports whether pattern matches path and how specific the
// match is. Exact matches outrank every wildcard; wildcard specificity is
// the length of the fixed prefix.
func matchScore(pattern, path string) (int, bool) {
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		if strings.HasPrefix(path, prefix) {
			return len(prefix), true
		}
		return 0, false
	}
	if pattern == path {
		return len(pattern) + 1_000_000, true
	}
	return 0, false
}

func sortedNames(workers map[string]*Worker) []string {
	names := make([]string, 0, len(workers))
	for name := range workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
