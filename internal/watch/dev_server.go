package watch

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ai-primitives/mdxld-workers/internal/tooling/build"
	"github.com/ai-primitives/mdxld-workers/runtime/registry"
)

//go:embed assets/reload.js
var reloadScript string

// DevServer serves compiled workers locally and recompiles them on change.
type DevServer struct {
	compiler     *IncrementalCompiler
	registry     *registry.Registry
	reloadServer *ReloadServer
	watcher      *FileWatcher
	httpServer   *http.Server

	port      int
	sourceDir string
	verbose   bool
}

// DevServerConfig holds configuration for the dev server.
type DevServerConfig struct {
	Port      int
	SourceDir string
	Verbose   bool
	Compiler  *build.Compiler
}

// NewDevServer creates a development server. It does not start compiling or
// listening until Start is called.
func NewDevServer(config *DevServerConfig) (*DevServer, error) {
	if config == nil || config.Compiler == nil {
		return nil, fmt.Errorf("dev server requires a compiler")
	}

	port := config.Port
	if port == 0 {
		port = 8787
	}
	sourceDir := config.SourceDir
	if sourceDir == "" {
		sourceDir = "docs"
	}

	ds := &DevServer{
		compiler:     NewIncrementalCompiler(config.Compiler),
		registry:     registry.New(),
		reloadServer: NewReloadServer(),
		port:         port,
		sourceDir:    sourceDir,
		verbose:      config.Verbose,
	}

	watcher, err := NewFileWatcher(
		[]string{sourceDir},
		[]string{"*.mdx", "*.md"},
		nil,
		ds.handleChanges,
	)
	if err != nil {
		return nil, err
	}
	ds.watcher = watcher

	ds.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: ds.routes(),
	}

	return ds, nil
}

// Start compiles everything once, then begins watching and serving.
// It blocks until the HTTP server stops.
func (ds *DevServer) Start() error {
	if err := ds.initialBuild(); err != nil {
		return err
	}

	if err := ds.watcher.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	log.Printf("[Dev] Serving %d worker(s) on http://localhost:%d", ds.registry.Len(), ds.port)

	if err := ds.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts down the watcher, reload server and HTTP listener.
func (ds *DevServer) Stop() error {
	_ = ds.watcher.Stop()
	ds.reloadServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ds.httpServer.Shutdown(ctx)
}

// Registry exposes the server's worker registry, mainly for tests.
func (ds *DevServer) Registry() *registry.Registry {
	return ds.registry
}

func (ds *DevServer) initialBuild() error {
	result, err := ds.compiler.compiler.CompileDir(ds.sourceDir)
	if err != nil {
		return err
	}

	for _, worker := range result.Workers {
		ds.publish(worker)
	}
	for _, ce := range result.Errors {
		log.Printf("[Dev] %s", ce.Error())
	}
	if !result.Success() {
		log.Printf("[Dev] initial build finished with %d error(s)", len(result.Errors))
	}
	return nil
}

// handleChanges recompiles changed documents and notifies browsers.
func (ds *DevServer) handleChanges(files []string) error {
	ds.reloadServer.NotifyBuilding(files)

	result := ds.compiler.CompileChanged(files)
	if !result.Success() {
		for _, ce := range result.Errors {
			log.Printf("[Dev] %s", ce.Error())
		}
		ds.reloadServer.NotifyError(result.Errors)
		return nil
	}

	names := make([]string, 0, len(result.Workers))
	for _, worker := range result.Workers {
		ds.publish(worker)
		names = append(names, worker.Name)
	}

	if len(names) > 0 {
		log.Printf("[Dev] Rebuilt %d worker(s) in %s", len(names), result.Duration)
		ds.reloadServer.NotifySuccess(names, result.Duration)
	}
	return nil
}

// publish registers a worker, giving route-less workers a default route at
// /<name> so every document is reachable during development.
func (ds *DevServer) publish(worker *registry.Worker) {
	if len(worker.Routes) == 0 {
		worker.Routes = []string{"/" + worker.Name}
	}
	ds.registry.Register(worker)
	if ds.verbose {
		log.Printf("[Dev] Published %s -> %v", worker.Name, worker.Routes)
	}
}

func (ds *DevServer) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/__reload", ds.reloadServer.HandleWebSocket)
	r.Get("/__reload.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write([]byte(reloadScript))
	})
	r.Get("/__workers", ds.handleListWorkers)
	r.Get("/__workers/{name}/metadata", ds.handleWorkerMetadata)
	r.NotFound(ds.handleDispatch)

	return r
}

func (ds *DevServer) handleListWorkers(w http.ResponseWriter, _ *http.Request) {
	type workerInfo struct {
		Name   string   `json:"name"`
		Routes []string `json:"routes"`
		Type   string   `json:"type,omitempty"`
		ID     string   `json:"id,omitempty"`
		Source string   `json:"source,omitempty"`
	}

	workers := ds.registry.List()
	infos := make([]workerInfo, 0, len(workers))
	for _, worker := range workers {
		infos = append(infos, workerInfo{
			Name:   worker.Name,
			Routes: worker.Routes,
			Type:   worker.Metadata.Type(),
			ID:     worker.Metadata.ID(),
			Source: worker.SourceFile,
		})
	}

	writeJSON(w, http.StatusOK, infos)
}

func (ds *DevServer) handleWorkerMetadata(w http.ResponseWriter, r *http.Request) {
	worker := ds.registry.Get(chi.URLParam(r, "name"))
	if worker == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown worker"})
		return
	}
	writeJSON(w, http.StatusOK, worker.Metadata)
}

// handleDispatch routes a request to the matching worker, mirroring what
// the deployed fetch handler does.
func (ds *DevServer) handleDispatch(w http.ResponseWriter, r *http.Request) {
	worker := ds.registry.Match(r.URL.Path)
	if worker == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("X-Mdxld-Worker", worker.Name)
	if t := worker.Metadata.Type(); t != "" {
		w.Header().Set("X-Mdxld-Type", t)
	}
	if id := worker.Metadata.ID(); id != "" {
		w.Header().Set("X-Mdxld-Id", id)
	}

	body := worker.Content
	if isHTMLContent(body) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		body += "\n<script src=\"/__reload.js\"></script>\n"
	} else {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	}
	_, _ = w.Write([]byte(body))
}

// isHTMLContent sniffs whether a document body is HTML rather than markdown,
// so the reload client can be injected where a browser will run it.
func isHTMLContent(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "<!DOCTYPE") ||
		strings.HasPrefix(trimmed, "<!doctype") ||
		strings.HasPrefix(trimmed, "<html")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Dev] Failed to encode response: %v", err)
	}
}
