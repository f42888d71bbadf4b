package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileWatcher_Start(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "page.mdx")
	if err := os.WriteFile(testFile, []byte("---\ntitle: Test\n---\n# Hi\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(
		[]string{tmpDir},
		[]string{"*.mdx", "*.md"},
		nil,
		func(files []string) error {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, files)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	// Allow watcher to initialize
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(testFile, []byte("---\ntitle: Changed\n---\n# Hi\n"), 0644); err != nil {
		t.Fatalf("Failed to modify file: %v", err)
	}

	// Wait for debounce
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(changes) == 0 {
		t.Error("Expected changes to be detected")
	}
}

func TestFileWatcher_IgnoresNonMatchingFiles(t *testing.T) {
	tmpDir := t.TempDir()

	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(
		[]string{tmpDir},
		[]string{"*.mdx"},
		nil,
		func(files []string) error {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, files)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("not a document"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 0 {
		t.Errorf("Expected no changes for non-matching file, got %v", changes)
	}
}

func TestFileWatcher_ShouldIgnore(t *testing.T) {
	watcher, err := NewFileWatcher([]string{"."}, nil, []string{"*.swp"}, func([]string) error { return nil })
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	tests := []struct {
		path   string
		ignore bool
	}{
		{"docs/page.mdx", false},
		{"docs/.page.mdx.swp", true},
		{"docs/.git", true},
		{filepath.Join("build", "out.js"), true},
		{"docs/page.mdx.swp", true},
	}

	for _, tt := range tests {
		if got := watcher.shouldIgnore(tt.path); got != tt.ignore {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.ignore)
		}
	}
}

func TestFileWatcher_MatchesPattern(t *testing.T) {
	watcher, err := NewFileWatcher([]string{"."}, []string{"*.mdx", "*.md"}, nil, func([]string) error { return nil })
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	tests := []struct {
		path  string
		match bool
	}{
		{"docs/page.mdx", true},
		{"docs/nested/readme.md", true},
		{"docs/page.txt", false},
		{"docs/page.js", false},
	}

	for _, tt := range tests {
		if got := watcher.matchesPattern(tt.path); got != tt.match {
			t.Errorf("matchesPattern(%q) = %v, want %v", tt.path, got, tt.match)
		}
	}
}

func TestFileWatcher_StopTwice(t *testing.T) {
	watcher, err := NewFileWatcher([]string{"."}, nil, nil, func([]string) error { return nil })
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}

	if err := watcher.Stop(); err != nil {
		t.Errorf("First stop failed: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Errorf("Second stop failed: %v", err)
	}
}

func TestDebouncer_Add(t *testing.T) {
	var mu sync.Mutex
	var called bool
	var files []string

	debouncer := NewDebouncer(50 * time.Millisecond)
	defer debouncer.Stop()
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
		files = f
	})

	debouncer.Add("a.mdx")
	debouncer.Add("b.mdx")
	debouncer.Add("a.mdx") // duplicate

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !called {
		t.Fatal("Expected callback to be called")
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 unique files, got %d: %v", len(files), files)
	}
}

func TestDebouncer_ResetsOnNewChanges(t *testing.T) {
	var mu sync.Mutex
	var callCount int

	debouncer := NewDebouncer(80 * time.Millisecond)
	defer debouncer.Stop()
	debouncer.SetCallback(func([]string) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
	})

	// Keep adding within the window; it should flush once
	debouncer.Add("a.mdx")
	time.Sleep(30 * time.Millisecond)
	debouncer.Add("b.mdx")
	time.Sleep(30 * time.Millisecond)
	debouncer.Add("c.mdx")

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if callCount != 1 {
		t.Errorf("Expected 1 callback, got %d", callCount)
	}
}
