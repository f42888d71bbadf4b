package commands

import (
	"os"
	"path/filepath"
	"testing"
)

func setupProject(t *testing.T, docs map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })

	if err := os.MkdirAll("docs", 0o755); err != nil {
		t.Fatalf("failed to create docs dir: %v", err)
	}
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join("docs", name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return tmpDir
}

func resetBuildFlags() {
	buildJSON = false
	buildVerbose = false
	buildSource = ""
	buildOutput = ""
	buildName = ""
	buildRoutes = nil
}

func TestBuildCommand_Flags(t *testing.T) {
	cmd := NewBuildCommand()

	for _, flag := range []string{"json", "verbose", "source", "output", "name", "route"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to be registered", flag)
		}
	}
}

func TestRunBuild_WritesArtifacts(t *testing.T) {
	resetBuildFlags()
	setupProject(t, map[string]string{
		"api.mdx": "---\n$worker:\n  name: api\n  routes:\n    - /api/*\n---\n# API\n",
	})

	cmd := NewBuildCommand()
	if err := runBuild(cmd, nil); err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}

	if _, err := os.Stat(filepath.Join("build", "workers", "api.js")); err != nil {
		t.Errorf("expected worker script to be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join("build", "workers", "api.meta.json")); err != nil {
		t.Errorf("expected metadata to be written: %v", err)
	}
}

func TestRunBuild_MissingSourceDir(t *testing.T) {
	resetBuildFlags()

	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cmd := NewBuildCommand()
	if err := runBuild(cmd, nil); err == nil {
		t.Error("expected error when source directory is missing")
	}
}

func TestRunBuild_CompileErrors(t *testing.T) {
	resetBuildFlags()
	setupProject(t, map[string]string{
		"bad.mdx": "---\nname: broken\n# no closing fence\n",
	})

	cmd := NewBuildCommand()
	if err := runBuild(cmd, nil); err == nil {
		t.Error("expected error for malformed frontmatter")
	}
}

func TestRunBuild_NameOverride(t *testing.T) {
	resetBuildFlags()
	setupProject(t, map[string]string{
		"api.mdx": "---\n$worker:\n  name: api\n---\n# API\n",
	})

	// Registering flags resets the vars, so the override comes after
	cmd := NewBuildCommand()
	buildName = "renamed"
	if err := runBuild(cmd, nil); err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}

	if _, err := os.Stat(filepath.Join("build", "workers", "renamed.js")); err != nil {
		t.Errorf("expected override name to drive the artifact name: %v", err)
	}
}
