package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config to be non-nil")
	}

	// Check defaults
	if cfg.Build.Source != "docs" {
		t.Errorf("expected default source 'docs', got %s", cfg.Build.Source)
	}

	if cfg.Build.Output != "build/workers" {
		t.Errorf("expected default output 'build/workers', got %s", cfg.Build.Output)
	}

	if cfg.Dev.Port != 8787 {
		t.Errorf("expected default port 8787, got %d", cfg.Dev.Port)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	configContent := `
project_name: test-docs
build:
  source: content
  output: dist/workers
deploy:
  endpoint: https://api.example.com
  account_id: acct-123
dev:
  port: 9000
`
	os.WriteFile("workers.yml", []byte(configContent), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.ProjectName != "test-docs" {
		t.Errorf("expected project name 'test-docs', got %s", cfg.ProjectName)
	}

	if cfg.Build.Source != "content" {
		t.Errorf("expected source 'content', got %s", cfg.Build.Source)
	}

	if cfg.Build.Output != "dist/workers" {
		t.Errorf("expected output 'dist/workers', got %s", cfg.Build.Output)
	}

	if cfg.Deploy.Endpoint != "https://api.example.com" {
		t.Errorf("expected endpoint, got %s", cfg.Deploy.Endpoint)
	}

	if cfg.Deploy.AccountID != "acct-123" {
		t.Errorf("expected account 'acct-123', got %s", cfg.Deploy.AccountID)
	}

	if cfg.Dev.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Dev.Port)
	}
}

func TestLoadRejectsBadEndpoint(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	os.WriteFile("workers.yml", []byte("deploy:\n  endpoint: ftp://nope\n"), 0644)

	if _, err := Load(); err == nil {
		t.Error("expected error for non-http endpoint")
	}
}

func TestLoadEnvOnlyDeployOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	// No workers.yml and no defaults for these keys; the environment alone
	// must be able to supply them
	os.Setenv("MDXLD_DEPLOY_ACCOUNT_ID", "acct-env")
	os.Setenv("MDXLD_DEPLOY_ENDPOINT", "https://env.example.com")
	defer os.Unsetenv("MDXLD_DEPLOY_ACCOUNT_ID")
	defer os.Unsetenv("MDXLD_DEPLOY_ENDPOINT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading env config, got %v", err)
	}

	if cfg.Deploy.AccountID != "acct-env" {
		t.Errorf("expected account from environment, got %q", cfg.Deploy.AccountID)
	}

	if cfg.Deploy.Endpoint != "https://env.example.com" {
		t.Errorf("expected endpoint from environment, got %q", cfg.Deploy.Endpoint)
	}
}

func TestGetAPIToken(t *testing.T) {
	os.Setenv("WORKERS_API_TOKEN", "tok-abc")
	defer os.Unsetenv("WORKERS_API_TOKEN")

	if token := GetAPIToken(); token != "tok-abc" {
		t.Errorf("expected token from environment, got %s", token)
	}
}

func TestInProject(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	if InProject() {
		t.Error("expected InProject to be false in empty directory")
	}

	os.WriteFile("workers.yml", []byte("project_name: x\n"), 0644)

	if !InProject() {
		t.Error("expected InProject to be true with workers.yml present")
	}
}
