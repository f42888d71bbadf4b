package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the project configuration loaded from workers.yml
type Config struct {
	ProjectName string       `mapstructure:"project_name"`
	Build       BuildConfig  `mapstructure:"build"`
	Deploy      DeployConfig `mapstructure:"deploy"`
	Dev         DevConfig    `mapstructure:"dev"`
}

// BuildConfig represents build configuration
type BuildConfig struct {
	Source string `mapstructure:"source"`
	Output string `mapstructure:"output"`
}

// DeployConfig represents deployment configuration
type DeployConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	AccountID  string `mapstructure:"account_id"`
	ServiceKey string `mapstructure:"service_key"`
}

// DevConfig represents dev server configuration
type DevConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads the configuration from workers.yml or workers.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("build.source", "docs")
	v.SetDefault("build.output", "build/workers")
	v.SetDefault("dev.port", 8787)

	// Set config name and paths
	v.SetConfigName("workers")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.SetEnvPrefix("MDXLD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only surfaces keys viper already knows about, so keys
	// without defaults need explicit bindings for env-only overrides
	// (MDXLD_DEPLOY_ACCOUNT_ID and friends) to reach Unmarshal.
	for _, key := range []string{
		"project_name",
		"deploy.endpoint",
		"deploy.account_id",
		"deploy.service_key",
	} {
		_ = v.BindEnv(key)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetAPIToken returns the deployment API token from the environment.
// Tokens never live in workers.yml.
func GetAPIToken() string {
	return os.Getenv("WORKERS_API_TOKEN")
}

// InProject checks if the current directory is an MDX-LD workers project
func InProject() bool {
	if _, err := os.Stat("workers.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("workers.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot tries to find the project root by looking for workers.yml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "workers.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "workers.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("not in a workers project (no workers.yml found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Dev.Port < 0 || cfg.Dev.Port > 65535 {
		return fmt.Errorf("dev.port must be a valid port number, got: %d", cfg.Dev.Port)
	}
	if cfg.Deploy.Endpoint != "" && !strings.HasPrefix(cfg.Deploy.Endpoint, "http") {
		return fmt.Errorf("deploy.endpoint must be an http(s) URL, got: %s", cfg.Deploy.Endpoint)
	}
	return nil
}
