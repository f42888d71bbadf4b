package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	newSourceDir string
	newPort      int
)

// validateProjectName validates project name with security checks
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	// Check length
	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	// Check for absolute paths
	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// Only allow alphanumeric, dash, and underscore
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, name)
	if !matched {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new workers project",
		Long: `Create a new workers project with a workers.yml and a sample document.

If no project name is provided, you will be prompted to enter one.

Examples:
  mdxld-workers new my-docs
  mdxld-workers new my-api --source content`,
		RunE: runNew,
	}

	cmd.Flags().StringVar(&newSourceDir, "source", "docs", "Source directory for MDX documents")
	cmd.Flags().IntVar(&newPort, "port", 8787, "Default dev server port")

	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	var projectName string

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)

	firstRoute := "/hello"

	// Get project name from args or prompt
	if len(args) > 0 {
		projectName = args[0]
	} else {
		prompt := &survey.Input{
			Message: "Project name:",
		}
		if err := survey.AskOne(prompt, &projectName, survey.WithValidator(func(ans interface{}) error {
			name, _ := ans.(string)
			return validateProjectName(name)
		})); err != nil {
			return err
		}

		routePrompt := &survey.Input{
			Message: "First route:",
			Default: firstRoute,
		}
		if err := survey.AskOne(routePrompt, &firstRoute); err != nil {
			return err
		}
	}

	if err := validateProjectName(projectName); err != nil {
		return err
	}

	if _, err := os.Stat(projectName); err == nil {
		return fmt.Errorf("directory %s already exists", projectName)
	}

	sourceDir := filepath.Join(projectName, newSourceDir)
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	configContent := fmt.Sprintf(`project_name: %s

build:
  source: %s
  output: build/workers

dev:
  port: %d

deploy:
  endpoint: https://api.workers.dev
  account_id: ""
`, projectName, newSourceDir, newPort)

	if err := os.WriteFile(filepath.Join(projectName, "workers.yml"), []byte(configContent), 0o644); err != nil {
		return fmt.Errorf("failed to write workers.yml: %w", err)
	}

	sampleDoc := fmt.Sprintf(`---
$type: Article
$id: https://example.com/%s/hello
$worker:
  name: hello
  routes:
    - %s
    - /
---

# Hello from %s

Edit this document and run the dev server to see changes live.
`, projectName, firstRoute, projectName)

	if err := os.WriteFile(filepath.Join(sourceDir, "hello.mdx"), []byte(sampleDoc), 0o644); err != nil {
		return fmt.Errorf("failed to write sample document: %w", err)
	}

	successColor.Printf("Created project %s\n\n", projectName)
	infoColor.Println("Next steps:")
	fmt.Printf("  cd %s\n", projectName)
	fmt.Println("  mdxld-workers dev")
	fmt.Println("  mdxld-workers deploy")

	return nil
}
