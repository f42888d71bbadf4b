package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ai-primitives/mdxld-workers/compiler/errors"
	"github.com/ai-primitives/mdxld-workers/internal/cli/config"
	"github.com/ai-primitives/mdxld-workers/internal/compiler/metadata"
	"github.com/ai-primitives/mdxld-workers/internal/tooling/build"
)

var (
	buildJSON    bool
	buildVerbose bool
	buildSource  string
	buildOutput  string
	buildName    string
	buildRoutes  []string
)

// NewBuildCommand creates the build command
func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile MDX-LD documents into worker artifacts",
		Long: `Compile every .mdx and .md file under the source directory into worker
scripts plus normalized metadata.

The build process:
  1. Frontmatter extraction - split YAML metadata from document content
  2. Normalization - unify @, $ and bare key spellings
  3. Resolution - merge worker name, routes and config across sources
  4. Code generation - emit a worker script per document`,
		Example: `  # Build with default settings
  mdxld-workers build

  # Build a different source tree to a custom location
  mdxld-workers build --source content --output dist/workers

  # Override the worker name and routes for a single-document build
  mdxld-workers build --name api --route '/api/*'

  # Output errors in JSON format (useful for tooling)
  mdxld-workers build --json`,
		RunE: runBuild,
	}

	cmd.Flags().BoolVar(&buildJSON, "json", false, "Output errors in JSON format")
	cmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Show detailed build output")
	cmd.Flags().StringVarP(&buildSource, "source", "s", "", "Source directory (default: docs)")
	cmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output directory (default: build/workers)")
	cmd.Flags().StringVar(&buildName, "name", "", "Override the worker name")
	cmd.Flags().StringArrayVar(&buildRoutes, "route", nil, "Override worker routes (repeatable)")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	warningColor := color.New(color.FgYellow)

	// Load config
	cfg, err := config.Load()
	if err != nil {
		if buildVerbose {
			warningColor.Printf("Warning: %v\n", err)
		}
	}

	sourceDir := buildSource
	if sourceDir == "" {
		if cfg != nil && cfg.Build.Source != "" {
			sourceDir = cfg.Build.Source
		} else {
			sourceDir = "docs"
		}
	}

	outputDir := buildOutput
	if outputDir == "" {
		if cfg != nil && cfg.Build.Output != "" {
			outputDir = cfg.Build.Output
		} else {
			outputDir = "build/workers"
		}
	}

	if _, err := os.Stat(sourceDir); os.IsNotExist(err) {
		return fmt.Errorf("%s/ directory not found - are you in a workers project?", sourceDir)
	}

	compiler := build.NewCompiler(Version, metadata.Options{
		Name:   buildName,
		Routes: buildRoutes,
	})

	result, err := compiler.CompileDir(sourceDir)
	if err != nil {
		return err
	}

	if buildVerbose {
		infoColor.Printf("Compiled %d document(s) from %s\n", len(result.Workers), sourceDir)
	}

	if !result.Success() {
		if buildJSON {
			outputErrorsJSON(result.Errors)
		} else {
			outputErrorsTerminal(result.Errors)
		}
		return fmt.Errorf("compilation failed")
	}

	for _, worker := range result.Workers {
		if err := build.WriteArtifacts(worker, outputDir); err != nil {
			return err
		}
		if buildVerbose {
			infoColor.Printf("Wrote %s/%s.js\n", outputDir, worker.Name)
		}
	}

	successColor.Printf("Built %d worker(s) in %s\n", len(result.Workers), time.Since(startTime).Round(time.Millisecond))
	return nil
}

func outputErrorsJSON(errs []errors.CompileError) {
	output, err := errors.FormatErrorsAsJSON(errs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to format errors: %v\n", err)
		return
	}
	fmt.Println(output)
}

func outputErrorsTerminal(errs []errors.CompileError) {
	errorColor := color.New(color.FgRed, color.Bold)
	errorColor.Fprintf(os.Stderr, "\nCompilation failed with %d error(s):\n\n", len(errs))

	for _, err := range errs {
		fmt.Fprintln(os.Stderr, err.FormatForTerminal())
	}
	fmt.Fprintln(os.Stderr)
}
