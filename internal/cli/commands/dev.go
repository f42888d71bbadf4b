package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ai-primitives/mdxld-workers/internal/cli/config"
	"github.com/ai-primitives/mdxld-workers/internal/compiler/metadata"
	"github.com/ai-primitives/mdxld-workers/internal/tooling/build"
	"github.com/ai-primitives/mdxld-workers/internal/watch"
)

// NewDevCommand creates the dev command
func NewDevCommand() *cobra.Command {
	var (
		port    int
		source  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:     "dev",
		Aliases: []string{"watch"},
		Short:   "Start development server with live reload",
		Long: `Start the development server with automatic file watching and live reload.

The dev server monitors your .mdx files for changes and automatically:
  • Recompiles changed documents incrementally
  • Republishes workers into the local route table
  • Reloads connected browsers

Endpoints:
  /__workers   - list registered workers
  /__reload    - live reload WebSocket
  /*           - dispatched through worker routes

Examples:
  # Start with defaults (port 8787, docs/ source tree)
  mdxld-workers dev

  # Use a custom port and source directory
  mdxld-workers dev --port 9000 --source content`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if port == 0 {
				port = cfg.Dev.Port
			}
			if source == "" {
				source = cfg.Build.Source
			}

			if _, err := os.Stat(source); os.IsNotExist(err) {
				return fmt.Errorf("%s/ directory not found - are you in a workers project?", source)
			}

			devServer, err := watch.NewDevServer(&watch.DevServerConfig{
				Port:      port,
				SourceDir: source,
				Verbose:   verbose,
				Compiler:  build.NewCompiler(Version, metadata.Options{}),
			})
			if err != nil {
				return fmt.Errorf("failed to create dev server: %w", err)
			}

			banner := color.New(color.FgCyan, color.Bold)
			banner.Printf("mdxld-workers dev server\n")
			fmt.Printf("  Serving %s on http://localhost:%d\n\n", source, port)

			// Stop on interrupt
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				fmt.Println("\nShutting down...")
				_ = devServer.Stop()
			}()

			return devServer.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Dev server port (default: 8787)")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Source directory (default: docs)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}
