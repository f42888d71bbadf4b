package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-primitives/mdxld-workers/internal/cli/config"
	"github.com/ai-primitives/mdxld-workers/internal/cli/ui"
	"github.com/ai-primitives/mdxld-workers/internal/compiler/metadata"
	"github.com/ai-primitives/mdxld-workers/internal/deploy"
	"github.com/ai-primitives/mdxld-workers/internal/tooling/build"
)

var (
	deployDryRun  bool
	deployYes     bool
	deployVerbose bool
	deploySource  string
	deployAccount string
	deployURL     string
)

// NewDeployCommand creates the deploy command
func NewDeployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Compile and deploy workers to the platform",
		Long: `Compile every document under the source directory and upload the resulting
workers to the Workers platform.

Authentication uses the WORKERS_API_TOKEN environment variable, or a
service key from workers.yml when no token is set.

Examples:
  # Deploy everything under docs/
  mdxld-workers deploy

  # See what would be uploaded without touching the platform
  mdxld-workers deploy --dry-run

  # Skip the confirmation prompt (CI)
  mdxld-workers deploy --yes`,
		RunE: runDeploy,
	}

	cmd.Flags().BoolVar(&deployDryRun, "dry-run", false, "Compile and list workers without uploading")
	cmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVarP(&deployVerbose, "verbose", "v", false, "Show upload logs")
	cmd.Flags().StringVarP(&deploySource, "source", "s", "", "Source directory (default: docs)")
	cmd.Flags().StringVar(&deployAccount, "account", "", "Platform account ID (default: from workers.yml)")
	cmd.Flags().StringVar(&deployURL, "endpoint", "", "Platform API endpoint (default: from workers.yml)")

	return cmd
}

func runDeploy(cmd *cobra.Command, args []string) error {
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sourceDir := deploySource
	if sourceDir == "" {
		sourceDir = cfg.Build.Source
	}
	accountID := deployAccount
	if accountID == "" {
		accountID = cfg.Deploy.AccountID
	}
	endpoint := deployURL
	if endpoint == "" {
		endpoint = cfg.Deploy.Endpoint
	}

	if accountID == "" {
		return fmt.Errorf("no account ID configured - set deploy.account_id in workers.yml or pass --account")
	}

	compiler := build.NewCompiler(Version, metadata.Options{})
	result, err := compiler.CompileDir(sourceDir)
	if err != nil {
		return err
	}
	if !result.Success() {
		outputErrorsTerminal(result.Errors)
		return fmt.Errorf("compilation failed")
	}

	infoColor.Printf("Compiled %d worker(s) from %s\n", len(result.Workers), sourceDir)
	table := ui.NewTable(os.Stdout, "NAME", "ROUTES")
	for _, worker := range result.Workers {
		table.AddRow(worker.Name, strings.Join(worker.Routes, ", "))
	}
	table.Render()

	if deployDryRun {
		infoColor.Println("Dry run - nothing uploaded")
		return nil
	}

	if !deployYes {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Deploy %d worker(s) to account %s?", len(result.Workers), accountID),
			Default: true,
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Deployment cancelled")
			return nil
		}
	}

	logger := zap.NewNop()
	if deployVerbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}

	client, err := deploy.NewClient(deploy.Config{
		Endpoint:   endpoint,
		AccountID:  accountID,
		APIToken:   config.GetAPIToken(),
		ServiceKey: cfg.Deploy.ServiceKey,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	startTime := time.Now()
	for _, worker := range result.Workers {
		deployment, err := client.UploadWorker(cmd.Context(), worker.Name, worker.Script, worker.Metadata)
		if err != nil {
			return fmt.Errorf("failed to deploy %s: %w", worker.Name, err)
		}
		if deployment.URL != "" {
			successColor.Printf("  %s -> %s\n", worker.Name, deployment.URL)
		} else {
			successColor.Printf("  %s deployed\n", worker.Name)
		}
	}

	successColor.Printf("Deployed %d worker(s) in %s\n", len(result.Workers), time.Since(startTime).Round(time.Millisecond))
	return nil
}
