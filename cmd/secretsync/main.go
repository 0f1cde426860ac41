// Command secretsync provisions GitHub Actions repository secrets and
// optionally dispatches the follow-up validation workflow.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/neuromagic888-cloud/secretsync/internal/adapter/driven/github"
	"github.com/neuromagic888-cloud/secretsync/internal/application"
	"github.com/neuromagic888-cloud/secretsync/internal/config"
)

var (
	flagRepo       string
	flagRef        string
	flagWorkflow   string
	flagNoDispatch bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "secretsync",
	Short: "Upsert GitHub repository secrets and dispatch the validation workflow",
	Long: `Secretsync encrypts secret values from the environment against the target
repository's public key, upserts them as Actions secrets, verifies they are
registered, and then dispatches the link-validator workflow.

Configuration comes from environment variables (GITHUB_TOKEN plus the
secret values); flags override the optional settings. Setting NO_DISPATCH
or passing --no-dispatch stops after verification.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagRepo, "repo", "", "target repository in owner/name form (overrides GITHUB_REPOSITORY)")
	rootCmd.Flags().StringVar(&flagRef, "ref", "", "git ref to dispatch the workflow on (overrides WORKFLOW_REF)")
	rootCmd.Flags().StringVar(&flagWorkflow, "workflow", "", "workflow file name to dispatch (overrides WORKFLOW_FILE)")
	rootCmd.Flags().BoolVar(&flagNoDispatch, "no-dispatch", false, "skip the workflow dispatch step")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗")+" "+err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagRepo != "" {
		cfg.Repository = flagRepo
	}
	if flagRef != "" {
		cfg.Ref = flagRef
	}
	if flagWorkflow != "" {
		cfg.WorkflowFile = flagWorkflow
	}
	if flagNoDispatch {
		cfg.SkipDispatch = true
	}

	client := githubadapter.NewClient(cfg.Token)
	svc := application.NewSyncService(client, client, cfg.Credentials, application.SyncOptions{
		Repository:   cfg.Repository,
		WorkflowFile: cfg.WorkflowFile,
		Ref:          cfg.Ref,
		SkipDispatch: cfg.SkipDispatch,
	})

	spin := startSpinner(fmt.Sprintf("Syncing secrets to %s...", cfg.Repository))
	err = svc.Run(ctx)
	spin.Stop()

	if err != nil {
		return err
	}

	fmt.Println(color.GreenString("✓") + " Secrets upserted and verified on " + cfg.Repository)
	if cfg.SkipDispatch {
		fmt.Println(color.YellowString("→") + " Workflow dispatch skipped")
	} else {
		fmt.Printf("%s Workflow %s dispatched on %s\n", color.GreenString("✓"), cfg.WorkflowFile, cfg.Ref)
	}
	return nil
}

// startSpinner returns a running spinner unless verbose logging is on, in
// which case the spinner stays stopped so log lines remain readable.
func startSpinner(message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	_ = s.Color("cyan")
	if !flagVerbose {
		s.Start()
	}
	return s
}
