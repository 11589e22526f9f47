package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dersdefteri/internal/app"
	"dersdefteri/internal/config"
	"dersdefteri/internal/contextutil"
)

var (
	// Global flags
	userRef string
	verbose bool
	timeout time.Duration

	// upload flags
	uploadDir string

	// export flags
	outPath string
	asSheet bool

	application *app.App
	ownsApp     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dersctl",
	Short: "Operate a dersdefteri installation from the shell",
	Long: `dersctl runs the document pipeline against the configured database,
object store and model without going through the HTTP API.

Every command acts on behalf of one learner, given by --user as a user id
or an email address.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if application != nil {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		slog.SetDefault(app.NewLogger(cfg, os.Stderr))

		application, err = app.New(cmd.Context(), cfg)
		ownsApp = err == nil
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if ownsApp {
			_ = application.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userRef, "user", "u", "", "User id or email address (required)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")
	_ = rootCmd.MarkPersistentFlagRequired("user")

	uploadCmd.Flags().StringVar(&uploadDir, "dir", "", "Upload every PDF below this directory")

	exportCmd.Flags().StringVarP(&outPath, "out", "o", "karteikarten.xlsx", "Output file")
	exportCmd.Flags().BoolVar(&asSheet, "sheet", false, "Write the HTML study sheet instead of XLSX")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext bounds the command by --timeout and carries the resolved user.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc, error) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)

	userID, err := application.ResolveUser(ctx, userRef)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	logger := slog.Default().With("user_id", userID)
	ctx = contextutil.WithLogger(contextutil.WithUserID(ctx, userID), logger)
	return ctx, cancel, nil
}
