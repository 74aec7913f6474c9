package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagVerbose bool
	flagJSON    bool
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// newRootCmd builds the root command. Running it without a subcommand serves.
func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	cmd := &cobra.Command{
		Use:           "dropvault",
		Short:         "Self-hosted resumable file drop",
		Long:          "dropvault serves an upload page and a tus endpoint; uploaded files expire after a fixed TTL.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			slog.SetDefault(buildLogger())
		},
		RunE: serve.RunE,
	}

	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "log in JSON even on a terminal")

	cmd.AddCommand(serve)
	cmd.AddCommand(newSweepCmd())

	return cmd
}

// buildLogger picks a text handler for interactive terminals and JSON for
// everything else (containers, log shippers). --verbose enables debug.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	fd := os.Stderr.Fd()
	if !flagJSON && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
