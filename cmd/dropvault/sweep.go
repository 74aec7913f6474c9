package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/dropvault/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/dropvault/internal/application"
	"github.com/ericfisherdev/dropvault/internal/config"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired uploads once and exit",
		Long:  "Terminates every upload older than DROPVAULT_FILE_TTL and drops it from the ledger, then exits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd.Context())
		},
	}
}

func runSweep(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	uploads, err := newUploadServer(ctx, cfg)
	if err != nil {
		return err
	}

	sweeper := application.NewExpirySweeper(
		sqliteadapter.NewUploadRepo(db),
		uploads,
		cfg.FileTTL.Duration,
		cfg.SweepInterval.Duration,
		nil,
		slog.Default(),
	)

	removed, err := sweeper.SweepOnce(ctx)
	slog.Info("sweep finished", "removed", removed, "ttl", cfg.FileTTL.Duration)
	return err
}
