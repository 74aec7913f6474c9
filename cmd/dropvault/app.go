package main

import (
	"context"
	"fmt"
	"log/slog"

	tusd "github.com/tus/tusd/v2/pkg/handler"

	"github.com/ericfisherdev/dropvault/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/dropvault/internal/adapter/driven/sqlite"
	tusadapter "github.com/ericfisherdev/dropvault/internal/adapter/driven/tus"
	"github.com/ericfisherdev/dropvault/internal/config"
	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

// openDB opens the database and applies pending migrations. The caller owns
// the returned DB.
func openDB(ctx context.Context, cfg *config.Config) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", cfg.DBPath)

	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	slog.Info("migrations complete", "schema_version", version)

	return db, nil
}

func closeDB(db *sqliteadapter.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// credentialStore returns the encrypted SQLite store when a secret key is
// configured, otherwise a process-local one.
func credentialStore(cfg *config.Config, db *sqliteadapter.DB) driven.CredentialStore {
	if len(cfg.SecretKey) == 0 {
		slog.Warn("DROPVAULT_SECRET_KEY not set, upload tokens are kept in memory and lost on restart")
		return memory.NewCredentialStore()
	}
	return sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
}

// newUploadServer builds the tus endpoint over the configured storage backend.
func newUploadServer(ctx context.Context, cfg *config.Config) (*tusadapter.Server, error) {
	var (
		composer *tusd.StoreComposer
		err      error
	)

	switch cfg.Storage {
	case config.StorageS3:
		composer, err = tusadapter.NewS3Composer(ctx, tusadapter.S3Options{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			ObjectPrefix: cfg.S3.Prefix,
		})
		slog.Info("storage backend", "type", cfg.Storage, "bucket", cfg.S3.Bucket, "endpoint", cfg.S3.Endpoint)
	default:
		composer, err = tusadapter.NewDiskComposer(cfg.UploadDir)
		slog.Info("storage backend", "type", cfg.Storage, "dir", cfg.UploadDir)
	}
	if err != nil {
		return nil, fmt.Errorf("storage backend: %w", err)
	}

	return tusadapter.New(composer, tusadapter.Options{
		BasePath:         cfg.BasePath,
		MaxSize:          cfg.MaxSize,
		RespectForwarded: cfg.TrustProxyHeaders,
		Logger:           slog.Default(),
	})
}
