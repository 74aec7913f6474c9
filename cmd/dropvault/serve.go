package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/dropvault/internal/adapter/driven/metrics"
	sqliteadapter "github.com/ericfisherdev/dropvault/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/dropvault/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/dropvault/internal/adapter/driving/web"
	"github.com/ericfisherdev/dropvault/internal/application"
	"github.com/ericfisherdev/dropvault/internal/config"
)

const (
	shutdownTimeout      = 10 * time.Second
	visitorSweepInterval = time.Minute
	sessionPruneInterval = 10 * time.Minute
	sessionMaxAge        = time.Hour
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload page and tus endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	// 1. Load configuration (fail fast on missing required settings).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"storage", cfg.Storage,
		"base_path", cfg.BasePath,
		"max_size", humanize.IBytes(uint64(cfg.MaxSize)),
		"chunk_size", humanize.IBytes(uint64(cfg.ChunkSize)),
		"file_ttl", cfg.FileTTL.Duration,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database and run migrations.
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	// 4. Wire driven adapters.
	collector := metrics.New()
	uploadStore := sqliteadapter.NewUploadRepo(db)
	uploads, err := newUploadServer(ctx, cfg)
	if err != nil {
		return err
	}

	// 5. Application services. Saving a token re-initializes that client.
	tokens := application.NewTokenService(credentialStore(cfg, db), slog.Default())
	uploader := application.NewUploaderService(application.UploaderOptions{
		Endpoint:  uploads.BasePath(),
		ChunkSize: cfg.ChunkSize,
	})
	panel := application.NewPanelService(tokens, uploader, application.NewSessionProvider(), slog.Default())
	tokens.OnSave(panel.Reinitialize)

	expiryNote := application.ExpiryNote(cfg.FileTTL.Duration)
	renderer := application.NewResultRenderer(expiryNote, collector, slog.Default())
	ledger := application.NewUploadLedger(uploadStore, collector, slog.Default())
	sweeper := application.NewExpirySweeper(uploadStore, uploads, cfg.FileTTL.Duration, cfg.SweepInterval.Duration, collector, slog.Default())

	// 6. Routes: API + guarded metrics, tus endpoint, web GUI.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(db.Writer, slog.Default()), collector.Handler(), cfg.MetricsToken)
	if cfg.MetricsToken == "" {
		slog.Info("metrics endpoint disabled", "reason", "DROPVAULT_METRICS_TOKEN not set")
	}
	httphandler.RegisterUploadRoutes(mux, uploads.BasePath(), uploads.Handler(), cfg.UploadSecret, collector)

	webHandler := webhandler.NewHandler(panel, tokens, renderer, webhandler.PageOptions{
		BannerHTML:    webhandler.RenderMarkdown(cfg.Banner),
		MaxSize:       cfg.MaxSize,
		ExpiryNote:    expiryNote,
		SecureCookies: cfg.SecureCookies,
	}, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// 7. Apply middleware.
	limiter := httphandler.NewVisitorLimiter(cfg.RateLimit, cfg.RateBurst, cfg.VisitorTTL.Duration, cfg.TrustProxyHeaders, collector)
	handler := httphandler.ApplyMiddleware(mux, slog.Default(), httphandler.MiddlewareOptions{
		UploadBasePath: uploads.BasePath(),
		Limiter:        limiter,
	})

	// tusd sets per-request deadlines itself; fixed read/write timeouts would
	// cut off large chunks on slow links.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 8. Run everything until the first failure or a shutdown signal. The
	// upload event consumer stays up until the server has drained.
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}

	slog.Info("dropvault started",
		"listen_addr", cfg.ListenAddr,
		"sweep_interval", cfg.SweepInterval.Duration,
	)

	err = runServer(ctx, srv, ln, shutdownTimeout,
		func(ctx context.Context) error { return uploads.Listen(ctx, ledger.Handle) },
		sweeper.Start,
		func(ctx context.Context) { limiter.Start(ctx, visitorSweepInterval) },
		func(ctx context.Context) { panel.StartPruner(ctx, sessionPruneInterval, sessionMaxAge) },
	)
	if err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
