package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// runServer serves ln with srv and runs consume and loops alongside it until
// ctx ends or one of them fails. loops stop as soon as shutdown begins.
// consume keeps running until srv.Shutdown has drained in-flight requests,
// because handlers still finishing may publish events it must receive.
func runServer(
	ctx context.Context,
	srv *http.Server,
	ln net.Listener,
	drain time.Duration,
	consume func(context.Context) error,
	loops ...func(context.Context),
) error {
	g, gctx := errgroup.WithContext(ctx)

	consumeCtx, stopConsume := context.WithCancel(context.WithoutCancel(ctx))
	defer stopConsume()

	g.Go(func() error {
		slog.Info("http server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return consume(consumeCtx)
	})
	for _, loop := range loops {
		g.Go(func() error {
			loop(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		defer stopConsume()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		slog.Debug("http server drained")
		return nil
	})

	return g.Wait()
}
