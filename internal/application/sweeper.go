package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

// ExpirySweeper deletes uploads older than the configured TTL.
type ExpirySweeper struct {
	store      driven.UploadStore
	terminator driven.UploadTerminator
	ttl        time.Duration
	interval   time.Duration
	metrics    Metrics
	now        func() time.Time
	logger     *slog.Logger
}

// NewExpirySweeper creates an ExpirySweeper. Uploads created more than ttl ago
// are removed every interval once Start runs.
func NewExpirySweeper(
	store driven.UploadStore,
	terminator driven.UploadTerminator,
	ttl time.Duration,
	interval time.Duration,
	metrics Metrics,
	logger *slog.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		store:      store,
		terminator: terminator,
		ttl:        ttl,
		interval:   interval,
		metrics:    metricsOrNop(metrics),
		now:        time.Now,
		logger:     logger,
	}
}

// Start sweeps every interval until ctx is cancelled.
func (s *ExpirySweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("expiry sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce removes every expired upload and returns how many were removed.
// An upload the storage backend no longer has is still dropped from the
// ledger. Per-upload failures do not stop the sweep; they are joined into the
// returned error.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)

	expired, err := s.store.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list expired uploads: %w", err)
	}

	removed := 0
	var errs []error
	for _, rec := range expired {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		err := s.terminator.Terminate(ctx, rec.ID)
		if err != nil && !errors.Is(err, driven.ErrUploadNotFound) {
			errs = append(errs, err)
			continue
		}

		if err := s.store.Delete(ctx, rec.ID); err != nil {
			errs = append(errs, err)
			continue
		}

		removed++
		s.metrics.UploadExpired()
		s.logger.Info("deleted expired upload", "id", rec.ID, "name", rec.Name, "created_at", rec.CreatedAt)
	}

	return removed, errors.Join(errs...)
}
