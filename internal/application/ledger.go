package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

// UploadLedger records upload lifecycle events so expired uploads can be found
// later. Store failures are logged, never returned: the upload itself has
// already succeeded or failed by the time an event arrives.
type UploadLedger struct {
	store   driven.UploadStore
	metrics Metrics
	now     func() time.Time
	logger  *slog.Logger
}

// NewUploadLedger creates an UploadLedger over the given store.
func NewUploadLedger(store driven.UploadStore, metrics Metrics, logger *slog.Logger) *UploadLedger {
	return &UploadLedger{
		store:   store,
		metrics: metricsOrNop(metrics),
		now:     time.Now,
		logger:  logger,
	}
}

// Handle applies one upload event to the ledger.
func (l *UploadLedger) Handle(ctx context.Context, ev model.UploadEvent) {
	switch ev.Kind {
	case model.UploadCreated:
		l.created(ctx, ev.Upload)
	case model.UploadCompleted:
		l.completed(ctx, ev.Upload)
	case model.UploadTerminated:
		if err := l.store.Delete(ctx, ev.Upload.ID); err != nil {
			l.logger.Error("failed to remove terminated upload", "id", ev.Upload.ID, "error", err)
			return
		}
		l.logger.Info("upload terminated", "id", ev.Upload.ID)
	default:
		l.logger.Warn("unknown upload event", "kind", ev.Kind, "id", ev.Upload.ID)
	}
}

func (l *UploadLedger) created(ctx context.Context, rec model.FileRecord) {
	rec.CreatedAt = l.now()
	if err := l.store.Record(ctx, rec); err != nil {
		l.logger.Error("failed to record upload", "id", rec.ID, "error", err)
		return
	}
	l.logger.Info("upload created", "id", rec.ID, "name", rec.Name, "size", rec.Size)
}

func (l *UploadLedger) completed(ctx context.Context, rec model.FileRecord) {
	now := l.now()

	existing, err := l.store.Get(ctx, rec.ID)
	if err != nil {
		l.logger.Error("failed to look up completed upload", "id", rec.ID, "error", err)
		return
	}

	// A missed created event still leaves a row for the sweeper to find.
	if existing == nil {
		rec.CreatedAt = now
		rec.CompletedAt = &now
		err = l.store.Record(ctx, rec)
	} else {
		err = l.store.MarkComplete(ctx, rec.ID, now)
	}
	if err != nil {
		l.logger.Error("failed to mark upload complete", "id", rec.ID, "error", err)
		return
	}

	l.metrics.UploadCompleted(rec.Size)
	l.logger.Info("upload completed", "id", rec.ID, "name", rec.Name, "size", rec.Size)
}
