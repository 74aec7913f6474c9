package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
)

// UploadStore defines the driven port for the upload ledger.
type UploadStore interface {
	Record(ctx context.Context, rec model.FileRecord) error
	MarkComplete(ctx context.Context, id string, at time.Time) error
	Get(ctx context.Context, id string) (*model.FileRecord, error)
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.FileRecord, error)
	Delete(ctx context.Context, id string) error
}
