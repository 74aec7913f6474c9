package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/dropvault/internal/application"
	"github.com/ericfisherdev/dropvault/internal/domain/model"
)

func newTestLedger(store *fakeUploadStore, metrics *countingMetrics, now time.Time) *application.UploadLedger {
	ledger := application.NewUploadLedger(store, metrics, discardLogger())
	ledger.SetClock(func() time.Time { return now })
	return ledger
}

func TestUploadLedger_CreatedThenCompleted(t *testing.T) {
	store := newFakeUploadStore()
	metrics := &countingMetrics{}
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ledger := newTestLedger(store, metrics, now)
	ctx := context.Background()

	upload := model.FileRecord{ID: "u1", Name: "a.txt", Size: 10}
	ledger.Handle(ctx, model.UploadEvent{Kind: model.UploadCreated, Upload: upload})

	rec, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, now.Equal(rec.CreatedAt))
	assert.False(t, rec.IsComplete())

	ledger.Handle(ctx, model.UploadEvent{Kind: model.UploadCompleted, Upload: upload})

	rec, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, rec.IsComplete())
	assert.Equal(t, 1, metrics.completed)
	assert.Equal(t, int64(10), metrics.bytes)
}

func TestUploadLedger_CompletedWithoutCreated(t *testing.T) {
	store := newFakeUploadStore()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ledger := newTestLedger(store, &countingMetrics{}, now)
	ctx := context.Background()

	ledger.Handle(ctx, model.UploadEvent{Kind: model.UploadCompleted, Upload: model.FileRecord{ID: "u2", Name: "b.txt"}})

	rec, err := store.Get(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, now.Equal(rec.CreatedAt))
	assert.True(t, rec.IsComplete())
}

func TestUploadLedger_TerminatedRemovesRecord(t *testing.T) {
	store := newFakeUploadStore()
	ledger := newTestLedger(store, &countingMetrics{}, time.Now())
	ctx := context.Background()

	ledger.Handle(ctx, model.UploadEvent{Kind: model.UploadCreated, Upload: model.FileRecord{ID: "u3"}})
	ledger.Handle(ctx, model.UploadEvent{Kind: model.UploadTerminated, Upload: model.FileRecord{ID: "u3"}})

	rec, err := store.Get(ctx, "u3")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
