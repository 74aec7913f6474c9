package application_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCredentialStore is an in-memory driven.CredentialStore that records writes.
type fakeCredentialStore struct {
	values map[string]string
	sets   []string
	getErr error
	setErr error
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{values: make(map[string]string)}
}

func (f *fakeCredentialStore) Get(_ context.Context, slot string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.values[slot], nil
}

func (f *fakeCredentialStore) Set(_ context.Context, slot, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, slot)
	f.values[slot] = value
	return nil
}

// fakeUploadStore is an in-memory driven.UploadStore.
type fakeUploadStore struct {
	mu      sync.Mutex
	records map[string]model.FileRecord
	delErr  error
}

func newFakeUploadStore() *fakeUploadStore {
	return &fakeUploadStore{records: make(map[string]model.FileRecord)}
}

func (f *fakeUploadStore) Record(_ context.Context, rec model.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.records[rec.ID]; ok {
		rec.CreatedAt = existing.CreatedAt
	}
	f.records[rec.ID] = rec
	return nil
}

func (f *fakeUploadStore) MarkComplete(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil
	}
	rec.CompletedAt = &at
	f.records[id] = rec
	return nil
}

func (f *fakeUploadStore) Get(_ context.Context, id string) (*model.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeUploadStore) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]model.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.FileRecord
	for _, rec := range f.records {
		if rec.CreatedAt.Before(cutoff) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeUploadStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.records, id)
	return nil
}

// fakeTerminator records terminated ids and returns per-id errors.
type fakeTerminator struct {
	terminated []string
	errs       map[string]error
}

func (f *fakeTerminator) Terminate(_ context.Context, id string) error {
	if err := f.errs[id]; err != nil {
		return err
	}
	f.terminated = append(f.terminated, id)
	return nil
}

// fakeContainer collects appended blocks.
type fakeContainer struct {
	blocks []model.ResultBlock
	failAt int
	err    error
}

func (f *fakeContainer) Append(block model.ResultBlock) error {
	if f.err != nil && len(f.blocks) == f.failAt {
		return f.err
	}
	f.blocks = append(f.blocks, block)
	return nil
}

// countingMetrics records every metrics call.
type countingMetrics struct {
	completed int
	bytes     int64
	expired   int
	rendered  int
	failed    int
}

func (m *countingMetrics) UploadCompleted(bytes int64) { m.completed++; m.bytes += bytes }
func (m *countingMetrics) UploadExpired()              { m.expired++ }
func (m *countingMetrics) ResultsRendered(n int)       { m.rendered += n }
func (m *countingMetrics) ResultsFailed(n int)         { m.failed += n }

var (
	_ driven.CredentialStore  = (*fakeCredentialStore)(nil)
	_ driven.UploadStore      = (*fakeUploadStore)(nil)
	_ driven.UploadTerminator = (*fakeTerminator)(nil)
)
