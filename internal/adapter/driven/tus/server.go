// Package tus adapts the tusd resumable-upload handler: it builds the storage
// backend, exposes the HTTP endpoint, translates hook notifications into
// domain events and terminates uploads on request.
package tus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tusd "github.com/tus/tusd/v2/pkg/handler"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

var _ driven.UploadTerminator = (*Server)(nil)

// Options configures the tus endpoint.
type Options struct {
	BasePath         string
	MaxSize          int64
	RespectForwarded bool
	// LockTimeout bounds how long Terminate waits for an upload held by an
	// in-flight request. Zero means defaultLockTimeout.
	LockTimeout time.Duration
	Logger      *slog.Logger
}

const defaultLockTimeout = 20 * time.Second

// Server owns a tusd handler and the composer it was built from.
type Server struct {
	handler     *tusd.Handler
	composer    *tusd.StoreComposer
	basePath    string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// New creates the tus endpoint over the given store composer. Created,
// completed and terminated notifications are enabled; callers must run Listen
// so the handler never blocks on an unread notification.
func New(composer *tusd.StoreComposer, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	basePath := normalizeBasePath(opts.BasePath)

	handler, err := tusd.NewHandler(tusd.Config{
		BasePath:                basePath,
		StoreComposer:           composer,
		MaxSize:                 opts.MaxSize,
		NotifyCreatedUploads:    true,
		NotifyCompleteUploads:   true,
		NotifyTerminatedUploads: true,
		RespectForwardedHeaders: opts.RespectForwarded,
		Logger:                  tusdLogger(logger.With("component", "tusd")),
	})
	if err != nil {
		return nil, fmt.Errorf("create tus handler: %w", err)
	}

	lockTimeout := opts.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}

	return &Server{
		handler:     handler,
		composer:    composer,
		basePath:    basePath,
		lockTimeout: lockTimeout,
		logger:      logger,
	}, nil
}

// BasePath returns the URL path prefix the endpoint is served under.
func (s *Server) BasePath() string {
	return s.basePath
}

// Handler returns the endpoint handler, to be mounted at BasePath.
func (s *Server) Handler() http.Handler {
	return http.StripPrefix(s.basePath, s.handler)
}

// Listen forwards upload notifications to handle until ctx is cancelled.
// The notification channels are unbuffered and requests block until their
// event is received, so ctx must outlive the HTTP server's drain.
func (s *Server) Listen(ctx context.Context, handle func(context.Context, model.UploadEvent)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.handler.CreatedUploads:
			handle(ctx, toUploadEvent(model.UploadCreated, ev))
		case ev := <-s.handler.CompleteUploads:
			handle(ctx, toUploadEvent(model.UploadCompleted, ev))
		case ev := <-s.handler.TerminatedUploads:
			handle(ctx, toUploadEvent(model.UploadTerminated, ev))
		}
	}
}

// Terminate removes an upload and its data from storage. It holds the
// upload's lock like a tus DELETE does, so an upload still receiving data is
// never removed mid-write. Returns driven.ErrUploadNotFound if the backend
// does not know the id.
func (s *Server) Terminate(ctx context.Context, id string) error {
	if !s.composer.UsesTerminater {
		return fmt.Errorf("terminate upload %q: storage backend does not support termination", id)
	}

	if s.composer.UsesLocker {
		unlock, err := s.lock(ctx, id)
		if err != nil {
			return err
		}
		defer unlock()
	}

	upload, err := s.composer.Core.GetUpload(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return driven.ErrUploadNotFound
		}
		return fmt.Errorf("get upload %q: %w", id, err)
	}

	if err := s.composer.Terminater.AsTerminatableUpload(upload).Terminate(ctx); err != nil {
		if isNotFound(err) {
			return driven.ErrUploadNotFound
		}
		return fmt.Errorf("terminate upload %q: %w", id, err)
	}
	return nil
}

// lock acquires the upload's lock, asking the current holder to release it.
func (s *Server) lock(ctx context.Context, id string) (func(), error) {
	lock, err := s.composer.Locker.NewLock(id)
	if err != nil {
		return nil, fmt.Errorf("create lock for upload %q: %w", id, err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	if err := lock.Lock(lockCtx, func() {}); err != nil {
		return nil, fmt.Errorf("lock upload %q: %w", id, err)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("failed to release upload lock", "id", id, "error", err)
		}
	}, nil
}

func toUploadEvent(kind model.UploadEventKind, ev tusd.HookEvent) model.UploadEvent {
	return model.UploadEvent{
		Kind: kind,
		Upload: model.FileRecord{
			ID:   ev.Upload.ID,
			Name: fileName(ev.Upload.MetaData),
			Size: ev.Upload.Size,
		},
	}
}

// fileName picks the client-supplied file name from upload metadata. The
// widget sends both "filename" and "name"; other tus clients usually send one.
func fileName(meta tusd.MetaData) string {
	if name := meta["filename"]; name != "" {
		return name
	}
	return meta["name"]
}

func isNotFound(err error) bool {
	var tusErr tusd.Error
	if errors.As(err, &tusErr) && tusErr.ErrorCode == tusd.ErrNotFound.ErrorCode {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

func normalizeBasePath(p string) string {
	if p == "" {
		return "/files/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
