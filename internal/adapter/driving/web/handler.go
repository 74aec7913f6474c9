// Package web implements the HTML GUI driving adapter using templ components.
package web

//go:generate go tool templ generate -path templates

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/dropvault/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/dropvault/internal/adapter/driving/web/templates/components"
	"github.com/ericfisherdev/dropvault/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/dropvault/internal/application"
	"github.com/ericfisherdev/dropvault/internal/domain/model"
)

// maxBatchBody bounds the JSON a completion report may carry.
const maxBatchBody = 1 << 20

// PageOptions are the static parts of the upload page.
type PageOptions struct {
	Title         string
	BannerHTML    string
	MaxSize       int64
	ExpiryNote    string
	SecureCookies bool
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	panel    *application.PanelService
	tokens   *application.TokenService
	renderer *application.ResultRenderer
	opts     PageOptions
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	panel *application.PanelService,
	tokens *application.TokenService,
	renderer *application.ResultRenderer,
	opts PageOptions,
	logger *slog.Logger,
) *Handler {
	if opts.Title == "" {
		opts.Title = "dropvault"
	}
	return &Handler{
		panel:    panel,
		tokens:   tokens,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
	}
}

// UploadPage renders the upload page for the requesting client.
func (h *Handler) UploadPage(w http.ResponseWriter, r *http.Request) {
	slot := clientSlot(w, r, h.opts.SecureCookies)
	csrf := csrfToken(w, r, h.opts.SecureCookies)

	session, err := h.panel.Init(r.Context(), slot)
	if err != nil {
		h.logger.Error("failed to initialize session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	page, err := toUploadPageViewModel(session, h.opts, csrf)
	if err != nil {
		h.logger.Error("failed to build page view", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	layout := templates.Layout(page.Title, csrf, pages.Upload(page))
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render upload page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// SaveToken stores the submitted token for the client, re-initializes the
// client's session, and sends the browser back to the upload page.
func (h *Handler) SaveToken(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	slot := clientSlot(w, r, h.opts.SecureCookies)
	value := r.FormValue("secret")

	if err := h.tokens.Save(r.Context(), slot, value); err != nil {
		h.logger.Error("failed to save token", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Results renders one result block per successful file of a completed upload
// batch. The response is an HTML fragment app.js appends to #results.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	var batch model.Batch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBody)).Decode(&batch); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "batch too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid batch", http.StatusBadRequest)
		return
	}

	container := newFragmentContainer(r.Context())
	if _, err := h.renderer.OnComplete(r.Context(), batch, container); err != nil {
		h.logger.Error("failed to render results", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := container.flush(w); err != nil {
		h.logger.Debug("results fragment not delivered", "error", err)
	}
}

// UploaderConfig returns the client's widget configuration as JSON. It
// carries the client's token, so it is never cached.
func (h *Handler) UploaderConfig(w http.ResponseWriter, r *http.Request) {
	slot, ok := existingClientSlot(r)
	if !ok {
		http.Error(w, "unknown client", http.StatusNotFound)
		return
	}

	session, err := h.panel.Init(r.Context(), slot)
	if err != nil {
		h.logger.Error("failed to initialize session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(session.Uploader)
	if err != nil {
		h.logger.Error("failed to encode uploader config", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

// fragmentContainer buffers rendered result blocks so a failed render never
// leaves a half-written response.
type fragmentContainer struct {
	ctx context.Context
	buf bytes.Buffer
}

var _ application.ResultsContainer = (*fragmentContainer)(nil)

func newFragmentContainer(ctx context.Context) *fragmentContainer {
	return &fragmentContainer{ctx: ctx}
}

// Append renders block as the next child of the results container.
func (c *fragmentContainer) Append(block model.ResultBlock) error {
	return components.ResultBlock(toResultBlockViewModel(block)).Render(c.ctx, &c.buf)
}

func (c *fragmentContainer) flush(w io.Writer) error {
	_, err := c.buf.WriteTo(w)
	return err
}
