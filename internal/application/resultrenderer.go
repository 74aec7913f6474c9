package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
)

// ResultsContainer receives rendered result blocks in order.
type ResultsContainer interface {
	Append(block model.ResultBlock) error
}

// ExpiryNote formats the annotation shown under each result link.
func ExpiryNote(ttl time.Duration) string {
	if ttl > 0 && ttl%time.Hour == 0 {
		return fmt.Sprintf("Expires in %dh", int(ttl/time.Hour))
	}
	return "Expires in " + ttl.String()
}

// ResultRenderer turns a completed upload batch into result blocks.
type ResultRenderer struct {
	expiryNote string
	metrics    Metrics
	logger     *slog.Logger
}

// NewResultRenderer creates a ResultRenderer that annotates every block with
// expiryNote.
func NewResultRenderer(expiryNote string, metrics Metrics, logger *slog.Logger) *ResultRenderer {
	return &ResultRenderer{
		expiryNote: expiryNote,
		metrics:    metricsOrNop(metrics),
		logger:     logger,
	}
}

// Block builds the display block for one successful upload.
func (r *ResultRenderer) Block(res model.UploadResult) model.ResultBlock {
	return model.ResultBlock{
		Name:       res.Name,
		Label:      "File: " + res.Name,
		LinkLabel:  "Link: ",
		URL:        res.URL,
		LinkText:   res.URL,
		Target:     "_blank",
		ExpiryNote: r.expiryNote,
	}
}

// OnComplete appends one block per successful file, in batch order, and
// returns how many were appended. Failed files are not rendered; they are
// logged and counted only.
func (r *ResultRenderer) OnComplete(ctx context.Context, batch model.Batch, container ResultsContainer) (int, error) {
	if n := len(batch.Failed); n > 0 {
		names := make([]string, 0, n)
		for _, f := range batch.Failed {
			names = append(names, f.Name)
		}
		r.logger.WarnContext(ctx, "upload batch had failed files", "count", n, "files", names)
		r.metrics.ResultsFailed(n)
	}

	appended := 0
	for _, res := range batch.Successful {
		if err := container.Append(r.Block(res)); err != nil {
			r.metrics.ResultsRendered(appended)
			return appended, fmt.Errorf("append result for %q: %w", res.Name, err)
		}
		appended++
	}

	r.metrics.ResultsRendered(appended)
	return appended, nil
}
