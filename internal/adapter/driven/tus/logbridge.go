package tus

import (
	"context"
	"log/slog"

	expslog "golang.org/x/exp/slog"
)

// tusdLogger adapts logger for tusd, whose Config.Logger is the
// golang.org/x/exp/slog type. Records are forwarded to logger's handler, so
// tusd output shares the service's format and level.
func tusdLogger(logger *slog.Logger) *expslog.Logger {
	return expslog.New(handlerBridge{next: logger.Handler()})
}

// handlerBridge is an x/exp/slog handler writing to a log/slog handler.
type handlerBridge struct {
	next slog.Handler
}

func (b handlerBridge) Enabled(ctx context.Context, level expslog.Level) bool {
	return b.next.Enabled(ctx, slog.Level(level))
}

func (b handlerBridge) Handle(ctx context.Context, r expslog.Record) error {
	out := slog.NewRecord(r.Time, slog.Level(r.Level), r.Message, r.PC)
	r.Attrs(func(a expslog.Attr) bool {
		out.AddAttrs(convertAttr(a))
		return true
	})
	return b.next.Handle(ctx, out)
}

func (b handlerBridge) WithAttrs(attrs []expslog.Attr) expslog.Handler {
	converted := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		converted = append(converted, convertAttr(a))
	}
	return handlerBridge{next: b.next.WithAttrs(converted)}
}

func (b handlerBridge) WithGroup(name string) expslog.Handler {
	return handlerBridge{next: b.next.WithGroup(name)}
}

func convertAttr(a expslog.Attr) slog.Attr {
	v := a.Value.Resolve()
	if v.Kind() != expslog.KindGroup {
		return slog.Any(a.Key, v.Any())
	}

	members := v.Group()
	args := make([]any, 0, len(members))
	for _, m := range members {
		args = append(args, convertAttr(m))
	}
	return slog.Group(a.Key, args...)
}
