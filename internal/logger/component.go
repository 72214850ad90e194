package logger

import (
	"context"
	"log/slog"
)

// componentHandler forwards to whatever slog.Default is at the time of the
// call, adding the component attribute.
type componentHandler struct {
	component string
	attrs     []slog.Attr
	groups    []string
}

func (h *componentHandler) target() slog.Handler {
	t := slog.Default().Handler().WithAttrs([]slog.Attr{slog.String("component", h.component)})
	if len(h.attrs) > 0 {
		t = t.WithAttrs(h.attrs)
	}
	for _, g := range h.groups {
		t = t.WithGroup(g)
	}
	return t
}

func (h *componentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slog.Default().Handler().Enabled(ctx, level)
}

func (h *componentHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.target().Handle(ctx, r)
}

func (h *componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *componentHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}
