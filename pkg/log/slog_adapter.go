package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors capture events into an slog.Logger. Error events are
// logged at Warn, everything else at Debug.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event as one "capture" record.
func (a *SlogAdapter) Log(event Event) {
	level := slog.LevelDebug
	if event.Category == CategoryError {
		level = slog.LevelWarn
	}
	if !a.logger.Enabled(context.Background(), level) {
		return
	}

	attrs := make([]slog.Attr, 0, 6)
	attrs = append(attrs,
		slog.String("layer", event.Layer.String()),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	)
	if event.RendererID != "" {
		attrs = append(attrs, slog.String("renderer_id", event.RendererID))
	}
	if event.SubscriptionID != "" {
		attrs = append(attrs, slog.String("sid", event.SubscriptionID))
	}
	if payload, ok := payloadAttr(event); ok {
		attrs = append(attrs, payload)
	}

	a.logger.LogAttrs(context.Background(), level, "capture", attrs...)
}

// payloadAttr groups the type-specific fields of event.
func payloadAttr(event Event) (slog.Attr, bool) {
	switch {
	case event.Variables != nil:
		v := event.Variables
		return slog.Group("variables",
			slog.Int("count", len(v.Variables)),
			slog.Bool("metadata_reset", v.MetadataReset),
		), true
	case event.Action != nil:
		a := event.Action
		return slog.Group("action",
			slog.String("name", a.Action),
			slog.Duration("duration", a.Duration),
			slog.Bool("failed", a.Failed),
		), true
	case event.StateChange != nil:
		sc := event.StateChange
		return slog.Group("state",
			slog.String("entity", sc.Entity.String()),
			slog.String("from", sc.OldState),
			slog.String("to", sc.NewState),
			slog.String("reason", sc.Reason),
		), true
	case event.Error != nil:
		e := event.Error
		return slog.Group("error",
			slog.String("layer", e.Layer.String()),
			slog.String("message", e.Message),
			slog.String("context", e.Context),
		), true
	}
	return slog.Attr{}, false
}

var _ Logger = (*SlogAdapter)(nil)
