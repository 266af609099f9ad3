package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// JournalHandler is a slog.Handler that sends records to the systemd journal.
type JournalHandler struct {
	level slog.Level
	attrs []slog.Attr
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(level slog.Leveler) *JournalHandler {
	return &JournalHandler{level: level.Level()}
}

// Enabled implements slog.Handler.
func (h *JournalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle sends the record to the journal with structured fields.
func (h *JournalHandler) Handle(_ context.Context, r slog.Record) error {
	priority := levelToPriority(r.Level)

	fields := map[string]string{
		"SYSLOG_IDENTIFIER": "lightnode",
	}
	for _, attr := range h.attrs {
		addField(fields, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		addField(fields, attr)
		return true
	})

	return journal.Send(r.Message, priority, fields)
}

// WithAttrs implements slog.Handler.
func (h *JournalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &JournalHandler{level: h.level, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened into field names
// by addField, so the handler itself has nothing to track.
func (h *JournalHandler) WithGroup(_ string) slog.Handler {
	return h
}

// IsJournalAvailable reports whether the systemd journal can be written to.
func IsJournalAvailable() bool {
	return journal.Enabled()
}

func levelToPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// addField converts an slog attribute into a journal field. Journal field
// names must be uppercase; nested groups are joined with underscores.
func addField(fields map[string]string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	key := strings.ToUpper(attr.Key)

	if attr.Value.Kind() == slog.KindGroup {
		for _, a := range attr.Value.Group() {
			addField(fields, slog.Attr{Key: key + "_" + a.Key, Value: a.Value})
		}
		return
	}
	fields[key] = fmt.Sprint(attr.Value.Any())
}
