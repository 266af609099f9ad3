package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is a single log line retained in the ring buffer.
type Entry struct {
	Timestamp  time.Time      `json:"timestamp"`
	Level      string         `json:"level"`
	Module     string         `json:"module"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Callback is invoked for every entry written through the buffer handler.
type Callback func(entry Entry)

// RingBuffer is a thread-safe circular buffer of log entries.
type RingBuffer struct {
	mu      sync.RWMutex
	entries []Entry
	head    int
	count   int
}

// NewRingBuffer creates a ring buffer holding up to size entries.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{entries: make([]Entry, size)}
}

// Write appends an entry, overwriting the oldest when full.
func (rb *RingBuffer) Write(entry Entry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.entries[rb.head] = entry
	rb.head = (rb.head + 1) % len(rb.entries)
	if rb.count < len(rb.entries) {
		rb.count++
	}
}

// ReadAll returns all retained entries in chronological order.
func (rb *RingBuffer) ReadAll() []Entry {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.count == 0 {
		return nil
	}
	result := make([]Entry, 0, rb.count)
	if rb.count < len(rb.entries) {
		result = append(result, rb.entries[:rb.count]...)
	} else {
		result = append(result, rb.entries[rb.head:]...)
		result = append(result, rb.entries[:rb.head]...)
	}
	return result
}

// Count returns the number of retained entries.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// BufferHandler is a slog.Handler that records entries in the ring buffer
// and forwards them to the registered callback.
type BufferHandler struct {
	level slog.Level
	attrs []slog.Attr
}

// NewBufferHandler creates a handler writing to the package ring buffer.
// The buffer is resolved at Handle time so handlers created before
// Initialize still end up writing to the right place.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{level: level.Level()}
}

// Enabled implements slog.Handler.
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle implements slog.Handler.
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	mu.RLock()
	buffer := logBuffer
	cb := logCallback
	mu.RUnlock()
	if buffer == nil {
		return nil
	}

	attrs := make(map[string]any)
	module := "app"
	collect := func(a slog.Attr) {
		if a.Key == "module" {
			module = a.Value.String()
			return
		}
		if err, ok := a.Value.Any().(error); ok {
			attrs[a.Key] = err.Error()
			return
		}
		attrs[a.Key] = a.Value.Any()
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})

	entry := Entry{
		Timestamp:  r.Time,
		Level:      levelToString(r.Level),
		Module:     module,
		Message:    r.Message,
		Attributes: attrs,
	}
	buffer.Write(entry)
	if cb != nil {
		cb(entry)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &BufferHandler{level: h.level, attrs: merged}
}

// WithGroup implements slog.Handler.
func (h *BufferHandler) WithGroup(_ string) slog.Handler {
	return h
}

func levelToString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
