package sysfs

import (
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/lightnode/internal/events"
	"github.com/smazurov/lightnode/internal/metrics"
)

// FileWriter is the real sysfs Writer. Control files are opened on every
// write, matching sysfs attribute semantics where each write is a discrete
// store operation.
type FileWriter struct {
	logger *slog.Logger
	bus    *events.Bus

	mu     sync.Mutex
	warned map[string]bool
}

// Option configures a FileWriter.
type Option func(*FileWriter)

// WithBus attaches an event bus; write failures are published as
// WriteErrorEvent in addition to the error return.
func WithBus(bus *events.Bus) Option {
	return func(w *FileWriter) {
		w.bus = bus
	}
}

// New creates a sysfs writer.
func New(logger *slog.Logger, opts ...Option) *FileWriter {
	w := &FileWriter{
		logger: logger,
		warned: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteInt writes a decimal integer to the control file.
func (w *FileWriter) WriteInt(path string, value int) error {
	return w.write(path, strconv.Itoa(value))
}

// WriteString writes a string to the control file.
func (w *FileWriter) WriteString(path string, value string) error {
	return w.write(path, value)
}

// write opens the control file, writes the newline-terminated payload in a
// single call, and closes it. Open failures are logged once per path;
// later failures return the error silently.
func (w *FileWriter) write(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		w.warnOnce(path, err)
		w.reportError(path, err)
		metrics.CountWrite(path, err)
		return err
	}
	defer f.Close()

	_, err = f.WriteString(value + "\n")
	if err != nil {
		w.reportError(path, err)
	}
	metrics.CountWrite(path, err)
	return err
}

func (w *FileWriter) warnOnce(path string, err error) {
	w.mu.Lock()
	warned := w.warned[path]
	w.warned[path] = true
	w.mu.Unlock()

	if !warned {
		w.logger.Error("failed to open control file", "path", path, "error", err)
	}
}

func (w *FileWriter) reportError(path string, err error) {
	if w.bus == nil {
		return
	}
	w.bus.Publish(events.WriteErrorEvent{
		Path:      path,
		Error:     err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
