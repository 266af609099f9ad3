package sysfs

import "log/slog"

// Noop is a Writer for development hosts without the LED control files.
// Writes are logged at debug level and succeed.
type Noop struct {
	logger *slog.Logger
}

// NewNoop creates a no-op writer.
func NewNoop(logger *slog.Logger) *Noop {
	return &Noop{logger: logger}
}

// WriteInt logs the request and performs no write.
func (n *Noop) WriteInt(path string, value int) error {
	n.logger.Debug("sysfs write skipped (no-op)", "path", path, "value", value)
	return nil
}

// WriteString logs the request and performs no write.
func (n *Noop) WriteString(path string, value string) error {
	n.logger.Debug("sysfs write skipped (no-op)", "path", path, "value", value)
	return nil
}
