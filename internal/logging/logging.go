// Package logging provides structured logging with per-module log levels.
//
// Output is routed automatically: to the systemd journal when journald is
// available, to stdout when a terminal or pipe is connected, and to an
// in-memory ring buffer that backs the /api/logs/stream endpoint.
//
// Initialize once at startup, then obtain module loggers:
//
//	logging.Initialize(logging.Config{Level: "info", Format: "text"})
//	logger := logging.GetLogger("hal")
//	logger.Info("backlight set", "brightness", 128)
//
// Module levels can be overridden individually, e.g. [logging] hal = "debug"
// in the TOML config, and changed at runtime through SetLevel.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

const defaultBufferSize = 500

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

var (
	mu              sync.RWMutex
	moduleLoggers   = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig    Config
	globalLevelVar  = &slog.LevelVar{}
	initialized     bool
	logBuffer       *RingBuffer
	logCallback     Callback
)

// Initialize sets up the logging system. Loggers created before Initialize
// are updated in place so early GetLogger calls stay valid.
func Initialize(config Config) {
	mu.Lock()
	defer mu.Unlock()

	globalConfig = config
	initialized = true
	logBuffer = NewRingBuffer(defaultBufferSize)

	globalLevelVar.Set(parseLevel(config.Level, slog.LevelInfo))

	for module, levelVar := range moduleLevelVars {
		levelVar.Set(moduleLevel(module))
		moduleLoggers[module] = slog.New(newHandler(config.Format, levelVar)).With("module", module)
	}

	slog.SetDefault(slog.New(newHandler(config.Format, globalLevelVar)))
}

// GetLogger returns a logger for the given module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mu.RLock()
	if logger, ok := moduleLoggers[module]; ok {
		mu.RUnlock()
		return logger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if logger, ok := moduleLoggers[module]; ok {
		return logger
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(moduleLevel(module))

	format := "text"
	if initialized {
		format = globalConfig.Format
	}
	logger := slog.New(newHandler(format, levelVar)).With("module", module)
	moduleLoggers[module] = logger
	moduleLevelVars[module] = levelVar
	return logger
}

// SetLevel changes the level of a module logger at runtime.
func SetLevel(module, level string) {
	mu.Lock()
	defer mu.Unlock()
	if levelVar, ok := moduleLevelVars[module]; ok {
		levelVar.Set(parseLevel(level, globalLevelVar.Level()))
	}
}

// SetGlobalLevel changes the default level for loggers without a module
// override.
func SetGlobalLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	globalLevelVar.Set(parseLevel(level, slog.LevelInfo))
}

// GetBuffer returns the ring buffer holding recent log entries.
func GetBuffer() *RingBuffer {
	mu.RLock()
	defer mu.RUnlock()
	return logBuffer
}

// SetCallback registers a callback invoked for every new log entry.
// Used to publish log events to the SSE stream without import cycles.
func SetCallback(cb Callback) {
	mu.Lock()
	defer mu.Unlock()
	logCallback = cb
}

// moduleLevel resolves the effective level for a module. Caller holds mu.
func moduleLevel(module string) slog.Level {
	level := slog.LevelInfo
	if initialized {
		level = parseLevel(globalConfig.Level, slog.LevelInfo)
		if override, ok := globalConfig.Modules[module]; ok {
			level = parseLevel(override, level)
		}
	}
	return level
}

// newHandler builds the handler chain: stdout (when connected), journald
// (when available), and the ring buffer.
func newHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler
	if isStdoutAvailable() {
		if format == "json" {
			handlers = append(handlers, slog.NewJSONHandler(os.Stdout, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
		}
	}
	if IsJournalAvailable() {
		handlers = append(handlers, NewJournalHandler(level))
	}
	handlers = append(handlers, NewBufferHandler(level))

	if len(handlers) == 1 {
		return handlers[0]
	}
	return NewMultiHandler(handlers...)
}

// isStdoutAvailable reports whether stdout goes anywhere useful
// (terminal, pipe, socket, or regular file, not /dev/null).
func isStdoutAvailable() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return (mode&os.ModeCharDevice) != 0 || (mode&os.ModeNamedPipe) != 0 || (mode&os.ModeSocket) != 0 || mode.IsRegular()
}

// parseLevel converts a string level to slog.Level, falling back when unknown.
func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
