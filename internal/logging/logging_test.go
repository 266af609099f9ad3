package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"
)

func resetState() {
	mu.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig = Config{}
	initialized = false
	logBuffer = nil
	logCallback = nil
	mu.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"hal": "debug",
			"api": "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"hal", true, true, true},
		{"api", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()
			ctx := context.Background()

			if got := handler.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("module %q: Debug enabled = %v, want %v", tt.module, got, tt.wantDebug)
			}
			if got := handler.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("module %q: Info enabled = %v, want %v", tt.module, got, tt.wantInfo)
			}
			if got := handler.Enabled(ctx, slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("module %q: Warn enabled = %v, want %v", tt.module, got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	logger := GetLogger("hal")
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger created before Initialize should not have debug enabled")
	}

	Initialize(Config{
		Level:   "info",
		Modules: map[string]string{"hal": "debug"},
	})

	after := GetLogger("hal")
	if !after.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("hal logger should have debug enabled after Initialize")
	}
}

func TestSetLevel(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info"})

	handler := GetLogger("sysfs").Handler()
	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("sysfs logger should start at info")
	}

	SetLevel("sysfs", "debug")
	if !handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("sysfs logger should accept debug after SetLevel")
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Write(Entry{Message: string(rune('a' + i)), Timestamp: time.Now()})
	}

	if rb.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", rb.Count())
	}

	entries := rb.ReadAll()
	want := []string{"c", "d", "e"}
	for i, w := range want {
		if entries[i].Message != w {
			t.Errorf("entries[%d].Message = %q, want %q", i, entries[i].Message, w)
		}
	}
}

func TestBufferHandlerRecordsEntries(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info"})

	received := make([]Entry, 0, 1)
	SetCallback(func(entry Entry) {
		received = append(received, entry)
	})

	logger := GetLogger("testmod")
	logger.Info("hello", "key", "value")

	entries := GetBuffer().ReadAll()
	if len(entries) == 0 {
		t.Fatal("ring buffer should contain the logged entry")
	}
	last := entries[len(entries)-1]
	if last.Module != "testmod" {
		t.Errorf("entry module = %q, want %q", last.Module, "testmod")
	}
	if last.Message != "hello" {
		t.Errorf("entry message = %q, want %q", last.Message, "hello")
	}
	if last.Attributes["key"] != "value" {
		t.Errorf("entry attribute key = %v, want %q", last.Attributes["key"], "value")
	}
	if len(received) == 0 {
		t.Error("callback should have been invoked")
	}
}
