package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[lights]\ndriver = \"sysfs\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	loader := func(p string) (LightsConfig, error) {
		return LoadLightsConfig(p), nil
	}

	w := NewWatcher(path, loader, logger, WithDebounce[LightsConfig](50*time.Millisecond))
	reloaded := make(chan LightsConfig, 1)
	w.OnReload(func(cfg LightsConfig) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[lights]\ndriver = \"noop\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Driver != "noop" {
			t.Errorf("reloaded Driver = %q, want %q", cfg.Driver, "noop")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_Unsubscribe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w := NewWatcher(path, func(p string) (LightsConfig, error) {
		return LoadLightsConfig(p), nil
	}, logger, WithDebounce[LightsConfig](10*time.Millisecond))

	called := make(chan struct{}, 1)
	unsub := w.OnReload(func(LightsConfig) {
		called <- struct{}{}
	})
	unsub()

	// Drive loadAndNotify directly; the handler must not fire.
	w.loadAndNotify()

	select {
	case <-called:
		t.Fatal("handler should not be called after unsubscribe")
	case <-time.After(50 * time.Millisecond):
		// Expected
	}
}

func TestWatcher_StartMissingFile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	w := NewWatcher("/nonexistent/config.toml", func(p string) (LightsConfig, error) {
		return LoadLightsConfig(p), nil
	}, logger)

	if err := w.Start(); err == nil {
		w.Stop()
		t.Error("Start() on missing file should return error")
	}
}
