package hal

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/smazurov/lightnode/internal/sysfs"
)

func newTestHAL(opts ...Option) (*HAL, *sysfs.Memory) {
	mem := sysfs.NewMemory()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	paths := Paths{Backlight: "backlight", RGBControl: "rgb"}
	return New(paths, mem, logger, opts...), mem
}

func TestOpen_UnknownName(t *testing.T) {
	h, _ := newTestHAL()

	dev, err := h.Open("keyboard-backlight")
	if err == nil {
		t.Fatal("Open() with unknown name should return error")
	}
	if !errors.Is(err, ErrUnknownLight) {
		t.Errorf("Open() error = %v, want ErrUnknownLight", err)
	}
	if dev != nil {
		t.Error("Open() with unknown name should not return a device")
	}
}

func TestOpen_RecognizedNames(t *testing.T) {
	h, _ := newTestHAL()

	for _, name := range []string{"backlight", "battery", "notifications"} {
		dev, err := h.Open(name)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", name, err)
		}
		if dev.Kind().String() != name {
			t.Errorf("Open(%q).Kind() = %v", name, dev.Kind())
		}
		if err := dev.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
}

func TestDevice_SetAfterClose(t *testing.T) {
	h, _ := newTestHAL()

	dev, err := h.Open("battery")
	if err != nil {
		t.Fatal(err)
	}
	dev.Close()
	dev.Close() // idempotent

	if err := dev.Set(State{Color: 0x00FF0000}); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close() = %v, want ErrClosed", err)
	}
}

func TestBacklight_WritesBrightness(t *testing.T) {
	h, mem := newTestHAL()

	dev, _ := h.Open("backlight")
	if err := dev.Set(State{Color: 0xFFFFFFFF}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	last, ok := mem.Last("backlight")
	if !ok {
		t.Fatal("no write to backlight path")
	}
	if last.Value != "255" {
		t.Errorf("backlight write = %q, want %q", last.Value, "255")
	}

	_, _, backlight := h.Snapshot()
	if backlight != 255 {
		t.Errorf("Snapshot() backlight = %d, want 255", backlight)
	}
}

func TestBacklight_PropagatesWriteError(t *testing.T) {
	h, mem := newTestHAL()
	mem.FailWith("backlight", os.ErrPermission)

	dev, _ := h.Open("backlight")
	if err := dev.Set(State{Color: 0xFF808080}); !errors.Is(err, os.ErrPermission) {
		t.Errorf("Set() error = %v, want permission error", err)
	}
}

func TestNotification_TimedBlinkPattern(t *testing.T) {
	h, mem := newTestHAL()

	dev, _ := h.Open("notifications")
	err := dev.Set(State{
		Color:      0xFF00FF00,
		Flash:      FlashTimed,
		FlashOnMS:  500,
		FlashOffMS: 2000,
	})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	last, ok := mem.Last("rgb")
	if !ok {
		t.Fatal("no write to rgb control path")
	}
	if last.Value != "ffffff 500 2000 300 300" {
		t.Errorf("rgb write = %q, want %q", last.Value, "ffffff 500 2000 300 300")
	}
}

func TestNotification_StaticCollapsesToSolidWhite(t *testing.T) {
	h, mem := newTestHAL()

	dev, _ := h.Open("notifications")
	if err := dev.Set(State{Color: 0xFF123456}); err != nil {
		t.Fatal(err)
	}

	last, _ := mem.Last("rgb")
	if last.Value != "ffffff 0 0 0 0" {
		t.Errorf("rgb write = %q, want %q", last.Value, "ffffff 0 0 0 0")
	}
}

func TestArbitration_NotificationBeatsBattery(t *testing.T) {
	h, mem := newTestHAL()

	battery, _ := h.Open("battery")
	notif, _ := h.Open("notifications")

	if err := battery.Set(State{Color: 0xFFFF0000}); err != nil {
		t.Fatal(err)
	}
	if err := notif.Set(State{Color: 0xFF0000FF, Flash: FlashTimed, FlashOnMS: 100, FlashOffMS: 900}); err != nil {
		t.Fatal(err)
	}

	last, _ := mem.Last("rgb")
	if last.Value != "ffffff 100 900 300 300" {
		t.Errorf("rgb write = %q, want notification blink pattern", last.Value)
	}

	// Clearing the notification falls back to the battery pattern.
	if err := notif.Set(State{Color: 0xFF000000}); err != nil {
		t.Fatal(err)
	}
	last, _ = mem.Last("rgb")
	if last.Value != "FFFFFF 1 0 0 0" {
		t.Errorf("rgb write = %q, want solid battery pattern", last.Value)
	}
}

func TestArbitration_AllOffWhenNothingLit(t *testing.T) {
	h, mem := newTestHAL()

	battery, _ := h.Open("battery")
	if err := battery.Set(State{Color: 0xFF000000}); err != nil {
		t.Fatal(err)
	}

	last, _ := mem.Last("rgb")
	if last.Value != "000000 0 0 0 0" {
		t.Errorf("rgb write = %q, want all-off pattern", last.Value)
	}
}

func TestBattery_IdenticalSetsProduceIdenticalWrites(t *testing.T) {
	h, mem := newTestHAL()

	dev, _ := h.Open("battery")
	state := State{Color: 0xFF00FF00}

	if err := dev.Set(state); err != nil {
		t.Fatal(err)
	}
	if err := dev.Set(state); err != nil {
		t.Fatal(err)
	}

	writes := mem.Writes()
	if len(writes) != 2 {
		t.Fatalf("Writes() len = %d, want 2", len(writes))
	}
	if writes[0] != writes[1] {
		t.Errorf("repeated identical sets wrote %q then %q", writes[0].Value, writes[1].Value)
	}
}

func TestArbitration_IgnoresWriteErrors(t *testing.T) {
	h, mem := newTestHAL()
	mem.FailWith("rgb", os.ErrPermission)

	dev, _ := h.Open("notifications")
	if err := dev.Set(State{Color: 0xFFFFFFFF}); err != nil {
		t.Errorf("Set() on indicator path should ignore write errors, got %v", err)
	}
}

func TestConcurrentSets_NoInterleavedWrites(t *testing.T) {
	h, mem := newTestHAL()

	battery, _ := h.Open("battery")
	notif, _ := h.Open("notifications")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = battery.Set(State{Color: 0xFF00FF00})
		}()
		go func() {
			defer wg.Done()
			_ = notif.Set(State{Color: 0xFF0000FF, Flash: FlashTimed, FlashOnMS: 250, FlashOffMS: 750})
		}()
	}
	wg.Wait()

	// Every recorded write must be one of the complete well-formed
	// patterns; a torn write would show up as anything else.
	for _, w := range mem.Writes() {
		if w.Path != "rgb" {
			t.Fatalf("unexpected write path %q", w.Path)
		}
		switch w.Value {
		case "ffffff 250 750 300 300", "FFFFFF 1 0 0 0":
		default:
			t.Fatalf("unexpected rgb write %q", w.Value)
		}
		if n := len(strings.Fields(w.Value)); n != 5 {
			t.Fatalf("rgb write %q has %d fields, want 5", w.Value, n)
		}
	}
}

func TestSetPaths(t *testing.T) {
	h, mem := newTestHAL()
	h.SetPaths(Paths{Backlight: "bl2", RGBControl: "rgb2"})

	dev, _ := h.Open("backlight")
	if err := dev.Set(State{Color: 0xFFFFFFFF}); err != nil {
		t.Fatal(err)
	}

	if _, ok := mem.Last("bl2"); !ok {
		t.Error("write should go to the updated backlight path")
	}
}
