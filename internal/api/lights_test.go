package api

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/lightnode/internal/hal"
	"github.com/smazurov/lightnode/internal/sysfs"
)

func newTestServer() (*Server, *sysfs.Memory) {
	writer := sysfs.NewMemory()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := hal.New(hal.Paths{Backlight: "backlight", RGBControl: "rgb"}, writer, logger)
	return &Server{options: &Options{HAL: h}, logger: logger}, writer
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"ffff0000", 0xffff0000, false},
		{"#ff00ff00", 0xff00ff00, false},
		{"0xff0000ff", 0xff0000ff, false},
		{"0", 0, false},
		{"", 0, true},
		{"not-a-color", 0, true},
		{"1ffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestHandleSetLight_WritesBacklight(t *testing.T) {
	server, writer := newTestServer()

	input := &SetLightInput{Name: "backlight"}
	input.Body.Color = "ffffffff"

	out, err := server.handleSetLight(context.Background(), input)
	if err != nil {
		t.Fatalf("handleSetLight() error = %v", err)
	}
	if out.Body.Brightness != 255 {
		t.Errorf("Brightness = %d, want 255", out.Body.Brightness)
	}
	if got, ok := writer.Last("backlight"); !ok || got.Value != "255" {
		t.Errorf("last backlight write = %q, want %q", got.Value, "255")
	}
}

func TestHandleSetLight_UnknownLight(t *testing.T) {
	server, _ := newTestServer()

	input := &SetLightInput{Name: "keyboard"}
	input.Body.Color = "ff000000"

	_, err := server.handleSetLight(context.Background(), input)
	if err == nil {
		t.Fatal("handleSetLight() with unknown light should return error")
	}
	var statusErr huma.StatusError
	if !errors.As(err, &statusErr) || statusErr.GetStatus() != 400 {
		t.Errorf("error = %v, want 400 status error", err)
	}
}

func TestHandleSetLight_BadColor(t *testing.T) {
	server, _ := newTestServer()

	input := &SetLightInput{Name: "notifications"}
	input.Body.Color = "zzz"

	_, err := server.handleSetLight(context.Background(), input)
	if err == nil {
		t.Fatal("handleSetLight() with bad color should return error")
	}
}

func TestHandleListLights_ReflectsSnapshot(t *testing.T) {
	server, _ := newTestServer()

	input := &SetLightInput{Name: "notifications"}
	input.Body.Color = "ff00ff00"
	input.Body.Flash = "timed"
	input.Body.FlashOnMS = 500
	input.Body.FlashOffMS = 2000
	if _, err := server.handleSetLight(context.Background(), input); err != nil {
		t.Fatalf("handleSetLight() error = %v", err)
	}

	out, err := server.handleListLights(context.Background(), nil)
	if err != nil {
		t.Fatalf("handleListLights() error = %v", err)
	}

	if len(out.Body.Lights) != 3 {
		t.Fatalf("got %d lights, want 3", len(out.Body.Lights))
	}
	var notif *LightStatus
	for i := range out.Body.Lights {
		if out.Body.Lights[i].Name == "notifications" {
			notif = &out.Body.Lights[i]
		}
	}
	if notif == nil {
		t.Fatal("notifications light missing from listing")
	}
	if notif.Color != "ff00ff00" || notif.Flash != "timed" || notif.FlashOnMS != 500 {
		t.Errorf("notifications = %+v, want color ff00ff00 timed 500ms", notif)
	}
}
