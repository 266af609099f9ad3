// Package hal implements the LED lighting HAL for MSM8610-class boards:
// backlight, battery indicator, and notification LED, driven through two
// kernel LED class control files.
package hal

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/lightnode/internal/events"
	"github.com/smazurov/lightnode/internal/metrics"
	"github.com/smazurov/lightnode/internal/sysfs"
)

// Fixed indicator patterns. The RGB LED is binary white; battery charge is
// shown solid, and an all-zero pattern turns the LED off.
const (
	batteryPattern = "FFFFFF 1 0 0 0"
	offPattern     = "000000 0 0 0 0"
)

// rampMS is the ramp up/down duration used for timed blinking.
const rampMS = 300

// Paths holds the two control file locations.
type Paths struct {
	Backlight  string
	RGBControl string
}

// DefaultPaths returns the stock control file locations.
func DefaultPaths() Paths {
	return Paths{
		Backlight:  "/sys/class/leds/lcd-backlight/brightness",
		RGBControl: "/sys/class/leds/rgb/control",
	}
}

// HAL owns the lighting state. One mutex serializes the battery and
// notification snapshots, the arbitration decision, and all control file
// writes. The zero snapshots mean "off" until the host requests otherwise.
type HAL struct {
	writer sysfs.Writer
	logger *slog.Logger
	bus    *events.Bus

	mu            sync.Mutex
	paths         Paths
	battery       State
	notification  State
	lastBacklight int
}

// Option configures a HAL.
type Option func(*HAL)

// WithBus attaches an event bus; applied state requests are published as
// LightChangedEvent.
func WithBus(bus *events.Bus) Option {
	return func(h *HAL) {
		h.bus = bus
	}
}

// New creates the HAL context. Construction replaces the one-time lazy
// initialization of the original module: callers share a single instance
// whose lifecycle is tied to process startup and shutdown.
func New(paths Paths, writer sysfs.Writer, logger *slog.Logger, opts ...Option) *HAL {
	h := &HAL{
		writer:        writer,
		logger:        logger,
		paths:         paths,
		lastBacklight: -1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open returns a device handle for the named logical light, or
// ErrUnknownLight for unrecognized names.
func (h *HAL) Open(name string) (*Device, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return &Device{hal: h, kind: kind}, nil
}

// SetPaths swaps the control file locations, e.g. on config reload.
func (h *HAL) SetPaths(paths Paths) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = paths
}

// Snapshot reports the last-known state of the two indicator snapshots and
// the last backlight brightness written (-1 before the first write).
func (h *HAL) Snapshot() (battery, notification State, backlight int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.battery, h.notification, h.lastBacklight
}

// set dispatches a state request to the setter for the given light.
func (h *HAL) set(kind Kind, state State) error {
	metrics.CountLightRequest(kind.String())

	var written string
	var err error
	switch kind {
	case Backlight:
		written, err = h.setBacklight(state)
	case Battery:
		written, err = h.setBattery(state)
	case Notifications:
		written, err = h.setNotifications(state)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLight, kind)
	}

	if err == nil {
		h.publish(kind, state, written)
	}
	return err
}

// setBacklight converts the color to luminance and writes it. The mutex is
// held only for the duration of the write.
func (h *HAL) setBacklight(state State) (string, error) {
	brightness := state.Brightness()

	h.mu.Lock()
	path := h.paths.Backlight
	err := h.writer.WriteInt(path, brightness)
	h.lastBacklight = brightness
	h.mu.Unlock()

	metrics.SetBacklightBrightness(brightness)
	h.logger.Debug("backlight set", "brightness", brightness, "color", state.ColorHex())
	return strconv.Itoa(brightness), err
}

// setBattery stores the battery snapshot and re-runs indicator arbitration.
func (h *HAL) setBattery(state State) (string, error) {
	h.mu.Lock()
	h.battery = state
	written := h.updateIndicatorLocked()
	h.mu.Unlock()

	h.logger.Debug("battery state set", "color", state.ColorHex())
	return written, nil
}

// setNotifications stores the notification snapshot and re-runs indicator
// arbitration.
func (h *HAL) setNotifications(state State) (string, error) {
	h.mu.Lock()
	h.notification = state
	written := h.updateIndicatorLocked()
	h.mu.Unlock()

	h.logger.Debug("notification state set", "color", state.ColorHex(),
		"flash", state.Flash.String(), "on_ms", state.FlashOnMS, "off_ms", state.FlashOffMS)
	return written, nil
}

// updateIndicatorLocked decides what the RGB LED should show and writes the
// pattern. Notifications take priority over battery charge. Write errors
// are dropped here: the snapshots are already updated and the host treats
// indicator sets as fire-and-forget, so failures surface only through the
// writer's own logging and metrics.
func (h *HAL) updateIndicatorLocked() string {
	var pattern, source string
	switch {
	case h.notification.Lit():
		pattern = blinkPattern(h.notification)
		source = "notification"
	case h.battery.Lit():
		pattern = batteryPattern
		source = "battery"
	default:
		pattern = offPattern
		source = "off"
	}

	_ = h.writer.WriteString(h.paths.RGBControl, pattern)
	metrics.SetIndicatorSource(source)
	return pattern
}

// blinkPattern renders a notification state as the control file string
// "<color> <onMS> <offMS> <rampUp> <rampDown>". The LED is binary white:
// any lit color collapses to ffffff. Ramp and durations apply only to
// timed flashing.
func blinkPattern(state State) string {
	onMS, offMS, ramp := 0, 0, 0
	if state.Flash == FlashTimed {
		onMS = state.FlashOnMS
		offMS = state.FlashOffMS
		ramp = rampMS
	}

	var color uint32
	if state.Lit() {
		color = 0xffffff
	}
	return fmt.Sprintf("%06x %d %d %d %d", color, onMS, offMS, ramp, ramp)
}

func (h *HAL) publish(kind Kind, state State, written string) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(events.LightChangedEvent{
		Light:      kind.String(),
		Color:      state.ColorHex(),
		Flash:      state.Flash.String(),
		FlashOnMS:  state.FlashOnMS,
		FlashOffMS: state.FlashOffMS,
		Written:    written,
		Timestamp:  time.Now().Format(time.RFC3339),
	})
}
