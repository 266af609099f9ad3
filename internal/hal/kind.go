package hal

import (
	"errors"
	"fmt"
)

// ErrUnknownLight is returned by Open for unrecognized light names.
var ErrUnknownLight = errors.New("unknown light name")

// ErrClosed is returned by Set on a closed device handle.
var ErrClosed = errors.New("light device is closed")

// Kind identifies one of the logical lights the HAL drives.
type Kind int

// Logical lights, named after the Android lights HAL identifiers.
const (
	Backlight Kind = iota
	Battery
	Notifications
)

// Kinds lists all recognized lights in a stable order.
func Kinds() []Kind {
	return []Kind{Backlight, Battery, Notifications}
}

// String returns the logical light name.
func (k Kind) String() string {
	switch k {
	case Backlight:
		return "backlight"
	case Battery:
		return "battery"
	case Notifications:
		return "notifications"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a logical light name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "backlight":
		return Backlight, nil
	case "battery":
		return Battery, nil
	case "notifications":
		return Notifications, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLight, name)
	}
}
