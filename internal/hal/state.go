package hal

import (
	"fmt"
	"strings"
)

// FlashMode selects whether a light blinks or stays static.
type FlashMode int

// Flash modes, mirroring the Android lights HAL contract.
const (
	FlashNone FlashMode = iota
	FlashTimed
)

// String returns the lowercase mode name.
func (m FlashMode) String() string {
	if m == FlashTimed {
		return "timed"
	}
	return "none"
}

// ParseFlashMode converts a mode name to a FlashMode. Unknown names map to
// FlashNone, matching the HAL's default branch.
func ParseFlashMode(s string) FlashMode {
	if strings.ToLower(s) == "timed" {
		return FlashTimed
	}
	return FlashNone
}

// State is one light state request: a 32-bit ARGB color plus an optional
// timed flash pattern.
type State struct {
	Color      uint32
	Flash      FlashMode
	FlashOnMS  int
	FlashOffMS int
}

// rgb strips the alpha channel.
func (s State) rgb() uint32 {
	return s.Color & 0x00ffffff
}

// Lit reports whether any RGB channel is non-zero.
func (s State) Lit() bool {
	return s.rgb() != 0
}

// Brightness converts the RGB channels to perceptual luminance using the
// BT.601 fixed-point approximation (77*R + 150*G + 29*B) >> 8.
func (s State) Brightness() int {
	color := s.rgb()
	r := (color >> 16) & 0xff
	g := (color >> 8) & 0xff
	b := color & 0xff
	return int((77*r + 150*g + 29*b) >> 8)
}

// ColorHex returns the full ARGB value as eight hex digits.
func (s State) ColorHex() string {
	return fmt.Sprintf("%08x", s.Color)
}
