package events

// Event type constants for kelindar/event.
const (
	TypeLightChanged uint32 = iota + 1
	TypeWriteError
	TypeConfigReloaded
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LightChangedEvent is published after a light state request was applied.
type LightChangedEvent struct {
	Light      string `json:"light" example:"notifications" doc:"Logical light name"`
	Color      string `json:"color" example:"ff0000ff" doc:"Requested ARGB color, hex encoded"`
	Flash      string `json:"flash" example:"timed" doc:"Flash mode: none or timed"`
	FlashOnMS  int    `json:"flash_on_ms" example:"500" doc:"Flash on duration in milliseconds"`
	FlashOffMS int    `json:"flash_off_ms" example:"2000" doc:"Flash off duration in milliseconds"`
	Written    string `json:"written" example:"ffffff 500 2000 300 300" doc:"Value written to the control file"`
	Timestamp  string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LightChangedEvent.
func (e LightChangedEvent) Type() uint32 { return TypeLightChanged }

// WriteErrorEvent is published when a control file write fails.
type WriteErrorEvent struct {
	Path      string `json:"path" example:"/sys/class/leds/rgb/control" doc:"Control file path"`
	Error     string `json:"error" doc:"Write error description"`
	Timestamp string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for WriteErrorEvent.
func (e WriteErrorEvent) Type() uint32 { return TypeWriteError }

// ConfigReloadedEvent is published after the configuration file was
// reloaded from disk.
type ConfigReloadedEvent struct {
	Path      string `json:"path" example:"config.toml" doc:"Configuration file path"`
	Timestamp string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ConfigReloadedEvent.
func (e ConfigReloadedEvent) Type() uint32 { return TypeConfigReloaded }

// LogEntryEvent carries one log line to SSE subscribers.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" doc:"Log entry timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"hal" doc:"Originating module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
