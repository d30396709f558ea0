package events

// Event type constants for kelindar/event.
const (
	TypeLightChanged uint32 = iota + 1
	TypePersisted
	TypePersistFailed
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LightChangedEvent is published after new duties have been programmed.
type LightChangedEvent struct {
	Kind      string `json:"kind" example:"color" doc:"What changed: startup, color or level"`
	R         uint8  `json:"r" example:"200" doc:"Red intensity"`
	G         uint8  `json:"g" example:"100" doc:"Green intensity"`
	B         uint8  `json:"b" example:"50" doc:"Blue intensity"`
	W         uint8  `json:"w" example:"255" doc:"White intensity"`
	Level     uint8  `json:"level" example:"128" doc:"Brightness level"`
	DutyR     uint8  `json:"duty_r" example:"100" doc:"Red PWM duty"`
	DutyG     uint8  `json:"duty_g" example:"50" doc:"Green PWM duty"`
	DutyB     uint8  `json:"duty_b" example:"25" doc:"Blue PWM duty"`
	DutyW     uint8  `json:"duty_w" example:"128" doc:"White PWM duty"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LightChangedEvent.
func (e LightChangedEvent) Type() uint32 { return TypeLightChanged }

// PersistedEvent is published when a colour snapshot has been committed.
type PersistedEvent struct {
	R         uint8  `json:"r"`
	G         uint8  `json:"g"`
	B         uint8  `json:"b"`
	W         uint8  `json:"w"`
	Level     uint8  `json:"level"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PersistedEvent.
func (e PersistedEvent) Type() uint32 { return TypePersisted }

// PersistFailedEvent is published when a colour snapshot could not be saved.
// The colour is still applied to the strip.
type PersistFailedEvent struct {
	Error     string `json:"error" example:"commit: database is locked" doc:"Store error"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PersistFailedEvent.
func (e PersistFailedEvent) Type() uint32 { return TypePersistFailed }

// LogEntryEvent carries one log line to /api/logs subscribers.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-27T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"light" doc:"Module that logged the line"`
	Message    string         `json:"message" example:"Set level" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
