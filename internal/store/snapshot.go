package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/smazurov/stripd/internal/light"
)

// DefaultNamespace is the namespace holding the light snapshot.
const DefaultNamespace = "ledstrip"

// Snapshot keys: level followed by the four channels.
const (
	KeyLevel = "l"
	KeyRed   = "r"
	KeyGreen = "g"
	KeyBlue  = "b"
	KeyWhite = "w"
)

var snapshotKeys = [5]string{KeyLevel, KeyRed, KeyGreen, KeyBlue, KeyWhite}

// StoreError reports a failed snapshot operation.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Snapshots loads and saves the light ColorLevel as five 8-bit keys.
type Snapshots struct {
	engine    Engine
	namespace string
	logger    *slog.Logger
}

// NewSnapshots creates a snapshot adapter over engine. An empty namespace
// selects DefaultNamespace.
func NewSnapshots(engine Engine, namespace string, logger *slog.Logger) *Snapshots {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshots{engine: engine, namespace: namespace, logger: logger}
}

// Load returns the snapshot only when all five keys were read. A missing or
// unreadable key yields false, never a partial value.
func (s *Snapshots) Load() (light.ColorLevel, bool) {
	h, err := s.engine.Open(s.namespace, ReadOnly)
	if err != nil {
		s.logger.Warn("Failed to open store for reading", "namespace", s.namespace, "error", err)
		return light.ColorLevel{}, false
	}
	defer h.Close()

	var values [5]uint8
	for i, key := range snapshotKeys {
		v, err := h.GetU8(key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Debug("Snapshot incomplete", "namespace", s.namespace, "missing", key)
			} else {
				s.logger.Warn("Failed to read snapshot key", "namespace", s.namespace, "key", key, "error", err)
			}
			return light.ColorLevel{}, false
		}
		values[i] = v
	}

	return light.ColorLevel{
		Level: values[0],
		Color: light.Color{R: values[1], G: values[2], B: values[3], W: values[4]},
	}, true
}

// Save writes all five keys and commits only if every write succeeded.
func (s *Snapshots) Save(cl light.ColorLevel) error {
	h, err := s.engine.Open(s.namespace, ReadWrite)
	if err != nil {
		return &StoreError{Op: "open", Err: err}
	}
	defer h.Close()

	values := [5]uint8{cl.Level, cl.Color.R, cl.Color.G, cl.Color.B, cl.Color.W}
	for i, key := range snapshotKeys {
		if err := h.SetU8(key, values[i]); err != nil {
			return &StoreError{Op: "set", Key: key, Err: err}
		}
	}

	if err := h.Commit(); err != nil {
		return &StoreError{Op: "commit", Err: err}
	}

	s.logger.Debug("Snapshot committed", "namespace", s.namespace, "level", cl.Level,
		"r", cl.Color.R, "g", cl.Color.G, "b", cl.Color.B, "w", cl.Color.W)
	return nil
}

// Erase removes the snapshot so the next start uses the defaults.
func (s *Snapshots) Erase() error {
	h, err := s.engine.Open(s.namespace, ReadWrite)
	if err != nil {
		return &StoreError{Op: "open", Err: err}
	}
	defer h.Close()

	for _, key := range snapshotKeys {
		if err := h.Erase(key); err != nil {
			return &StoreError{Op: "erase", Key: key, Err: err}
		}
	}

	if err := h.Commit(); err != nil {
		return &StoreError{Op: "commit", Err: err}
	}
	return nil
}
