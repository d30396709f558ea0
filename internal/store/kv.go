// Package store persists the light snapshot in a namespaced key-value engine
// with explicit commits.
package store

import (
	"errors"
	"fmt"
)

// Mode selects how a namespace is opened.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

var (
	// ErrNotFound is returned by Handle.GetU8 for a missing key.
	ErrNotFound = errors.New("key not found")
	// ErrReadOnly is returned when writing through a read-only handle.
	ErrReadOnly = errors.New("handle is read-only")
	// ErrClosed is returned when using a handle after Close.
	ErrClosed = errors.New("handle is closed")
)

// Engine is a key-value storage engine with per-key get/set and explicit
// commit, partitioned into namespaces.
type Engine interface {
	// Open returns a handle scoped to namespace. The caller must Close it.
	Open(namespace string, mode Mode) (Handle, error)
	// Close releases the engine.
	Close() error
}

// Handle is an open namespace. Writes are staged until Commit; closing a
// handle without committing discards them.
type Handle interface {
	GetU8(key string) (uint8, error)
	SetU8(key string, value uint8) error
	Erase(key string) error
	Commit() error
	Close() error
}

// Engine drivers accepted by NewEngine.
const (
	DriverSQLite = "sqlite"
	DriverTOML   = "toml"
	DriverMemory = "memory"
)

// NewEngine opens the engine named by driver. path is ignored by the memory
// driver.
func NewEngine(driver, path string) (Engine, error) {
	if path == "" {
		path = DefaultPath(driver)
	}
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverTOML:
		return NewTOML(path), nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// DefaultPath is the file used by driver when no path is configured. The
// daemon and the snapshot command both resolve through it.
func DefaultPath(driver string) string {
	switch driver {
	case DriverSQLite, "":
		return "stripd.db"
	case DriverTOML:
		return "state.toml"
	default:
		return ""
	}
}

func checkU8(key string, v int64) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("value %d for key %q is out of 8-bit range", v, key)
	}
	return uint8(v), nil
}
