package store

import "sync"

// Memory is a process-local Engine. Its contents do not survive a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]uint8
}

// NewMemory creates an empty in-memory engine.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]uint8)}
}

// Open implements Engine.
func (m *Memory) Open(namespace string, mode Mode) (Handle, error) {
	return &stagedHandle{
		mode: mode,
		read: func(key string) (uint8, bool) {
			m.mu.RLock()
			defer m.mu.RUnlock()
			v, ok := m.data[namespace][key]
			return v, ok
		},
		commit: func(staged map[string]*uint8) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			ns := m.data[namespace]
			if ns == nil {
				ns = make(map[string]uint8)
				m.data[namespace] = ns
			}
			applyStaged(ns, staged)
			return nil
		},
	}, nil
}

// Close implements Engine.
func (m *Memory) Close() error { return nil }

// stagedHandle buffers writes in memory and hands them to commit as one batch.
// A nil value marks an erased key.
type stagedHandle struct {
	mode   Mode
	staged map[string]*uint8
	read   func(key string) (uint8, bool)
	commit func(staged map[string]*uint8) error
	closed bool
}

func (h *stagedHandle) GetU8(key string) (uint8, error) {
	if h.closed {
		return 0, ErrClosed
	}
	if v, ok := h.staged[key]; ok {
		if v == nil {
			return 0, ErrNotFound
		}
		return *v, nil
	}
	if v, ok := h.read(key); ok {
		return v, nil
	}
	return 0, ErrNotFound
}

func (h *stagedHandle) SetU8(key string, value uint8) error {
	return h.stage(key, &value)
}

func (h *stagedHandle) Erase(key string) error {
	return h.stage(key, nil)
}

func (h *stagedHandle) stage(key string, v *uint8) error {
	if h.closed {
		return ErrClosed
	}
	if h.mode != ReadWrite {
		return ErrReadOnly
	}
	if h.staged == nil {
		h.staged = make(map[string]*uint8)
	}
	h.staged[key] = v
	return nil
}

func (h *stagedHandle) Commit() error {
	if h.closed {
		return ErrClosed
	}
	if h.mode != ReadWrite {
		return ErrReadOnly
	}
	return h.commit(h.staged)
}

func (h *stagedHandle) Close() error {
	h.closed = true
	h.staged = nil
	return nil
}

func applyStaged(ns map[string]uint8, staged map[string]*uint8) {
	for k, v := range staged {
		if v == nil {
			delete(ns, k)
		} else {
			ns[k] = *v
		}
	}
}
