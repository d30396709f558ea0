package led

import (
	"log/slog"
	"sync"

	"github.com/smazurov/stripd/internal/events"
)

// Manager mirrors snapshot durability on the status LED: solid while the
// last save committed, blinking after a save failed.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	unsubscribe []func()
	logger      *slog.Logger

	mu       sync.Mutex
	degraded bool
	started  bool
}

func NewManager(controller Controller, eventBus *events.Bus, logger *slog.Logger) *Manager {
	return &Manager{
		controller: controller,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Start lights the LED solid and begins listening for persistence events.
func (m *Manager) Start() {
	m.mu.Lock()
	m.started = true
	m.show(false)
	m.mu.Unlock()

	m.unsubscribe = append(m.unsubscribe,
		m.eventBus.Subscribe(func(events.PersistedEvent) { m.update(false) }),
		m.eventBus.Subscribe(func(e events.PersistFailedEvent) {
			m.logger.Debug("Snapshot save failed", "error", e.Error)
			m.update(true)
		}),
	)
	m.logger.Info("Status LED manager started")
}

// Stop unsubscribes and switches the LED off.
func (m *Manager) Stop() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil

	m.mu.Lock()
	m.started = false
	m.mu.Unlock()

	if err := m.controller.Set(StatusLED, false, ""); err != nil {
		m.logger.Warn("Failed to switch status LED off", "error", err)
	}
	m.logger.Info("Status LED manager stopped")
}

// Degraded reports whether the most recent save failed.
func (m *Manager) Degraded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded
}

func (m *Manager) update(degraded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started || degraded == m.degraded {
		m.degraded = degraded
		return
	}
	m.degraded = degraded
	m.show(degraded)
}

// show must be called with mu held.
func (m *Manager) show(degraded bool) {
	pattern := PatternSolid
	if degraded {
		pattern = PatternBlink
	}
	if err := m.controller.Set(StatusLED, true, pattern); err != nil {
		m.logger.Warn("Failed to set status LED", "pattern", pattern, "error", err)
		return
	}
	m.logger.Debug("Status LED updated", "pattern", pattern)
}
