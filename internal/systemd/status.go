package systemd

import (
	"log/slog"
	"sync"

	"github.com/smazurov/stripd/internal/events"
)

const (
	statusRunning  = "Running"
	statusDegraded = "Persistence degraded: "
)

// Subscriber is the part of the event bus the status reporter needs.
type Subscriber interface {
	Subscribe(handler any) func()
}

// PersistenceStatus mirrors snapshot persistence health into the STATUS= line
// shown by systemctl status. Only transitions are sent.
type PersistenceStatus struct {
	logger *slog.Logger

	mu       sync.Mutex
	degraded bool
	unsubs   []func()
}

// ReportPersistence sets the status to running and follows persistence
// events on bus until Stop.
func ReportPersistence(bus Subscriber, logger *slog.Logger) *PersistenceStatus {
	p := &PersistenceStatus{logger: logger}
	Status(logger, statusRunning)

	p.unsubs = append(p.unsubs,
		bus.Subscribe(func(events.PersistedEvent) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.degraded {
				p.degraded = false
				Status(p.logger, statusRunning)
			}
		}),
		bus.Subscribe(func(e events.PersistFailedEvent) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if !p.degraded {
				p.degraded = true
				Status(p.logger, statusDegraded+e.Error)
			}
		}),
	)
	return p
}

func (p *PersistenceStatus) Stop() {
	for _, unsub := range p.unsubs {
		unsub()
	}
}
