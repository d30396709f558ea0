package metrics

import (
	"github.com/smazurov/stripd/internal/events"
)

// Subscriber is the part of the event bus the recorder needs.
type Subscriber interface {
	Subscribe(handler any) func()
}

// Recorder feeds bus events into the Prometheus metrics.
type Recorder struct {
	bus    Subscriber
	unsubs []func()
}

func NewRecorder(bus Subscriber) *Recorder {
	return &Recorder{bus: bus}
}

// Start subscribes to light and persistence events.
func (r *Recorder) Start() {
	r.unsubs = append(r.unsubs,
		r.bus.Subscribe(func(e events.LightChangedEvent) {
			SetLight(e.Kind,
				ChannelValues{R: e.R, G: e.G, B: e.B, W: e.W},
				e.Level,
				ChannelValues{R: e.DutyR, G: e.DutyG, B: e.DutyB, W: e.DutyW})
		}),
		r.bus.Subscribe(func(events.PersistFailedEvent) {
			IncPersistFailures()
		}),
	)
}

func (r *Recorder) Stop() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}
