package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/stripd/internal/events"
)

// registerSSERoutes registers the light event stream. A new client first
// receives the current state as a light-changed event of kind "current".
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of light changes and snapshot persistence results",
		Tags:        []string{"events"},
	}, map[string]any{
		"light-changed":  events.LightChangedEvent{},
		"persisted":      events.PersistedEvent{},
		"persist-failed": events.PersistFailedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 16)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.LightChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PersistedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PersistFailedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		st := s.light.State()
		if err := send.Data(events.LightChangedEvent{
			Kind:      "current",
			R:         st.Color.R,
			G:         st.Color.G,
			B:         st.Color.B,
			W:         st.Color.W,
			Level:     st.Level,
			DutyR:     st.Duty.R,
			DutyG:     st.Duty.G,
			DutyB:     st.Duty.B,
			DutyW:     st.Duty.W,
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
