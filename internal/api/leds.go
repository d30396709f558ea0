package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/stripd/internal/api/models"
)

// registerLEDRoutes exposes the board status LED capabilities.
func (s *Server) registerLEDRoutes() {
	if s.options.LEDController == nil {
		s.logger.Debug("Status LED controller not available, skipping LED routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/leds/capabilities",
		Summary:     "Get Status LED Capabilities",
		Description: "List the status LEDs and patterns available on this board",
		Tags:        []string{"leds"},
	}, func(_ context.Context, _ *struct{}) (*models.LEDCapabilitiesResponse, error) {
		resp := &models.LEDCapabilitiesResponse{}
		resp.Body.AvailableTypes = s.options.LEDController.Available()
		resp.Body.AvailablePatterns = s.options.LEDController.Patterns()
		return resp, nil
	})
}
