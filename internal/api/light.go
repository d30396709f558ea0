package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/stripd/internal/api/models"
	"github.com/smazurov/stripd/internal/light"
)

func (s *Server) lightResponse() *models.LightResponse {
	st := s.light.State()
	return &models.LightResponse{
		Body: models.LightData{
			R:           st.Color.R,
			G:           st.Color.G,
			B:           st.Color.B,
			W:           st.Color.W,
			Level:       st.Level,
			Duty:        models.Duty(st.Duty),
			FrequencyHz: s.light.FrequencyHz(),
		},
	}
}

func (s *Server) registerLightRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-light",
		Method:      http.MethodGet,
		Path:        "/api/light",
		Summary:     "Get Light State",
		Description: "Current base colour, brightness level and programmed PWM duties",
		Tags:        []string{"light"},
	}, func(_ context.Context, _ *struct{}) (*models.LightResponse, error) {
		return s.lightResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-light-color",
		Method:      http.MethodPut,
		Path:        "/api/light/color",
		Summary:     "Set Colour",
		Description: "Persist and apply a new base colour. The brightness level is kept.",
		Tags:        []string{"light"},
		Errors:      []int{422, 500},
	}, func(_ context.Context, input *models.ColorRequest) (*models.LightResponse, error) {
		c := light.Color{
			R: uint8(input.Body.R),
			G: uint8(input.Body.G),
			B: uint8(input.Body.B),
			W: uint8(input.Body.W),
		}
		if err := s.light.SetColor(c); err != nil {
			return nil, huma.Error500InternalServerError(respHardwareError)
		}
		return s.lightResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-light-level",
		Method:      http.MethodPut,
		Path:        "/api/light/level",
		Summary:     "Set Level",
		Description: "Apply a new brightness level to every channel. The level is not persisted.",
		Tags:        []string{"light"},
		Errors:      []int{422, 500},
	}, func(_ context.Context, input *models.LevelRequest) (*models.LightResponse, error) {
		if err := s.light.SetLevel(uint8(input.Body.Level)); err != nil {
			return nil, huma.Error500InternalServerError(respHardwareError)
		}
		return s.lightResponse(), nil
	})
}
