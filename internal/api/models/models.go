// Package models holds the request and response bodies of the typed API.
package models

// Duty holds the programmed PWM duty per channel.
type Duty struct {
	R uint8 `json:"r" example:"100" doc:"Red duty (0-255)"`
	G uint8 `json:"g" example:"50" doc:"Green duty (0-255)"`
	B uint8 `json:"b" example:"25" doc:"Blue duty (0-255)"`
	W uint8 `json:"w" example:"128" doc:"White duty (0-255)"`
}

// LightData is the current strip state.
type LightData struct {
	R           uint8 `json:"r" example:"200" doc:"Red intensity of the base colour"`
	G           uint8 `json:"g" example:"100" doc:"Green intensity of the base colour"`
	B           uint8 `json:"b" example:"50" doc:"Blue intensity of the base colour"`
	W           uint8 `json:"w" example:"255" doc:"White intensity of the base colour"`
	Level       uint8 `json:"level" example:"128" doc:"Brightness level applied to every channel"`
	Duty        Duty  `json:"duty" doc:"Duties currently programmed into the PWM channels"`
	FrequencyHz int   `json:"frequency_hz" example:"1000" doc:"PWM frequency"`
}

type LightResponse struct {
	Body LightData
}

// ColorRequest sets the base colour. The level is kept.
type ColorRequest struct {
	Body struct {
		R int `json:"r" minimum:"0" maximum:"255" example:"200" doc:"Red intensity"`
		G int `json:"g" minimum:"0" maximum:"255" example:"100" doc:"Green intensity"`
		B int `json:"b" minimum:"0" maximum:"255" example:"50" doc:"Blue intensity"`
		W int `json:"w" minimum:"0" maximum:"255" example:"255" doc:"White intensity"`
	}
}

// LevelRequest sets the brightness. The colour is kept.
type LevelRequest struct {
	Body struct {
		Level int `json:"level" minimum:"0" maximum:"255" example:"128" doc:"Brightness level"`
	}
}

// Health check models
type HealthData struct {
	Status      string `json:"status" example:"ok" doc:"Service health status"`
	Message     string `json:"message" example:"API is healthy" doc:"Health status message"`
	Persistence string `json:"persistence" example:"ok" enum:"ok,degraded" doc:"Whether the last colour snapshot was saved"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// LEDCapabilitiesResponse lists the status LEDs of the board.
type LEDCapabilitiesResponse struct {
	Body struct {
		AvailableTypes    []string `json:"available_types" doc:"LED types on this board"`
		AvailablePatterns []string `json:"available_patterns" doc:"Patterns the LEDs support"`
	}
}
