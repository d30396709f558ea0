package main

import (
	"testing"

	"github.com/smazurov/stripd/internal/light"
)

func TestParseChannels(t *testing.T) {
	tests := []struct {
		in      string
		want    [4]int
		wantErr bool
	}{
		{"0,1,2,3", [4]int{0, 1, 2, 3}, false},
		{"3, 1, 2, 0", [4]int{3, 1, 2, 0}, false},
		{"0,1,2", [4]int{}, true},
		{"0,1,2,x", [4]int{}, true},
		{"0,1,2,-1", [4]int{}, true},
	}
	for _, tt := range tests {
		got, err := parseChannels(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseChannels(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseChannels(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLightDefaults(t *testing.T) {
	opts := &Options{LightDefaultColor: "255, 255, 255, 240", LightDefaultLevel: 0}
	got, err := opts.lightDefaults()
	if err != nil {
		t.Fatal(err)
	}
	if got != light.Default() {
		t.Errorf("lightDefaults() = %+v, want %+v", got, light.Default())
	}

	for _, bad := range []*Options{
		{LightDefaultColor: "255,255,255", LightDefaultLevel: 0},
		{LightDefaultColor: "255,255,255,256", LightDefaultLevel: 0},
		{LightDefaultColor: "1,2,3,4", LightDefaultLevel: 300},
	} {
		if _, err := bad.lightDefaults(); err == nil {
			t.Errorf("lightDefaults(%+v) succeeded", bad)
		}
	}
}

func TestPWMConfig(t *testing.T) {
	opts := &Options{PWMDriver: "noop", PWMFrequency: 2000, PWMChannels: "3,2,1,0", PWMInvert: true, PWMBaudRate: 9600}
	cfg, err := opts.pwmConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Driver != "noop" || cfg.FrequencyHz != 2000 || cfg.Channels != [4]int{3, 2, 1, 0} || !cfg.Invert || cfg.BaudRate != 9600 {
		t.Errorf("pwmConfig() = %+v", cfg)
	}
}
