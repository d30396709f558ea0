package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

type testOptions struct {
	Config string

	Port        string   `toml:"server.port" env:"SERVER_PORT"`
	RecvTimeout string   `toml:"server.recv_timeout" env:"SERVER_RECV_TIMEOUT"`
	PWMChip     int      `toml:"pwm.chip" env:"PWM_CHIP"`
	PWMChannels string   `toml:"pwm.channels" env:"PWM_CHANNELS"`
	PWMInvert   bool     `toml:"pwm.invert" env:"PWM_INVERT"`
	Tags        []string `toml:"discovery.txt" env:"DISCOVERY_TXT"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleTOML = `
[server]
port = ":9000"
recv_timeout = "2s"

[pwm]
chip = 2
channels = [4, 5, 6, 7]
invert = false

[discovery]
txt = ["room=den", "zone=1"]
`

func TestLoadConfigFromTOML(t *testing.T) {
	opts := &testOptions{Config: writeConfig(t, sampleTOML), PWMInvert: true, Port: ":8080"}

	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := &testOptions{
		Config:      opts.Config,
		Port:        ":9000",
		RecvTimeout: "2s",
		PWMChip:     2,
		PWMChannels: "4,5,6,7",
		PWMInvert:   false,
		Tags:        []string{"room=den", "zone=1"},
	}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("LoadConfig() = %+v, want %+v", opts, want)
	}
}

func TestLoadConfigEnvOverridesTOML(t *testing.T) {
	t.Setenv("STRIPD_SERVER_PORT", ":7000")
	t.Setenv("STRIPD_PWM_INVERT", "true")
	t.Setenv("STRIPD_DISCOVERY_TXT", " a , b ")

	opts := &testOptions{Config: writeConfig(t, sampleTOML)}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatal(err)
	}

	if opts.Port != ":7000" {
		t.Errorf("Port = %q, want env value", opts.Port)
	}
	if !opts.PWMInvert {
		t.Error("PWMInvert = false, want env value true")
	}
	if !reflect.DeepEqual(opts.Tags, []string{"a", "b"}) {
		t.Errorf("Tags = %v", opts.Tags)
	}
	if opts.PWMChip != 2 {
		t.Errorf("PWMChip = %d, want TOML value 2", opts.PWMChip)
	}
}

func TestLoadConfigCLIWins(t *testing.T) {
	t.Setenv("STRIPD_PWM_CHIP", "9")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("port", ":8080", "")
	cmd.Flags().Int("pwm-chip", 0, "")
	if err := cmd.Flags().Parse([]string{"--port", ":1234", "--pwm-chip", "3"}); err != nil {
		t.Fatal(err)
	}

	opts := &testOptions{Config: writeConfig(t, sampleTOML), Port: ":1234", PWMChip: 3}
	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatal(err)
	}

	if opts.Port != ":1234" {
		t.Errorf("Port = %q, CLI value was overwritten", opts.Port)
	}
	if opts.PWMChip != 3 {
		t.Errorf("PWMChip = %d, CLI value was overwritten", opts.PWMChip)
	}
	if opts.RecvTimeout != "2s" {
		t.Errorf("RecvTimeout = %q, want TOML value", opts.RecvTimeout)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := &testOptions{Config: filepath.Join(t.TempDir(), "absent.toml"), Port: ":8080"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() should ignore a missing file: %v", err)
	}
	if opts.Port != ":8080" {
		t.Errorf("Port = %q, default lost", opts.Port)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	opts := &testOptions{Config: writeConfig(t, "[server\nport = ")}
	if err := LoadConfig(opts, nil); err == nil {
		t.Fatal("LoadConfig() should fail for invalid TOML")
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":              "port",
		"ServerRecvTimeout": "server-recv-timeout",
		"PWMSysfsRoot":      "pwm-sysfs-root",
		"PWMChannels":       "pwm-channels",
		"LoggingAPI":        "logging-api",
		"DiscoveryMDNS":     "discovery-mdns",
		"LEDName":           "led-name",
		"PWMBaudRate":       "pwm-baud-rate",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetNestedValue(t *testing.T) {
	doc := map[string]any{
		"store": map[string]any{"driver": "toml"},
		"flat":  "value",
	}
	if got := getNestedValue(doc, "store.driver"); got != "toml" {
		t.Errorf("store.driver = %v", got)
	}
	if got := getNestedValue(doc, "flat"); got != "value" {
		t.Errorf("flat = %v", got)
	}
	if got := getNestedValue(doc, "flat.deeper"); got != nil {
		t.Errorf("flat.deeper = %v, want nil", got)
	}
	if got := getNestedValue(doc, "missing.key"); got != nil {
		t.Errorf("missing.key = %v, want nil", got)
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
format = "json"
light = "debug"
store = "error"
ignored = 3
`)

	cfg, err := LoadLoggingConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Level != "warn" || cfg.Format != "json" {
		t.Errorf("global = %q/%q", cfg.Level, cfg.Format)
	}
	want := map[string]string{"light": "debug", "store": "error"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}

	if _, err := LoadLoggingConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadLoggingConfig() should report a missing file")
	}
}
