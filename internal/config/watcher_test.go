package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type testConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

func loadTestConfig(path string) (testConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return testConfig{}, err
	}
	var cfg testConfig
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startWatcher(t *testing.T, path string, loader func(string) (testConfig, error), opts ...WatcherOption[testConfig]) *Watcher[testConfig] {
	t.Helper()
	opts = append([]WatcherOption[testConfig]{WithDebounce[testConfig](30 * time.Millisecond)}, opts...)
	w := NewConfigWatcher(path, loader, newTestLogger(), opts...)
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := w.Stop(); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	})
	return w
}

func receive(t *testing.T, ch <-chan testConfig) testConfig {
	t.Helper()
	select {
	case cfg := <-ch:
		return cfg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
		return testConfig{}
	}
}

func TestConfigWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("name = \"initial\"\nvalue = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	received := make(chan testConfig, 4)
	w := startWatcher(t, path, loadTestConfig)
	w.OnReload(func(cfg testConfig) { received <- cfg })

	if err := os.WriteFile(path, []byte("name = \"updated\"\nvalue = 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg := receive(t, received); cfg.Name != "updated" || cfg.Value != 42 {
		t.Errorf("got %+v, want name=updated value=42", cfg)
	}
}

func TestConfigWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("value = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	received := make(chan testConfig, 4)
	w := startWatcher(t, path, loadTestConfig)
	w.OnReload(func(cfg testConfig) { received <- cfg })

	tmp := filepath.Join(dir, ".config.toml.swp")
	if err := os.WriteFile(tmp, []byte("value = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	if cfg := receive(t, received); cfg.Value != 7 {
		t.Errorf("Value = %d, want 7", cfg.Value)
	}
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("value = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var loads atomic.Int32
	startWatcher(t, path, func(p string) (testConfig, error) {
		loads.Add(1)
		return loadTestConfig(p)
	})

	if err := os.WriteFile(filepath.Join(dir, "state.toml"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if n := loads.Load(); n != 0 {
		t.Errorf("loader called %d times for an unrelated file", n)
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("value = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var loads atomic.Int32
	received := make(chan testConfig, 10)
	w := startWatcher(t, path, func(p string) (testConfig, error) {
		loads.Add(1)
		return loadTestConfig(p)
	}, WithDebounce[testConfig](150*time.Millisecond))
	w.OnReload(func(cfg testConfig) { received <- cfg })

	for i := 1; i <= 5; i++ {
		if err := os.WriteFile(path, []byte("value = "+string(rune('0'+i))+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if cfg := receive(t, received); cfg.Value != 5 {
		t.Errorf("Value = %d, want the last write", cfg.Value)
	}
	if n := loads.Load(); n != 1 {
		t.Errorf("loader called %d times, want 1", n)
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("value = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	var notified atomic.Bool
	w := startWatcher(t, path, func(string) (testConfig, error) {
		return testConfig{}, errors.New("broken")
	}, WithErrorHandler[testConfig](func(err error) { errCh <- err }))
	w.OnReload(func(testConfig) { notified.Store(true) })

	if err := os.WriteFile(path, []byte("value = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("error handler not called")
	}
	if notified.Load() {
		t.Error("handlers notified despite a load error")
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("value = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	kept := make(chan testConfig, 4)
	var removedCalls atomic.Int32
	w := startWatcher(t, path, loadTestConfig)
	unsubscribe := w.OnReload(func(testConfig) { removedCalls.Add(1) })
	w.OnReload(func(cfg testConfig) { kept <- cfg })
	unsubscribe()

	if err := os.WriteFile(path, []byte("value = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	receive(t, kept)
	if n := removedCalls.Load(); n != 0 {
		t.Errorf("unsubscribed handler called %d times", n)
	}
}

func TestConfigWatcher_StopWithoutStart(t *testing.T) {
	w := NewConfigWatcher("config.toml", loadTestConfig, newTestLogger())
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
