package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smazurov/stripd/internal/api"
	"github.com/smazurov/stripd/internal/light"
	"github.com/smazurov/stripd/internal/store"
)

type breakableOutput struct {
	broken atomic.Bool
}

func (o *breakableOutput) Apply(light.DutySet) error {
	if o.broken.Load() {
		return errors.New("pwmchip0: write duty_cycle: no such device")
	}
	return nil
}

func (o *breakableOutput) FrequencyHz() int { return 1000 }

func TestHardwareFaultAnswersBeforeExit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, cancel := context.WithCancel(context.Background())
	exited := make(chan int, 1)
	d := &daemon{
		logger:   logger,
		cancel:   cancel,
		serveErr: make(chan error, 1),
		fault:    make(chan error, 1),
		exit:     func(code int) { exited <- code },
	}

	out := &breakableOutput{}
	snaps := store.NewSnapshots(store.NewMemory(), "", logger)
	ctrl, err := light.NewController(out, snaps, light.WithLogger(logger), light.WithFaultHandler(d.onFault))
	if err != nil {
		t.Fatal(err)
	}

	d.server = api.NewServer(&api.Options{Light: ctrl})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { d.serveErr <- d.server.Serve(ln) }()
	go d.wait()

	out.broken.Store(true)
	req, err := http.NewRequest(http.MethodPut, "http://"+ln.Addr().String()+"/ctrl", strings.NewReader("W1,2,3,4"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT /ctrl: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError || string(body) != "Failed to update LED strip" {
		t.Errorf("PUT /ctrl = %d %q, want 500 generic message", resp.StatusCode, body)
	}

	select {
	case code := <-exited:
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not exit after a hardware fault")
	}
}

func TestStorePathDefaultsPerDriver(t *testing.T) {
	field, ok := reflect.TypeOf(Options{}).FieldByName("StorePath")
	if !ok {
		t.Fatal("Options has no StorePath")
	}
	// An empty path lets store.NewEngine pick the per-driver file, the same
	// one the snapshot command resolves.
	if def := field.Tag.Get("default"); def != "" {
		t.Errorf("StorePath default = %q, want empty", def)
	}
}
