package store

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/smazurov/stripd/internal/light"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// faultyEngine wraps an engine and fails writes to one key. It also counts
// open and closed handles.
type faultyEngine struct {
	Engine
	failKey   string
	failErr   error
	commitErr error
	opened    int
	closed    int
}

func (f *faultyEngine) Open(namespace string, mode Mode) (Handle, error) {
	h, err := f.Engine.Open(namespace, mode)
	if err != nil {
		return nil, err
	}
	f.opened++
	return &faultyHandle{Handle: h, engine: f}, nil
}

type faultyHandle struct {
	Handle
	engine *faultyEngine
}

func (h *faultyHandle) SetU8(key string, v uint8) error {
	if key == h.engine.failKey {
		return h.engine.failErr
	}
	return h.Handle.SetU8(key, v)
}

func (h *faultyHandle) Commit() error {
	if h.engine.commitErr != nil {
		return h.engine.commitErr
	}
	return h.Handle.Commit()
}

func (h *faultyHandle) Close() error {
	h.engine.closed++
	return h.Handle.Close()
}

func TestSnapshots_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for name, engine := range engines(t) {
		t.Run(name, func(t *testing.T) {
			s := NewSnapshots(engine, "", testLogger())
			for range 20 {
				want := light.ColorLevel{
					Level: uint8(rng.IntN(256)),
					Color: light.Color{
						R: uint8(rng.IntN(256)),
						G: uint8(rng.IntN(256)),
						B: uint8(rng.IntN(256)),
						W: uint8(rng.IntN(256)),
					},
				}
				if err := s.Save(want); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
				got, ok := s.Load()
				if !ok {
					t.Fatal("Load() reported no snapshot after Save")
				}
				if got != want {
					t.Fatalf("Load() = %+v, want %+v", got, want)
				}
			}
		})
	}
}

func TestSnapshots_EmptyStore(t *testing.T) {
	s := NewSnapshots(NewMemory(), "", testLogger())
	if _, ok := s.Load(); ok {
		t.Error("Load() on empty store reported a snapshot")
	}
}

func TestSnapshots_PartialSnapshotIsIgnored(t *testing.T) {
	for _, missing := range snapshotKeys {
		t.Run("missing_"+missing, func(t *testing.T) {
			engine := NewMemory()
			h, _ := engine.Open(DefaultNamespace, ReadWrite)
			for _, key := range snapshotKeys {
				if key != missing {
					_ = h.SetU8(key, 100)
				}
			}
			if err := h.Commit(); err != nil {
				t.Fatal(err)
			}
			h.Close()

			s := NewSnapshots(engine, "", testLogger())
			if got, ok := s.Load(); ok {
				t.Errorf("Load() = %+v, true; want no snapshot", got)
			}
		})
	}
}

func TestSnapshots_FailedWriteSkipsCommit(t *testing.T) {
	previous := light.ColorLevel{Level: 10, Color: light.Color{R: 1, G: 2, B: 3, W: 4}}
	engine := &faultyEngine{Engine: NewMemory()}
	s := NewSnapshots(engine, "", testLogger())
	if err := s.Save(previous); err != nil {
		t.Fatal(err)
	}

	engine.failKey = KeyBlue
	engine.failErr = errors.New("no space")

	err := s.Save(light.ColorLevel{Level: 200, Color: light.Color{R: 9, G: 9, B: 9, W: 9}})
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Save() error = %v, want *StoreError", err)
	}
	if storeErr.Key != KeyBlue {
		t.Errorf("StoreError.Key = %q, want %q", storeErr.Key, KeyBlue)
	}

	got, ok := s.Load()
	if !ok || got != previous {
		t.Errorf("Load() = %+v, %v; want previous snapshot %+v", got, ok, previous)
	}
	if engine.opened != engine.closed {
		t.Errorf("handles opened %d, closed %d", engine.opened, engine.closed)
	}
}

func TestSnapshots_CommitFailure(t *testing.T) {
	engine := &faultyEngine{Engine: NewMemory(), commitErr: errors.New("flash busy")}
	s := NewSnapshots(engine, "", testLogger())

	err := s.Save(light.Default())
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "commit" {
		t.Fatalf("Save() error = %v, want commit StoreError", err)
	}
	if _, ok := s.Load(); ok {
		t.Error("uncommitted snapshot became visible")
	}
	if engine.opened != engine.closed {
		t.Errorf("handles opened %d, closed %d", engine.opened, engine.closed)
	}
}

func TestSnapshots_Erase(t *testing.T) {
	for name, engine := range engines(t) {
		t.Run(name, func(t *testing.T) {
			s := NewSnapshots(engine, "", testLogger())
			if err := s.Save(light.ColorLevel{Level: 5, Color: light.DefaultColor}); err != nil {
				t.Fatal(err)
			}
			if err := s.Erase(); err != nil {
				t.Fatalf("Erase() error = %v", err)
			}
			if _, ok := s.Load(); ok {
				t.Error("Load() found a snapshot after Erase")
			}
		})
	}
}

func TestSnapshots_ControllerReboot(t *testing.T) {
	// Colour changes persist with the level current at that time; later level
	// changes are not persisted.
	engine := NewMemory()
	out := &recordingOutput{}

	c, err := light.NewController(out, NewSnapshots(engine, "", testLogger()), light.WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if c.State().Level != 0 {
		t.Fatalf("fresh boot level = %d, want 0", c.State().Level)
	}
	if err := c.SetLevel(255); err != nil {
		t.Fatal(err)
	}
	if err := c.SetColor(light.Color{R: 200, G: 100, B: 50, W: 255}); err != nil {
		t.Fatal(err)
	}
	if err := c.SetLevel(128); err != nil {
		t.Fatal(err)
	}

	rebooted, err := light.NewController(out, NewSnapshots(engine, "", testLogger()), light.WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}
	want := light.ColorLevel{Color: light.Color{R: 200, G: 100, B: 50, W: 255}, Level: 255}
	if got := rebooted.State().ColorLevel; got != want {
		t.Errorf("after reboot state = %+v, want %+v", got, want)
	}
}

type recordingOutput struct {
	last light.DutySet
}

func (r *recordingOutput) Apply(d light.DutySet) error {
	r.last = d
	return nil
}

func (r *recordingOutput) FrequencyHz() int { return 1000 }
