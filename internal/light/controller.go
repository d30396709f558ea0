package light

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/stripd/internal/events"
)

// Output programs duty values into the four hardware PWM channels.
// Apply must update all four channels or return an error.
type Output interface {
	Apply(duty DutySet) error
	FrequencyHz() int
}

// Store persists the colour/level snapshot across restarts.
type Store interface {
	// Load returns the persisted snapshot, or false when no complete snapshot exists.
	Load() (ColorLevel, bool)
	// Save writes and commits the snapshot.
	Save(ColorLevel) error
}

// HardwareError reports a failure to program the PWM channels. With 8-bit
// duties this only happens when the output is misconfigured.
type HardwareError struct {
	Duty DutySet
	Err  error
}

func (e *HardwareError) Error() string {
	return fmt.Sprintf("program pwm channels %+v: %v", e.Duty, e.Err)
}

func (e *HardwareError) Unwrap() error { return e.Err }

// IsHardwareError reports whether err is (or wraps) a HardwareError.
func IsHardwareError(err error) bool {
	var hwErr *HardwareError
	return errors.As(err, &hwErr)
}

// Controller owns the canonical ColorLevel. SetColor and SetLevel are
// serialised end to end; State observes either the full pre- or post-mutation
// state.
type Controller struct {
	out   Output
	store Store

	// mutateMu serialises mutations including the persistence step.
	mutateMu sync.Mutex

	// stateMu guards the published state. Hardware is programmed while it is
	// held for writing so readers never see duties that differ from hardware.
	stateMu sync.RWMutex
	state   State

	logger   *slog.Logger
	bus      *events.Bus
	onFault  func(error)
	defaults ColorLevel
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithEventBus publishes state changes and persistence results to bus.
func WithEventBus(bus *events.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// WithFaultHandler registers a callback for hardware errors.
func WithFaultHandler(fn func(error)) Option {
	return func(c *Controller) {
		c.onFault = fn
	}
}

// WithDefaults overrides the state used when no snapshot exists.
func WithDefaults(cl ColorLevel) Option {
	return func(c *Controller) {
		c.defaults = cl
	}
}

// NewController loads the persisted snapshot (or the defaults), programs the
// hardware with it and returns the ready controller.
func NewController(out Output, store Store, opts ...Option) (*Controller, error) {
	c := &Controller{
		out:      out,
		store:    store,
		logger:   slog.Default(),
		defaults: Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	initial, ok := store.Load()
	if ok {
		c.logger.Info("Restored light state from snapshot",
			"r", initial.Color.R, "g", initial.Color.G, "b", initial.Color.B, "w", initial.Color.W,
			"level", initial.Level)
	} else {
		initial = c.defaults
		c.logger.Info("No light snapshot found, using defaults",
			"r", initial.Color.R, "g", initial.Color.G, "b", initial.Color.B, "w", initial.Color.W,
			"level", initial.Level)
	}

	if err := c.apply(initial, "startup"); err != nil {
		return nil, err
	}

	return c, nil
}

// SetColor persists the new colour together with the current level, then
// applies it. A persistence failure is logged and the colour is applied anyway.
func (c *Controller) SetColor(color Color) error {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	next := ColorLevel{Color: color, Level: c.State().Level}

	if err := c.store.Save(next); err != nil {
		c.logger.Warn("Failed to persist light snapshot", "error", err)
		c.publish(events.PersistFailedEvent{
			Error:     err.Error(),
			Timestamp: now(),
		})
	} else {
		c.publish(events.PersistedEvent{
			R: color.R, G: color.G, B: color.B, W: color.W,
			Level:     next.Level,
			Timestamp: now(),
		})
	}

	if err := c.apply(next, "color"); err != nil {
		return err
	}

	c.logger.Info("Set color", "r", color.R, "g", color.G, "b", color.B, "w", color.W)
	return nil
}

// SetLevel changes the brightness only. The level is not persisted.
func (c *Controller) SetLevel(level uint8) error {
	c.mutateMu.Lock()
	defer c.mutateMu.Unlock()

	next := ColorLevel{Color: c.State().Color, Level: level}
	if err := c.apply(next, "level"); err != nil {
		return err
	}

	c.logger.Info("Set level", "level", level)
	return nil
}

// State returns the current colour, level and programmed duties.
func (c *Controller) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// FrequencyHz returns the PWM frequency of the output.
func (c *Controller) FrequencyHz() int {
	return c.out.FrequencyHz()
}

// apply recomputes all four duties, programs them and publishes the new state
// as one unit. On a hardware error the published state is left unchanged.
func (c *Controller) apply(next ColorLevel, kind string) error {
	duty := ComputeDuties(next.Color, next.Level)

	c.stateMu.Lock()
	if err := c.out.Apply(duty); err != nil {
		c.stateMu.Unlock()
		hwErr := &HardwareError{Duty: duty, Err: err}
		c.logger.Error("Failed to program PWM channels", "error", hwErr)
		if c.onFault != nil {
			c.onFault(hwErr)
		}
		return hwErr
	}
	c.state = State{ColorLevel: next, Duty: duty}
	c.stateMu.Unlock()

	c.logger.Debug("Programmed PWM channels",
		"duty_r", duty.R, "duty_g", duty.G, "duty_b", duty.B, "duty_w", duty.W)

	c.publish(events.LightChangedEvent{
		Kind:      kind,
		R:         next.Color.R,
		G:         next.Color.G,
		B:         next.Color.B,
		W:         next.Color.W,
		Level:     next.Level,
		DutyR:     duty.R,
		DutyG:     duty.G,
		DutyB:     duty.B,
		DutyW:     duty.W,
		Timestamp: now(),
	})
	return nil
}

func (c *Controller) publish(ev events.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

func now() string {
	return time.Now().Format(time.RFC3339)
}
