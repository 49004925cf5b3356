package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const DefaultTickLength = 30 * time.Second

// Manager is a unit of periodic world upkeep.
type Manager interface {
	Name() string
	Tick(context.Context) error
}

// Driver runs every manager once per tick. A failing manager is logged and
// skipped; the others still run and the loop keeps going.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

func (d *Driver) Tick(ctx context.Context) {
	for _, m := range d.managers {
		if err := d.tickOne(ctx, m); err != nil {
			slog.Error("manager tick failed", "manager", m.Name(), "error", err)
		}
	}
}

func (d *Driver) tickOne(ctx context.Context, m Manager) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Manager: m.Name(), Value: r}
		}
	}()
	return m.Tick(ctx)
}

// PanicError wraps a panic raised inside a manager's Tick.
type PanicError struct {
	Manager string
	Value   any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("manager %s panicked: %v", e.Manager, e.Value)
}
