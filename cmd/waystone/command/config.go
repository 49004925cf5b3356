package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string           `json:"tick_interval"`
	Listeners    []ListenerConfig `json:"listeners"`
	Storage      StorageConfig    `json:"storage"`
	Database     DatabaseConfig   `json:"database"`
	Nats         NatsConfig       `json:"nats"`
	Game         GameConfig       `json:"game"`
	Log          LogConfig        `json:"log"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
		}
	}

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.Validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Storage.Validate())
	el.Add(c.Database.Validate())
	el.Add(c.Nats.Validate())
	el.Add(c.Game.Validate())
	el.Add(c.Log.Validate())

	return el.Err()
}

// GameConfig tunes world behavior.
type GameConfig struct {
	StartingRoom string `json:"starting_room"`
	IdleTimeout  string `json:"idle_timeout"`
	MaxPerIP     int    `json:"max_per_ip"`
}

func (c *GameConfig) Validate() error {
	el := errors.NewErrorList()

	if c.StartingRoom == "" {
		el.Add(fmt.Errorf("starting_room is required"))
	}
	if c.IdleTimeout != "" {
		if _, err := time.ParseDuration(c.IdleTimeout); err != nil {
			el.Add(fmt.Errorf("parsing idle_timeout: %w", err))
		}
	}
	if c.MaxPerIP < 0 {
		el.Add(fmt.Errorf("max_per_ip cannot be negative"))
	}

	return el.Err()
}
