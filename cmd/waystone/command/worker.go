package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"

	"github.com/waystone-mud/waystone/internal/commands"
	"github.com/waystone-mud/waystone/internal/engine"
	"github.com/waystone-mud/waystone/internal/listener"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	if err := cfg.Log.Apply(); err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}

	// World content
	world, err := cfg.Storage.BuildWorld()
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}

	// Persistence
	db, err := cfg.Database.BuildDatabase()
	if err != nil {
		return nil, fmt.Errorf("building database: %w", err)
	}

	// Message broker
	nats, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("building nats server: %w", err)
	}

	// Command catalog
	registry, err := commands.NewDefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("building command registry: %w", err)
	}

	// Engine
	engineOpts := []engine.EngineOpt{
		engine.WithStartingRoom(cfg.Game.StartingRoom),
	}
	if cfg.Game.IdleTimeout != "" {
		d, err := time.ParseDuration(cfg.Game.IdleTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing idle_timeout: %w", err)
		}
		engineOpts = append(engineOpts, engine.WithIdleTimeout(d))
	}
	eng, err := engine.NewEngine(db, world, registry, nats, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}

	// Listeners
	var cmOpts []listener.ConnectionManagerOpt
	if cfg.Game.MaxPerIP != 0 {
		cmOpts = append(cmOpts, listener.WithMaxPerIP(cfg.Game.MaxPerIP))
	}
	cm := listener.NewConnectionManager(eng, cmOpts...)

	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	// World upkeep
	var driverOpts []engine.DriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, engine.WithTickLength(d))
	}
	driver := engine.NewDriver(eng.Managers(), driverOpts...)

	return service.WorkerList{
		"nats":      nats,
		"driver":    driver,
		"listeners": &listeners,
	}, nil
}
