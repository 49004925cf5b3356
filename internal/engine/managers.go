package engine

import (
	"context"
	"log/slog"
)

// sweepManager disconnects sessions that have been idle past the engine's
// timeout. Closing the connection makes the session's read loop exit, and
// its own cleanup path tears everything down.
type sweepManager struct {
	engine *Engine
}

func (m *sweepManager) Name() string { return "session-sweep" }

func (m *sweepManager) Tick(ctx context.Context) error {
	for _, s := range m.engine.sessions.Expired(m.engine.idleTimeout) {
		slog.Info("sweeping idle session", "session", s.ID(), "idle_since", s.LastActivity())
		s.Conn().SendLine("\nYou have been idle too long. The door swings shut behind you.")
		s.Conn().Close()
	}
	return nil
}

// regenManager slowly restores hit points to every character in the world.
type regenManager struct {
	engine *Engine
}

func (m *regenManager) Name() string { return "hp-regen" }

func (m *regenManager) Tick(ctx context.Context) error {
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()
	for _, c := range m.engine.chars {
		if c.HP < c.MaxHP {
			c.HP++
		}
	}
	return nil
}

// respawnManager revives dead NPCs whose respawn delay has elapsed.
type respawnManager struct {
	engine *Engine
}

func (m *respawnManager) Name() string { return "npc-respawn" }

func (m *respawnManager) Tick(ctx context.Context) error {
	return m.engine.world.RespawnNPCs(ctx)
}

// Managers returns the standard upkeep set for this engine.
func (e *Engine) Managers() []Manager {
	return []Manager{
		&sweepManager{engine: e},
		&regenManager{engine: e},
		&respawnManager{engine: e},
	}
}
