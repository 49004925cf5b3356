package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/pixil98/go-errors"
)

// NPC is the static template for a non-player character, loaded from the
// content store.
type NPC struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       int    `json:"level"`
	MaxHP       int    `json:"max_hp"`
	Hostile     bool   `json:"hostile,omitempty"`
	RespawnSecs int    `json:"respawn_secs,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (n *NPC) Validate() error {
	el := errors.NewErrorList()

	if n.Name == "" {
		el.Add(fmt.Errorf("npc name is required"))
	}
	if n.MaxHP <= 0 {
		el.Add(fmt.Errorf("max_hp must be positive"))
	}
	if n.Level < 0 {
		el.Add(fmt.Errorf("level cannot be negative"))
	}
	if n.RespawnSecs < 0 {
		el.Add(fmt.Errorf("respawn_secs cannot be negative"))
	}

	return el.Err()
}

const defaultNPCRespawn = 5 * time.Minute

// NPCInstance is one spawned NPC in one room. Combat systems damage it;
// the respawn tick revives it once its respawn delay has passed.
type NPCInstance struct {
	templateID string
	def        *NPC

	mu     sync.Mutex
	hp     int
	diedAt time.Time
}

func newNPCInstance(templateID string, def *NPC) *NPCInstance {
	return &NPCInstance{
		templateID: templateID,
		def:        def,
		hp:         def.MaxHP,
	}
}

func (n *NPCInstance) TemplateID() string { return n.templateID }
func (n *NPCInstance) Def() *NPC          { return n.def }

func (n *NPCInstance) HP() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hp
}

// Alive reports whether the NPC is currently up.
func (n *NPCInstance) Alive() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hp > 0
}

// Damage applies damage and records the time of death when HP reaches
// zero. Returns true if this call killed the NPC.
func (n *NPCInstance) Damage(amount int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.hp <= 0 {
		return false
	}
	n.hp -= amount
	if n.hp <= 0 {
		n.hp = 0
		n.diedAt = time.Now()
		return true
	}
	return false
}

func (n *NPCInstance) respawnDelay() time.Duration {
	if n.def.RespawnSecs > 0 {
		return time.Duration(n.def.RespawnSecs) * time.Second
	}
	return defaultNPCRespawn
}

// respawnIfDue revives a dead NPC whose respawn delay has elapsed.
func (n *NPCInstance) respawnIfDue(now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.hp > 0 {
		return false
	}
	if now.Sub(n.diedAt) < n.respawnDelay() {
		return false
	}
	n.hp = n.def.MaxHP
	n.diedAt = time.Time{}
	return true
}
