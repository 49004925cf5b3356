package game

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pixil98/go-errors"

	"github.com/waystone-mud/waystone/internal/database"
)

// Room is the static definition of a location, loaded from the content
// store at startup. Runtime state (occupants, live NPCs) lives on
// RoomInstance.
type Room struct {
	Name        string            `json:"name"`
	Area        string            `json:"area"`
	Description string            `json:"description"`
	Exits       map[string]string `json:"exits,omitempty"`  // direction -> room id
	Spawns      []string          `json:"spawns,omitempty"` // NPC ids; repeat for multiples
	Properties  RoomProperties    `json:"properties,omitempty"`
}

// RoomProperties are environmental flags. Rooms are lit unless marked dark.
type RoomProperties struct {
	Outdoor      bool   `json:"outdoor,omitempty"`
	Dark         bool   `json:"dark,omitempty"`
	SafeZone     bool   `json:"safe_zone,omitempty"`
	RequiresRank string `json:"requires_rank,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	if r.Area == "" {
		el.Add(fmt.Errorf("area is required"))
	}
	for dir, dest := range r.Exits {
		if dest == "" {
			el.Add(fmt.Errorf("exit %s: destination room id is required", dir))
		}
	}
	if rank := r.Properties.RequiresRank; rank != "" {
		if _, ok := database.ParseRank(rank); !ok {
			el.Add(fmt.Errorf("requires_rank: unknown rank %q", rank))
		}
	}

	return el.Err()
}

// RoomInstance is a live room: the static definition plus the mutable
// occupant set and NPC population, guarded by its own lock.
type RoomInstance struct {
	id  string
	def *Room

	mu        sync.RWMutex
	occupants map[string]struct{}
	npcs      []*NPCInstance
}

func NewRoomInstance(id string, def *Room) *RoomInstance {
	return &RoomInstance{
		id:        id,
		def:       def,
		occupants: make(map[string]struct{}),
	}
}

func (r *RoomInstance) ID() string { return r.id }
func (r *RoomInstance) Def() *Room { return r.def }

// Exit resolves a direction (case-insensitive) to a destination room id.
func (r *RoomInstance) Exit(direction string) (string, bool) {
	dest, ok := r.def.Exits[strings.ToLower(direction)]
	return dest, ok
}

// ExitDirections returns the available exits in sorted order.
func (r *RoomInstance) ExitDirections() []string {
	dirs := make([]string, 0, len(r.def.Exits))
	for d := range r.def.Exits {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// AddOccupant puts a character in the room.
func (r *RoomInstance) AddOccupant(characterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.occupants[characterID] = struct{}{}
}

// RemoveOccupant takes a character out of the room. Removing an absent
// character is a no-op.
func (r *RoomInstance) RemoveOccupant(characterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.occupants, characterID)
}

// HasOccupant reports whether the character is in the room.
func (r *RoomInstance) HasOccupant(characterID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.occupants[characterID]
	return ok
}

// Occupants returns a sorted snapshot of the character ids in the room.
func (r *RoomInstance) Occupants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.occupants))
	for id := range r.occupants {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// OccupantCount returns the number of characters in the room.
func (r *RoomInstance) OccupantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.occupants)
}

func (r *RoomInstance) addNPC(n *NPCInstance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.npcs = append(r.npcs, n)
}

// NPCs returns a snapshot of the NPC instances in the room.
func (r *RoomInstance) NPCs() []*NPCInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*NPCInstance, len(r.npcs))
	copy(out, r.npcs)
	return out
}
