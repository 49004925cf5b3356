package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/waystone-mud/waystone/internal/storage"
)

// World holds the room table. Room keys are fixed after load; only the
// per-room occupant sets and NPC state mutate at runtime.
type World struct {
	rooms map[string]*RoomInstance
}

// NewWorld builds room instances from the content stores, verifies every
// exit resolves, and spawns the initial NPC population. Broken content is
// a startup failure: the server must not come up on a partial world.
func NewWorld(rooms storage.Storer[*Room], npcs storage.Storer[*NPC]) (*World, error) {
	w := &World{
		rooms: make(map[string]*RoomInstance),
	}

	for id, def := range rooms.GetAll() {
		w.rooms[id] = NewRoomInstance(id, def)
	}

	spawned := 0
	for id, ri := range w.rooms {
		for dir, dest := range ri.def.Exits {
			if _, ok := w.rooms[dest]; !ok {
				return nil, fmt.Errorf("room %q: exit %s leads to unknown room %q", id, dir, dest)
			}
		}
		for _, npcID := range ri.def.Spawns {
			def := npcs.Get(npcID)
			if def == nil {
				return nil, fmt.Errorf("room %q: unknown npc %q", id, npcID)
			}
			ri.addNPC(newNPCInstance(npcID, def))
			spawned++
		}
	}

	slog.Info("world loaded", "rooms", len(w.rooms), "npcs", spawned)
	return w, nil
}

// Room returns the room with the given id, or nil.
func (w *World) Room(id string) *RoomInstance {
	return w.rooms[id]
}

// Rooms returns all rooms sorted by id.
func (w *World) Rooms() []*RoomInstance {
	out := make([]*RoomInstance, 0, len(w.rooms))
	for _, ri := range w.rooms {
		out = append(out, ri)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Len returns the number of rooms.
func (w *World) Len() int {
	return len(w.rooms)
}

// MoveCharacter atomically moves a character between two rooms. Both room
// locks are held for the swap, acquired in lexicographic id order so that
// concurrent movements cannot deadlock, and no observer sees the character
// in zero rooms or two rooms.
func (w *World) MoveCharacter(characterID, fromID, toID string) error {
	from := w.rooms[fromID]
	to := w.rooms[toID]
	if from == nil {
		return fmt.Errorf("unknown source room %q", fromID)
	}
	if to == nil {
		return fmt.Errorf("unknown destination room %q", toID)
	}
	if from == to {
		return nil
	}

	first, second := from, to
	if second.id < first.id {
		first, second = second, first
	}
	first.mu.Lock()
	second.mu.Lock()
	defer first.mu.Unlock()
	defer second.mu.Unlock()

	delete(from.occupants, characterID)
	to.occupants[characterID] = struct{}{}
	return nil
}

// RespawnNPCs is a tick manager callback: it revives every dead NPC whose
// respawn delay has elapsed.
func (w *World) RespawnNPCs(ctx context.Context) error {
	now := time.Now()
	revived := 0
	for _, ri := range w.rooms {
		for _, n := range ri.NPCs() {
			if n.respawnIfDue(now) {
				revived++
				slog.Debug("npc respawned", "npc", n.templateID, "room", ri.id)
			}
		}
	}
	if revived > 0 {
		slog.Info("npc respawn sweep", "revived", revived)
	}
	return nil
}
