package game

import (
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

// mapStore is an in-memory storage.Storer for tests.
type mapStore[T interface{ Validate() error }] map[string]T

func (m mapStore[T]) Save(id string, v T) error { m[id] = v; return nil }
func (m mapStore[T]) Get(id string) T           { return m[id] }
func (m mapStore[T]) GetAll() map[string]T      { return m }

func newTestWorld(t *testing.T) *World {
	t.Helper()
	rooms := mapStore[*Room]{
		"inn-common-room": {
			Name:        "The Common Room",
			Area:        "newarre",
			Description: "A quiet inn with a fire burning low.",
			Exits:       map[string]string{"east": "inn-kitchen", "north": "inn-yard"},
		},
		"inn-kitchen": {
			Name:        "The Kitchen",
			Area:        "newarre",
			Description: "Bread and cider.",
			Exits:       map[string]string{"west": "inn-common-room"},
		},
		"inn-yard": {
			Name:        "The Yard",
			Area:        "newarre",
			Description: "Packed dirt and a hitching post.",
			Exits:       map[string]string{"south": "inn-common-room"},
			Spawns:      []string{"stablehand"},
		},
	}
	npcs := mapStore[*NPC]{
		"stablehand": {Name: "a stablehand", Description: "Busy with the horses.", Level: 1, MaxHP: 10, RespawnSecs: 1},
	}
	w, err := NewWorld(rooms, npcs)
	if err != nil {
		t.Fatalf("building world: %v", err)
	}
	return w
}

func TestNewWorldRejectsDanglingExit(t *testing.T) {
	rooms := mapStore[*Room]{
		"a": {Name: "A", Area: "x", Exits: map[string]string{"north": "nowhere"}},
	}
	_, err := NewWorld(rooms, mapStore[*NPC]{})
	if err == nil {
		t.Fatal("expected error for exit into unknown room")
	}
}

func TestNewWorldRejectsUnknownSpawn(t *testing.T) {
	rooms := mapStore[*Room]{
		"a": {Name: "A", Area: "x", Spawns: []string{"ghost"}},
	}
	_, err := NewWorld(rooms, mapStore[*NPC]{})
	if err == nil {
		t.Fatal("expected error for unknown npc template")
	}
}

// countRoomsWith returns how many rooms hold the character.
func countRoomsWith(w *World, charID string) int {
	n := 0
	for _, ri := range w.Rooms() {
		if ri.HasOccupant(charID) {
			n++
		}
	}
	return n
}

func TestMoveCharacterIsAtomic(t *testing.T) {
	w := newTestWorld(t)
	w.Room("inn-common-room").AddOccupant("kote")

	err := w.MoveCharacter("kote", "inn-common-room", "inn-kitchen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "in kitchen", w.Room("inn-kitchen").HasOccupant("kote"), true)
	testutil.AssertEqual(t, "out of common room", w.Room("inn-common-room").HasOccupant("kote"), false)
	testutil.AssertEqual(t, "room count", countRoomsWith(w, "kote"), 1)
}

func TestMoveCharacterUnknownRooms(t *testing.T) {
	w := newTestWorld(t)
	if err := w.MoveCharacter("kote", "nowhere", "inn-kitchen"); err == nil {
		t.Error("expected error for unknown source room")
	}
	if err := w.MoveCharacter("kote", "inn-kitchen", "nowhere"); err == nil {
		t.Error("expected error for unknown destination room")
	}
}

// A character bouncing between rooms concurrently with observers must
// always be in exactly one room from any observer's point of view.
func TestConcurrentMovementKeepsOneOccupancy(t *testing.T) {
	w := newTestWorld(t)
	w.Room("inn-common-room").AddOccupant("bast")

	path := []string{"inn-common-room", "inn-kitchen", "inn-common-room", "inn-yard"}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			from := path[i%len(path)]
			to := path[(i+1)%len(path)]
			if err := w.MoveCharacter("bast", from, to); err != nil {
				t.Errorf("move %s -> %s: %v", from, to, err)
				return
			}
		}
		close(stop)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if n := countRoomsWith(w, "bast"); n != 1 {
				t.Errorf("observed character in %d rooms", n)
				return
			}
		}
	}()

	wg.Wait()
	testutil.AssertEqual(t, "final occupancy", countRoomsWith(w, "bast"), 1)
}

func TestPairedAddRemoveKeepsSingleRoom(t *testing.T) {
	w := newTestWorld(t)
	rooms := []string{"inn-common-room", "inn-kitchen", "inn-yard"}

	w.Room(rooms[0]).AddOccupant("denna")
	for i := 0; i < len(rooms)*3; i++ {
		from := rooms[i%len(rooms)]
		to := rooms[(i+1)%len(rooms)]
		from2 := w.Room(from)
		from2.RemoveOccupant("denna")
		w.Room(to).AddOccupant("denna")
		testutil.AssertEqual(t, "occupancy", countRoomsWith(w, "denna"), 1)
	}
}

func TestNPCRespawn(t *testing.T) {
	w := newTestWorld(t)
	yard := w.Room("inn-yard")
	npcs := yard.NPCs()
	testutil.AssertEqual(t, "spawned", len(npcs), 1)

	n := npcs[0]
	testutil.AssertEqual(t, "killed", n.Damage(100), true)
	testutil.AssertEqual(t, "alive after death", n.Alive(), false)

	// Not yet due.
	if err := w.RespawnNPCs(t.Context()); err != nil {
		t.Fatalf("respawn sweep: %v", err)
	}
	testutil.AssertEqual(t, "still dead", n.Alive(), false)

	// Force the death time past the respawn delay.
	n.mu.Lock()
	n.diedAt = time.Now().Add(-2 * time.Second)
	n.mu.Unlock()

	if err := w.RespawnNPCs(t.Context()); err != nil {
		t.Fatalf("respawn sweep: %v", err)
	}
	testutil.AssertEqual(t, "revived", n.Alive(), true)
	testutil.AssertEqual(t, "hp restored", n.HP(), 10)
}

func TestDamageOnDeadNPC(t *testing.T) {
	w := newTestWorld(t)
	n := w.Room("inn-yard").NPCs()[0]
	n.Damage(100)
	testutil.AssertEqual(t, "second kill", n.Damage(5), false)
}

func TestRoomValidateRankKeyword(t *testing.T) {
	good := &Room{Name: "Loft", Area: "Inn", Properties: RoomProperties{RequiresRank: "e'lir"}}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid rank rejected: %v", err)
	}

	bad := &Room{Name: "Loft", Area: "Inn", Properties: RoomProperties{RequiresRank: "chancellor"}}
	if err := bad.Validate(); err == nil {
		t.Error("unknown rank keyword accepted")
	}
}
