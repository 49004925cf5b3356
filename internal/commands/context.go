package commands

import (
	"context"
	"fmt"

	"github.com/waystone-mud/waystone/internal/database"
	"github.com/waystone-mud/waystone/internal/game"
	"github.com/waystone-mud/waystone/internal/network"
)

// Engine is the slice of the game engine that command handlers are allowed
// to touch.
type Engine interface {
	World() *game.World
	DB() *database.DB
	Sessions() *network.Registry
	Commands() *Registry
	StartingRoomID() string

	// Character returns the live character bound to a session, or nil.
	// The pointer is safe for fields only the owning session writes
	// (name, rank, location); fields the tick managers touch must go
	// through CharacterSnapshot or UpdateCharacter instead.
	Character(charID string) *database.Character
	// CharacterSnapshot returns a copy of the live character taken under
	// the engine lock, consistent against concurrent tick updates.
	CharacterSnapshot(charID string) (database.Character, bool)
	// UpdateCharacter applies fn to the live character under the engine
	// lock. It reports whether the character is in play.
	UpdateCharacter(charID string, fn func(*database.Character)) bool
	// SaveCharacter persists a snapshot of the live character taken
	// under the engine lock.
	SaveCharacter(ctx context.Context, charID string) error
	// SessionForCharacter returns the session playing charID, or nil.
	SessionForCharacter(charID string) *network.Session

	// AttachCharacter binds a character to a session and places it in the
	// world. DetachCharacter reverses it, persisting the character.
	AttachCharacter(s *network.Session, c *database.Character) error
	DetachCharacter(s *network.Session)

	// SendToCharacter delivers a message to whichever session is playing
	// charID. BroadcastToRoom delivers to every occupant of a room except
	// excludeCharID (pass "" to exclude nobody).
	SendToCharacter(charID, msg string) error
	BroadcastToRoom(roomID, msg, excludeCharID string) error
	// BroadcastAll delivers to every playing character.
	BroadcastAll(msg string) error
}

// Context carries everything a command needs for one execution.
type Context struct {
	Session *network.Session
	Conn    *network.Connection
	Engine  Engine
	Args    []string
	Raw     string // everything after the verb, untrimmed of interior spaces
}

// Character returns the live character for this session, or nil when the
// session has none.
func (c *Context) Character() *database.Character {
	return c.Engine.Character(c.Session.CharacterID())
}

// CharacterSnapshot returns a consistent copy of this session's character.
func (c *Context) CharacterSnapshot() (database.Character, bool) {
	return c.Engine.CharacterSnapshot(c.Session.CharacterID())
}

// Reply sends a line back to the issuing connection.
func (c *Context) Reply(format string, args ...any) {
	c.Conn.SendLine(fmt.Sprintf(format, args...))
}
