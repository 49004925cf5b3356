package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/waystone-mud/waystone/internal/database"
	"github.com/waystone-mud/waystone/internal/display"
)

var directionAliases = map[string]string{
	"n": "north", "s": "south", "e": "east",
	"w": "west", "u": "up", "d": "down",
}

// arrivalFrom describes where someone came from, as seen by the destination
// room.
var arrivalFrom = map[string]string{
	"north": "the south", "south": "the north",
	"east": "the west", "west": "the east",
	"up": "below", "down": "above",
}

// sendRoomView renders the character's current room to its connection.
func sendRoomView(cmdCtx *Context, char *database.Character) {
	room := cmdCtx.Engine.World().Room(char.RoomID)
	if room == nil {
		cmdCtx.Reply("You are nowhere. This should not happen.")
		return
	}

	view := display.RoomView{
		Name:        room.Def().Name,
		Description: room.Def().Description,
		Exits:       room.ExitDirections(),
	}
	for _, npc := range room.NPCs() {
		if npc.Alive() {
			view.NPCs = append(view.NPCs, npc.Def().Name)
		}
	}
	for _, occupantID := range room.Occupants() {
		if occupantID == char.ID {
			continue
		}
		if other := cmdCtx.Engine.Character(occupantID); other != nil {
			view.Players = append(view.Players, other.Name)
		}
	}

	cmdCtx.Conn.SendLine(display.RenderRoom(view))
}

// moveCharacter walks char through the exit in direction, announcing the
// departure and arrival to both rooms.
func moveCharacter(ctx context.Context, cmdCtx *Context, direction string) error {
	char := cmdCtx.Character()
	engine := cmdCtx.Engine

	fromRoom := engine.World().Room(char.RoomID)
	if fromRoom == nil {
		return fmt.Errorf("character %s in unknown room %s", char.ID, char.RoomID)
	}

	destID, ok := fromRoom.Exit(direction)
	if !ok {
		return UserErrorf("You cannot go %s from here.", direction)
	}

	toRoom := engine.World().Room(destID)
	if toRoom == nil {
		return fmt.Errorf("exit %s of room %s leads to unknown room %s", direction, fromRoom.ID(), destID)
	}

	if gate := toRoom.Def().Properties.RequiresRank; gate != "" {
		required, ok := database.ParseRank(gate)
		if ok && char.Rank < required {
			return UserErrorf("Only those of rank %s or above may enter.", required)
		}
	}

	if err := engine.World().MoveCharacter(char.ID, fromRoom.ID(), toRoom.ID()); err != nil {
		return err
	}
	engine.UpdateCharacter(char.ID, func(c *database.Character) {
		c.RoomID = toRoom.ID()
	})

	engine.BroadcastToRoom(fromRoom.ID(), fmt.Sprintf("%s leaves %s.", char.Name, direction), char.ID)
	engine.BroadcastToRoom(toRoom.ID(), fmt.Sprintf("%s arrives from %s.", char.Name, arrivalFrom[direction]), char.ID)

	if err := engine.SaveCharacter(ctx, char.ID); err != nil {
		return fmt.Errorf("persisting location: %w", err)
	}

	sendRoomView(cmdCtx, char)
	return nil
}

// MoveCommand is a direction verb (north, south, ...) bound at registration.
type MoveCommand struct {
	meta
	direction string
}

func newMoveCommand(direction, alias string) *MoveCommand {
	return &MoveCommand{
		meta: meta{
			name:      direction,
			aliases:   []string{alias},
			help:      fmt.Sprintf("Move %s.", direction),
			usage:     direction,
			needsChar: true,
		},
		direction: direction,
	}
}

// NewMoveCommands returns one command per cardinal direction plus up and down.
func NewMoveCommands() []Command {
	out := make([]Command, 0, len(directionAliases))
	for alias, direction := range directionAliases {
		out = append(out, newMoveCommand(direction, alias))
	}
	return out
}

func (c *MoveCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	return moveCharacter(ctx, cmdCtx, c.direction)
}

// GoCommand moves in a direction given as an argument.
type GoCommand struct {
	meta
}

func NewGoCommand() *GoCommand {
	return &GoCommand{meta{
		name:      "go",
		help:      "Move in a direction.",
		usage:     "go <direction>",
		minArgs:   1,
		needsChar: true,
	}}
}

func (c *GoCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	direction := strings.ToLower(cmdCtx.Args[0])
	if full, ok := directionAliases[direction]; ok {
		direction = full
	}
	if _, ok := arrivalFrom[direction]; !ok {
		return UserErrorf("%q is not a direction.", cmdCtx.Args[0])
	}
	return moveCharacter(ctx, cmdCtx, direction)
}

// LookCommand re-renders the current room.
type LookCommand struct {
	meta
}

func NewLookCommand() *LookCommand {
	return &LookCommand{meta{
		name:      "look",
		aliases:   []string{"l"},
		help:      "Look around the room.",
		usage:     "look",
		needsChar: true,
	}}
}

func (c *LookCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	sendRoomView(cmdCtx, cmdCtx.Character())
	return nil
}

// ExitsCommand lists the exits of the current room.
type ExitsCommand struct {
	meta
}

func NewExitsCommand() *ExitsCommand {
	return &ExitsCommand{meta{
		name:      "exits",
		help:      "List the obvious exits.",
		usage:     "exits",
		needsChar: true,
	}}
}

func (c *ExitsCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	room := cmdCtx.Engine.World().Room(cmdCtx.Character().RoomID)
	if room == nil {
		return fmt.Errorf("character in unknown room")
	}
	exits := room.ExitDirections()
	if len(exits) == 0 {
		cmdCtx.Reply("There are no obvious exits.")
		return nil
	}
	cmdCtx.Reply("Obvious exits: %s", strings.Join(exits, ", "))
	return nil
}
