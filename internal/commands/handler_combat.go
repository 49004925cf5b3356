package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/waystone-mud/waystone/internal/display"
	"github.com/waystone-mud/waystone/internal/game"
)

const strikeDamage = 5

// AttackCommand lands a blow on a hostile creature in the room. There is
// no riposte; dangerous things die, they do not fight back yet.
type AttackCommand struct {
	meta
}

func NewAttackCommand() *AttackCommand {
	return &AttackCommand{meta{
		name:      "attack",
		aliases:   []string{"kill"},
		help:      "Attack a hostile creature in the room.",
		usage:     "attack <creature>",
		minArgs:   1,
		needsChar: true,
	}}
}

func (c *AttackCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	char := cmdCtx.Character()
	room := cmdCtx.Engine.World().Room(char.RoomID)
	if room == nil {
		return fmt.Errorf("character in unknown room")
	}
	if room.Def().Properties.SafeZone {
		return NewUserError("Not here. This ground is older than violence.")
	}

	query := strings.Join(cmdCtx.Args, " ")
	target := findNPC(room, query)
	if target == nil {
		return UserErrorf("You see no %s here.", query)
	}
	name := target.Def().Name
	if !target.Alive() {
		return UserErrorf("%s is already dead.", display.Capitalize(name))
	}
	if !target.Def().Hostile {
		return UserErrorf("%s has done nothing to deserve that.", display.Capitalize(name))
	}

	killed := target.Damage(strikeDamage)
	if killed {
		cmdCtx.Reply("You strike %s down.", name)
		cmdCtx.Engine.BroadcastToRoom(room.ID(),
			fmt.Sprintf("%s strikes %s down.", char.Name, name), char.ID)
	} else {
		cmdCtx.Reply("You strike %s.", name)
		cmdCtx.Engine.BroadcastToRoom(room.ID(),
			fmt.Sprintf("%s strikes %s.", char.Name, name), char.ID)
	}
	return nil
}

// findNPC matches a spawned NPC by template id or name, case-insensitive.
func findNPC(room *game.RoomInstance, query string) *game.NPCInstance {
	q := strings.ToLower(query)
	for _, npc := range room.NPCs() {
		if npc.TemplateID() == q || strings.Contains(strings.ToLower(npc.Def().Name), q) {
			return npc
		}
	}
	return nil
}
