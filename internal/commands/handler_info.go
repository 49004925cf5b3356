package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/waystone-mud/waystone/internal/display"
)

// HelpCommand lists commands, or shows usage for one verb.
type HelpCommand struct {
	meta
}

func NewHelpCommand() *HelpCommand {
	return &HelpCommand{meta{
		name:    "help",
		aliases: []string{"?"},
		help:    "List commands, or show help for one.",
		usage:   "help [command]",
	}}
}

func (c *HelpCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	if len(cmdCtx.Args) > 0 {
		cmd, ok := cmdCtx.Engine.Commands().Get(cmdCtx.Args[0])
		if !ok {
			return UserErrorf("No such command: %s", cmdCtx.Args[0])
		}
		cmdCtx.Reply("%s", display.Colorize(cmd.Usage(), display.Bold))
		cmdCtx.Reply("%s", display.WrapIndent(cmd.Help(), "  "))
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			cmdCtx.Reply("  Aliases: %s", strings.Join(aliases, ", "))
		}
		return nil
	}

	cmdCtx.Reply("Commands:")
	for _, cmd := range cmdCtx.Engine.Commands().All() {
		cmdCtx.Reply("  %-12s %s", cmd.Name(), cmd.Help())
	}
	cmdCtx.Reply("Type 'help <command>' for details.")
	return nil
}

// WhoCommand lists every character currently in the world.
type WhoCommand struct {
	meta
}

func NewWhoCommand() *WhoCommand {
	return &WhoCommand{meta{
		name:  "who",
		help:  "List who is in the world.",
		usage: "who",
	}}
}

func (c *WhoCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	var names []string
	for _, s := range cmdCtx.Engine.Sessions().All() {
		charID := s.CharacterID()
		if charID == "" {
			continue
		}
		if char := cmdCtx.Engine.Character(charID); char != nil {
			names = append(names, fmt.Sprintf("%s (%s)", char.Name, char.Rank))
		}
	}

	if len(names) == 0 {
		cmdCtx.Reply("The world is empty. The innkeeper polishes a glass that is already clean.")
		return nil
	}

	cmdCtx.Reply("Travelers abroad in the world (%d):", len(names))
	for _, name := range names {
		cmdCtx.Reply("  %s", name)
	}
	return nil
}

// ScoreCommand shows the character sheet.
type ScoreCommand struct {
	meta
}

func NewScoreCommand() *ScoreCommand {
	return &ScoreCommand{meta{
		name:      "score",
		aliases:   []string{"sc"},
		help:      "Show your character sheet.",
		usage:     "score",
		needsChar: true,
	}}
}

func (c *ScoreCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	char, ok := cmdCtx.CharacterSnapshot()
	if !ok {
		return fmt.Errorf("no character in play")
	}
	room := cmdCtx.Engine.World().Room(char.RoomID)

	cmdCtx.Reply("%s", display.Underlined(display.Colorize(char.Name, display.Bold)))
	cmdCtx.Reply("Rank:     %s", char.Rank)
	cmdCtx.Reply("Health:   %d/%d", char.HP, char.MaxHP)
	cmdCtx.Reply("Purse:    %s", char.WealthString())
	if room != nil {
		cmdCtx.Reply("Location: %s, %s", room.Def().Name, room.Def().Area)
	}
	return nil
}

// WealthCommand shows the purse by itself.
type WealthCommand struct {
	meta
}

func NewWealthCommand() *WealthCommand {
	return &WealthCommand{meta{
		name:      "wealth",
		aliases:   []string{"purse"},
		help:      "Count the coins in your purse.",
		usage:     "wealth",
		needsChar: true,
	}}
}

func (c *WealthCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	char, ok := cmdCtx.CharacterSnapshot()
	if !ok {
		return fmt.Errorf("no character in play")
	}
	cmdCtx.Reply("You carry %s.", char.WealthString())
	return nil
}

// TimeCommand reports the hour, rung out in bells like the University keeps it.
type TimeCommand struct {
	meta
}

func NewTimeCommand() *TimeCommand {
	return &TimeCommand{meta{
		name:  "time",
		help:  "Hear the most recent bell.",
		usage: "time",
	}}
}

func (c *TimeCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	now := time.Now()
	bell := now.Hour() % 12
	if bell == 0 {
		bell = 12
	}
	cmdCtx.Reply("The last bell struck %d. It is %s.", bell, now.Format("15:04 on Monday"))
	return nil
}

// SaveCommand persists the character immediately.
type SaveCommand struct {
	meta
}

func NewSaveCommand() *SaveCommand {
	return &SaveCommand{meta{
		name:      "save",
		help:      "Save your character.",
		usage:     "save",
		needsChar: true,
	}}
}

func (c *SaveCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	if err := cmdCtx.Engine.SaveCharacter(ctx, cmdCtx.Session.CharacterID()); err != nil {
		return err
	}
	cmdCtx.Reply("Your story is written down, safe as a gram.")
	return nil
}
