package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/waystone-mud/waystone/internal/database"
	"github.com/waystone-mud/waystone/internal/display"
)

// SayCommand speaks to everyone in the room. The dispatcher also routes
// lines starting with ' here.
type SayCommand struct {
	meta
}

func NewSayCommand() *SayCommand {
	return &SayCommand{meta{
		name:      "say",
		help:      "Say something to everyone in the room.",
		usage:     "say <message>",
		minArgs:   1,
		needsChar: true,
	}}
}

func (c *SayCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	char := cmdCtx.Character()
	message := strings.TrimSpace(cmdCtx.Raw)

	cmdCtx.Engine.BroadcastToRoom(char.RoomID,
		fmt.Sprintf("%s says, \"%s\"", char.Name, message), char.ID)
	cmdCtx.Reply("You say, \"%s\"", message)
	return nil
}

// EmoteCommand performs a freeform action. The dispatcher also routes lines
// starting with : here.
type EmoteCommand struct {
	meta
}

func NewEmoteCommand() *EmoteCommand {
	return &EmoteCommand{meta{
		name:      "emote",
		aliases:   []string{"me"},
		help:      "Perform an action, e.g. 'emote tunes his lute'.",
		usage:     "emote <action>",
		minArgs:   1,
		needsChar: true,
	}}
}

func (c *EmoteCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	char := cmdCtx.Character()
	action := strings.TrimSpace(cmdCtx.Raw)
	line := fmt.Sprintf("%s %s", char.Name, action)

	cmdCtx.Engine.BroadcastToRoom(char.RoomID, line, char.ID)
	cmdCtx.Reply("%s", line)
	return nil
}

// TellCommand sends a private message to another playing character, wherever
// they are.
type TellCommand struct {
	meta
}

func NewTellCommand() *TellCommand {
	return &TellCommand{meta{
		name:      "tell",
		aliases:   []string{"whisper"},
		help:      "Send a private message to a character.",
		usage:     "tell <character> <message>",
		minArgs:   2,
		needsChar: true,
	}}
}

func (c *TellCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	char := cmdCtx.Character()

	target, err := cmdCtx.Engine.DB().Characters.GetByName(ctx, cmdCtx.Args[0])
	if errors.Is(err, database.ErrNotFound) {
		return NewUserError("No one by that name is here.")
	}
	if err != nil {
		return err
	}
	if cmdCtx.Engine.SessionForCharacter(target.ID) == nil {
		return UserErrorf("%s is not in the world right now.", target.Name)
	}
	if target.ID == char.ID {
		return NewUserError("Talking to yourself again?")
	}

	message := strings.TrimSpace(strings.TrimPrefix(cmdCtx.Raw, cmdCtx.Args[0]))
	if err := cmdCtx.Engine.SendToCharacter(target.ID,
		display.Colorize(fmt.Sprintf("%s tells you, \"%s\"", char.Name, message), display.Magenta)); err != nil {
		return err
	}
	cmdCtx.Reply("You tell %s, \"%s\"", target.Name, message)
	return nil
}

// ChatCommand speaks on the global channel, heard by every playing character.
type ChatCommand struct {
	meta
}

func NewChatCommand() *ChatCommand {
	return &ChatCommand{meta{
		name:      "chat",
		help:      "Say something on the global channel.",
		usage:     "chat <message>",
		minArgs:   1,
		needsChar: true,
	}}
}

func (c *ChatCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	char := cmdCtx.Character()
	message := strings.TrimSpace(cmdCtx.Raw)

	return cmdCtx.Engine.BroadcastAll(
		display.Colorize(fmt.Sprintf("[chat] %s: %s", char.Name, message), display.Yellow))
}
