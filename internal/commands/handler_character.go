package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/waystone-mud/waystone/internal/database"
	"github.com/waystone-mud/waystone/internal/network"
)

var (
	charNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z']{2,15}$`)
	titleCaser      = cases.Title(language.English)
)

// CharactersCommand lists the characters owned by the logged-in user.
type CharactersCommand struct {
	meta
}

func NewCharactersCommand() *CharactersCommand {
	return &CharactersCommand{meta{
		name:    "characters",
		aliases: []string{"chars"},
		help:    "List your characters.",
		usage:   "characters",
	}}
}

func (c *CharactersCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	userID := cmdCtx.Session.UserID()
	if userID == "" {
		return NewUserError("Log in first.")
	}

	chars, err := cmdCtx.Engine.DB().Characters.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(chars) == 0 {
		return NewUserError("You have no characters yet. Use 'create <name>' to make one.")
	}

	cmdCtx.Reply("Your characters:")
	for _, ch := range chars {
		cmdCtx.Reply("  %-16s %s", ch.Name, ch.Rank)
	}
	return nil
}

// CreateCommand makes a new character for the logged-in user.
type CreateCommand struct {
	meta
}

func NewCreateCommand() *CreateCommand {
	return &CreateCommand{meta{
		name:    "create",
		help:    "Create a new character.",
		usage:   "create <name>",
		minArgs: 1,
	}}
}

func (c *CreateCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	userID := cmdCtx.Session.UserID()
	if userID == "" {
		return NewUserError("Log in first.")
	}

	name := cmdCtx.Args[0]
	if !charNamePattern.MatchString(name) {
		return NewUserError("Character names are 3-16 letters (apostrophes allowed), starting with a letter.")
	}
	name = titleCaser.String(strings.ToLower(name))

	char, err := cmdCtx.Engine.DB().Characters.Create(ctx, userID, name, cmdCtx.Engine.StartingRoomID())
	if errors.Is(err, database.ErrAlreadyExists) {
		return NewUserError("That name is taken.")
	}
	if err != nil {
		return err
	}

	cmdCtx.Reply("%s steps out of the pages of a story. Use 'play %s' to enter the world.", char.Name, char.Name)
	return nil
}

// PlayCommand binds a character to the session and drops it into the world.
type PlayCommand struct {
	meta
}

func NewPlayCommand() *PlayCommand {
	return &PlayCommand{meta{
		name:    "play",
		help:    "Enter the world as one of your characters.",
		usage:   "play <name>",
		minArgs: 1,
	}}
}

func (c *PlayCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	userID := cmdCtx.Session.UserID()
	if userID == "" {
		return NewUserError("Log in first.")
	}
	if cmdCtx.Session.State() == network.StatePlaying {
		return NewUserError("You are already playing. Use 'logout' to switch characters.")
	}

	char, err := cmdCtx.Engine.DB().Characters.GetByName(ctx, cmdCtx.Args[0])
	if errors.Is(err, database.ErrNotFound) {
		return NewUserError("You have no character by that name.")
	}
	if err != nil {
		return err
	}
	if char.UserID != userID {
		return NewUserError("You have no character by that name.")
	}
	if other := cmdCtx.Engine.SessionForCharacter(char.ID); other != nil {
		return NewUserError("That character is already in play.")
	}

	// A character saved in a room that no longer exists falls back to the
	// starting room.
	if cmdCtx.Engine.World().Room(char.RoomID) == nil {
		char.RoomID = cmdCtx.Engine.StartingRoomID()
	}

	if err := cmdCtx.Engine.AttachCharacter(cmdCtx.Session, char); err != nil {
		return err
	}

	cmdCtx.Engine.BroadcastToRoom(char.RoomID, fmt.Sprintf("%s steps into the room.", char.Name), char.ID)
	cmdCtx.Reply("You are %s, %s of the Commonwealth.", char.Name, char.Rank)
	sendRoomView(cmdCtx, char)
	return nil
}

// DeleteCommand permanently removes one of the user's characters.
type DeleteCommand struct {
	meta
}

func NewDeleteCommand() *DeleteCommand {
	return &DeleteCommand{meta{
		name:    "delete",
		help:    "Permanently delete one of your characters.",
		usage:   "delete <name>",
		minArgs: 1,
	}}
}

func (c *DeleteCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	userID := cmdCtx.Session.UserID()
	if userID == "" {
		return NewUserError("Log in first.")
	}

	char, err := cmdCtx.Engine.DB().Characters.GetByName(ctx, cmdCtx.Args[0])
	if errors.Is(err, database.ErrNotFound) {
		return NewUserError("You have no character by that name.")
	}
	if err != nil {
		return err
	}
	if char.UserID != userID {
		return NewUserError("You have no character by that name.")
	}
	if char.ID == cmdCtx.Session.CharacterID() {
		return NewUserError("You cannot delete the character you are playing.")
	}
	if other := cmdCtx.Engine.SessionForCharacter(char.ID); other != nil {
		return NewUserError("That character is in play.")
	}

	if err := cmdCtx.Engine.DB().Characters.Delete(ctx, char.ID); err != nil {
		return err
	}

	cmdCtx.Reply("%s is gone, as if they were never written.", char.Name)
	return nil
}
