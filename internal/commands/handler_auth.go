package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/waystone-mud/waystone/internal/database"
	"github.com/waystone-mud/waystone/internal/network"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,19}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

const minPasswordLen = 8

// RegisterCommand creates a new user account.
type RegisterCommand struct {
	meta
}

func NewRegisterCommand() *RegisterCommand {
	return &RegisterCommand{meta{
		name:    "register",
		help:    "Create a new account.",
		usage:   "register <username> <password> <email>",
		minArgs: 3,
	}}
}

func (c *RegisterCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	username, password, email := cmdCtx.Args[0], cmdCtx.Args[1], cmdCtx.Args[2]

	if cmdCtx.Session.UserID() != "" {
		return NewUserError("You are already logged in.")
	}
	if !usernamePattern.MatchString(username) {
		return NewUserError("Usernames are 3-20 characters: letters, digits, and underscores, starting with a letter.")
	}
	if len(password) < minPasswordLen {
		return UserErrorf("Passwords must be at least %d characters.", minPasswordLen)
	}
	if !emailPattern.MatchString(email) {
		return NewUserError("That does not look like an email address.")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := cmdCtx.Engine.DB().Users.Create(ctx, username, hash, email)
	if errors.Is(err, database.ErrAlreadyExists) {
		return NewUserError("That username is taken.")
	}
	if err != nil {
		return err
	}

	cmdCtx.Session.SetUser(user.ID)
	cmdCtx.Session.SetState(network.StateAuthenticating)
	cmdCtx.Reply("Welcome, %s. Your account has been created.", user.Username)
	cmdCtx.Reply("Use 'create <name>' to make a character, then 'play <name>' to enter the world.")
	return nil
}

// LoginCommand authenticates an existing user. The password may be given
// inline or, preferably, omitted so it can be read without echo.
type LoginCommand struct {
	meta
}

func NewLoginCommand() *LoginCommand {
	return &LoginCommand{meta{
		name:    "login",
		help:    "Log in to your account.",
		usage:   "login <username> [password]",
		minArgs: 1,
	}}
}

func (c *LoginCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	if cmdCtx.Session.UserID() != "" {
		return NewUserError("You are already logged in.")
	}

	username := cmdCtx.Args[0]

	var password string
	if len(cmdCtx.Args) > 1 {
		password = cmdCtx.Args[1]
	} else {
		cmdCtx.Conn.Send("Password: ")
		line, err := cmdCtx.Conn.ReadPassword()
		if err != nil {
			return err
		}
		cmdCtx.Conn.SendLine("")
		password = line
	}

	user, err := cmdCtx.Engine.DB().Users.GetByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		// Same message as a bad password so usernames cannot be probed.
		return NewUserError("Invalid username or password.")
	}
	if err != nil {
		return err
	}
	if !verifyPassword(password, user.PasswordHash) {
		return NewUserError("Invalid username or password.")
	}

	// A user may only be attached to one session at a time.
	if existing := cmdCtx.Engine.Sessions().GetByUser(user.ID); existing != nil && existing.ID() != cmdCtx.Session.ID() {
		return NewUserError("That account is already logged in.")
	}

	if err := cmdCtx.Engine.DB().Users.TouchLogin(ctx, user.ID); err != nil {
		return err
	}

	cmdCtx.Session.SetUser(user.ID)
	cmdCtx.Session.SetState(network.StateAuthenticating)
	cmdCtx.Reply("Welcome back, %s.", user.Username)
	cmdCtx.Reply("Use 'characters' to list your characters, or 'play <name>' to enter the world.")
	return nil
}

// LogoutCommand detaches the character and drops back to the unauthenticated
// prompt without closing the connection.
type LogoutCommand struct {
	meta
}

func NewLogoutCommand() *LogoutCommand {
	return &LogoutCommand{meta{
		name:  "logout",
		help:  "Log out of your account but stay connected.",
		usage: "logout",
	}}
}

func (c *LogoutCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	if cmdCtx.Session.UserID() == "" {
		return NewUserError("You are not logged in.")
	}

	if char := cmdCtx.Character(); char != nil {
		cmdCtx.Engine.BroadcastToRoom(char.RoomID, fmt.Sprintf("%s fades from the world.", char.Name), char.ID)
		cmdCtx.Engine.DetachCharacter(cmdCtx.Session)
	}

	cmdCtx.Session.SetUser("")
	cmdCtx.Session.SetState(network.StateConnected)
	cmdCtx.Reply("You have been logged out.")
	return nil
}

// QuitCommand saves, announces, and closes the connection.
type QuitCommand struct {
	meta
}

func NewQuitCommand() *QuitCommand {
	return &QuitCommand{meta{
		name:  "quit",
		help:  "Leave the world and disconnect.",
		usage: "quit",
	}}
}

func (c *QuitCommand) Execute(ctx context.Context, cmdCtx *Context) error {
	if char := cmdCtx.Character(); char != nil {
		cmdCtx.Engine.BroadcastToRoom(char.RoomID, fmt.Sprintf("%s fades from the world.", char.Name), char.ID)
		cmdCtx.Engine.DetachCharacter(cmdCtx.Session)
	}

	cmdCtx.Reply("The road is long. Safe travels.")
	cmdCtx.Session.SetState(network.StateDisconnected)
	return nil
}
