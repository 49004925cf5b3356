package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/waystone-mud/waystone/internal/commands"
	"github.com/waystone-mud/waystone/internal/database"
	"github.com/waystone-mud/waystone/internal/display"
	"github.com/waystone-mud/waystone/internal/game"
	"github.com/waystone-mud/waystone/internal/messaging"
	"github.com/waystone-mud/waystone/internal/network"
)

const (
	DefaultStartingRoom = "waystone-common-room"
	DefaultIdleTimeout  = 60 * time.Minute
)

const unknownCommandMsg = "Huh? Type 'help' for a list of commands."
const internalErrorMsg = "Something went wrong. The tale continues regardless."

// Engine owns every live session and turns lines of input into command
// executions. One connection is handled per goroutine; shared state stays
// behind the world's and the engine's own locks.
type Engine struct {
	db       *database.DB
	world    *game.World
	registry *commands.Registry
	sessions *network.Registry
	broker   messaging.Broker
	pub      *messaging.CharacterPublisher

	startingRoomID string
	idleTimeout    time.Duration

	mu       sync.RWMutex
	chars    map[string]*database.Character
	charSess map[string]*network.Session
	unsubs   map[string][]func()
}

type EngineOpt func(*Engine)

func WithStartingRoom(roomID string) EngineOpt {
	return func(e *Engine) {
		e.startingRoomID = roomID
	}
}

// WithIdleTimeout sets how long a session may sit idle before the sweep
// disconnects it.
func WithIdleTimeout(d time.Duration) EngineOpt {
	return func(e *Engine) {
		e.idleTimeout = d
	}
}

func NewEngine(db *database.DB, world *game.World, registry *commands.Registry, broker messaging.Broker, opts ...EngineOpt) (*Engine, error) {
	e := &Engine{
		db:             db,
		world:          world,
		registry:       registry,
		sessions:       network.NewRegistry(),
		broker:         broker,
		pub:            messaging.NewCharacterPublisher(broker),
		startingRoomID: DefaultStartingRoom,
		idleTimeout:    DefaultIdleTimeout,
		chars:          make(map[string]*database.Character),
		charSess:       make(map[string]*network.Session),
		unsubs:         make(map[string][]func()),
	}
	for _, opt := range opts {
		opt(e)
	}

	if world.Room(e.startingRoomID) == nil {
		return nil, fmt.Errorf("starting room %q does not exist", e.startingRoomID)
	}
	return e, nil
}

func (e *Engine) World() *game.World          { return e.world }
func (e *Engine) DB() *database.DB            { return e.db }
func (e *Engine) Sessions() *network.Registry { return e.sessions }
func (e *Engine) Commands() *commands.Registry {
	return e.registry
}
func (e *Engine) StartingRoomID() string { return e.startingRoomID }

func (e *Engine) Character(charID string) *database.Character {
	if charID == "" {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.chars[charID]
}

// CharacterSnapshot copies the live character under the engine lock so the
// caller sees a state consistent against the tick managers.
func (e *Engine) CharacterSnapshot(charID string) (database.Character, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c := e.chars[charID]
	if c == nil {
		return database.Character{}, false
	}
	return *c, true
}

// UpdateCharacter applies fn to the live character under the engine lock.
func (e *Engine) UpdateCharacter(charID string, fn func(*database.Character)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.chars[charID]
	if c == nil {
		return false
	}
	fn(c)
	return true
}

// SaveCharacter persists a snapshot of the live character. Serializing a
// copy keeps the write out of reach of concurrent tick updates.
func (e *Engine) SaveCharacter(ctx context.Context, charID string) error {
	snap, ok := e.CharacterSnapshot(charID)
	if !ok {
		return fmt.Errorf("character %s is not in play", charID)
	}
	return e.db.Characters.Save(ctx, &snap)
}

func (e *Engine) SessionForCharacter(charID string) *network.Session {
	if charID == "" {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.charSess[charID]
}

// AttachCharacter binds a character to a session, places it in its room, and
// subscribes the session to the character's delivery subjects.
func (e *Engine) AttachCharacter(s *network.Session, c *database.Character) error {
	charUnsub, err := e.broker.Subscribe(messaging.SubjectForCharacter(c.ID), func(data []byte) {
		s.Deliver(data)
	})
	if err != nil {
		return fmt.Errorf("subscribing to character subject: %w", err)
	}
	chatUnsub, err := e.broker.Subscribe(messaging.SubjectChat, func(data []byte) {
		s.Deliver(data)
	})
	if err != nil {
		charUnsub()
		return fmt.Errorf("subscribing to chat subject: %w", err)
	}

	e.mu.Lock()
	e.chars[c.ID] = c
	e.charSess[c.ID] = s
	e.unsubs[c.ID] = []func(){charUnsub, chatUnsub}
	e.mu.Unlock()

	s.SetCharacter(c.ID)
	s.SetState(network.StatePlaying)
	e.world.Room(c.RoomID).AddOccupant(c.ID)

	slog.Info("character attached", "character", c.Name, "session", s.ID(), "room", c.RoomID)
	return nil
}

// DetachCharacter removes the session's character from the world and
// persists it. Safe to call when no character is attached.
func (e *Engine) DetachCharacter(s *network.Session) {
	charID := s.CharacterID()
	if charID == "" {
		return
	}

	e.mu.Lock()
	c := e.chars[charID]
	unsubs := e.unsubs[charID]
	var snap database.Character
	if c != nil {
		snap = *c
	}
	delete(e.chars, charID)
	delete(e.charSess, charID)
	delete(e.unsubs, charID)
	e.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	s.SetCharacter("")

	if c == nil {
		return
	}
	if room := e.world.Room(c.RoomID); room != nil {
		room.RemoveOccupant(c.ID)
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.db.Characters.Save(saveCtx, &snap); err != nil {
		slog.Error("saving character on detach", "character", c.Name, "error", err)
	}
	slog.Info("character detached", "character", c.Name, "session", s.ID())
}

func (e *Engine) SendToCharacter(charID, msg string) error {
	return e.pub.PublishToCharacter(charID, []byte(msg))
}

// BroadcastToRoom delivers msg to every occupant of roomID except
// excludeCharID. Unknown rooms broadcast to nobody.
func (e *Engine) BroadcastToRoom(roomID, msg, excludeCharID string) error {
	room := e.world.Room(roomID)
	if room == nil {
		return nil
	}
	return e.pub.PublishToCharacters(room.Occupants(), []string{excludeCharID}, []byte(msg))
}

func (e *Engine) BroadcastAll(msg string) error {
	return e.pub.PublishChat([]byte(msg))
}

// HandleConnection runs the full lifecycle of one client connection. It
// blocks until the client disconnects, times out, or the engine shuts down.
func (e *Engine) HandleConnection(ctx context.Context, conn *network.Connection) {
	s := e.sessions.Create(conn)

	defer func() {
		e.DetachCharacter(s)
		e.sessions.Destroy(s.ID())
		conn.Close()
	}()

	// Shutdown and asynchronous deliveries both interleave with the read
	// loop through the connection's writer.
	stopDelivery := make(chan struct{})
	defer close(stopDelivery)
	go func() {
		for {
			select {
			case <-ctx.Done():
				conn.SendLine("\nThe world is closing its doors. Farewell.")
				conn.Close()
				return
			case msg := <-s.Msgs():
				conn.SendLine(string(msg))
			case <-stopDelivery:
				return
			}
		}
	}()

	conn.SendLine(display.Banner())
	conn.SendLine("Type 'login <username>' to log in, or 'register <username> <password> <email>' to begin.")
	s.SetState(network.StateAuthenticating)

	for {
		conn.Send(e.prompt(s))

		line, err := conn.ReadLine(true)
		if err != nil {
			switch {
			case errors.Is(err, network.ErrReadTimeout):
				slog.Info("connection timed out", "session", s.ID())
			case errors.Is(err, network.ErrInterrupted):
				slog.Info("connection interrupted", "session", s.ID())
			case errors.Is(err, network.ErrConnectionLost), errors.Is(err, network.ErrClosed):
				slog.Info("connection lost", "session", s.ID())
			default:
				slog.Warn("read failed", "session", s.ID(), "error", err)
			}
			return
		}

		s.Touch()
		e.ProcessCommand(ctx, s, line)

		if s.State() == network.StateDisconnected {
			return
		}
	}
}

func (e *Engine) prompt(s *network.Session) string {
	if char := e.Character(s.CharacterID()); char != nil {
		return fmt.Sprintf("\n%s> ", char.Name)
	}
	return "\n> "
}

// ProcessCommand parses and executes one line of input. Every failure mode
// resolves to a message on the issuing connection; nothing a player types
// can take down the loop.
func (e *Engine) ProcessCommand(ctx context.Context, s *network.Session, line string) {
	conn := s.Conn()

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	// Chat shortcuts: 'hello -> say hello, :waves -> emote waves.
	switch line[0] {
	case '\'':
		line = "say " + line[1:]
	case ':':
		line = "emote " + line[1:]
	}

	fields := strings.Fields(line)
	verb := strings.ToLower(fields[0])

	cmd, ok := e.registry.Get(verb)
	if !ok {
		conn.SendLine(unknownCommandMsg)
		return
	}

	if cmd.RequiresCharacter() && s.CharacterID() == "" {
		conn.SendLine("You need to be in the world to do that. Use 'play <name>' first.")
		return
	}

	args := fields[1:]
	if len(args) < cmd.MinArgs() {
		conn.SendLine(fmt.Sprintf("Usage: %s", cmd.Usage()))
		return
	}

	cmdCtx := &commands.Context{
		Session: s,
		Conn:    conn,
		Engine:  e,
		Args:    args,
		Raw:     strings.TrimSpace(strings.TrimPrefix(line, fields[0])),
	}

	if err := e.execute(ctx, cmd, cmdCtx); err != nil {
		var userErr *commands.UserError
		if errors.As(err, &userErr) {
			conn.SendLine(userErr.Message)
			return
		}
		slog.Error("command failed", "verb", verb, "session", s.ID(), "error", err)
		conn.SendLine(internalErrorMsg)
	}
}

// execute runs the command, converting a panic into an error so one broken
// handler cannot end the session, let alone the server.
func (e *Engine) execute(ctx context.Context, cmd commands.Command, cmdCtx *commands.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %s panicked: %v", cmd.Name(), r)
		}
	}()
	return cmd.Execute(ctx, cmdCtx)
}
