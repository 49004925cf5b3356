package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Command is a single player-facing verb. Implementations hold no per-session
// state; everything they need arrives in the Context.
type Command interface {
	// Name is the primary verb, lowercase.
	Name() string
	// Aliases are alternate verbs that dispatch to the same command.
	Aliases() []string
	// Help is a one-line description shown by the help command.
	Help() string
	// Usage is the argument synopsis, e.g. "tell <character> <message>".
	Usage() string
	// MinArgs is the minimum number of arguments required.
	MinArgs() int
	// RequiresCharacter reports whether the command needs a character in
	// the world (as opposed to auth-stage commands like login).
	RequiresCharacter() bool

	Execute(ctx context.Context, cmdCtx *Context) error
}

// meta carries the static description shared by all commands. Embed it and
// override Execute.
type meta struct {
	name      string
	aliases   []string
	help      string
	usage     string
	minArgs   int
	needsChar bool
}

func (m meta) Name() string            { return m.name }
func (m meta) Aliases() []string       { return m.aliases }
func (m meta) Help() string            { return m.help }
func (m meta) Usage() string           { return m.usage }
func (m meta) MinArgs() int            { return m.minArgs }
func (m meta) RequiresCharacter() bool { return m.needsChar }

// Registry maps verbs and aliases to commands. Registration happens at
// startup; lookups afterward are read-only and need no locking.
type Registry struct {
	byVerb   map[string]Command
	commands []Command
}

func NewRegistry() *Registry {
	return &Registry{byVerb: make(map[string]Command)}
}

// Register adds a command under its name and all aliases. A verb collision
// is a programming error and fails loudly at startup.
func (r *Registry) Register(cmd Command) error {
	verbs := append([]string{cmd.Name()}, cmd.Aliases()...)
	for _, verb := range verbs {
		verb = strings.ToLower(verb)
		if existing, ok := r.byVerb[verb]; ok {
			return fmt.Errorf("verb %q already registered to %q", verb, existing.Name())
		}
		r.byVerb[verb] = cmd
	}
	r.commands = append(r.commands, cmd)
	return nil
}

// Get looks up a command by verb, case-insensitively. The second return is
// false when no command is bound to the verb.
func (r *Registry) Get(verb string) (Command, bool) {
	cmd, ok := r.byVerb[strings.ToLower(verb)]
	return cmd, ok
}

// All returns every registered command, sorted by name. Aliases do not
// produce duplicates.
func (r *Registry) All() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
