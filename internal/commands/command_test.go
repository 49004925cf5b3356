package commands

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"
)

type noopCommand struct {
	meta
}

func (c *noopCommand) Execute(ctx context.Context, cmdCtx *Context) error { return nil }

func TestRegistryAliasesShareCommand(t *testing.T) {
	r := NewRegistry()
	cmd := &noopCommand{meta{name: "north", aliases: []string{"n"}}}
	if err := r.Register(cmd); err != nil {
		t.Fatalf("registering: %v", err)
	}

	byName, ok := r.Get("north")
	if !ok {
		t.Fatal("lookup by name failed")
	}
	byAlias, ok := r.Get("n")
	if !ok {
		t.Fatal("lookup by alias failed")
	}
	if byName != byAlias {
		t.Error("alias resolved to a different command")
	}
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&noopCommand{meta{name: "north", aliases: []string{"n"}}})

	for _, verb := range []string{"North", "NORTH", "N"} {
		if _, ok := r.Get(verb); !ok {
			t.Errorf("lookup of %q failed", verb)
		}
	}
}

func TestRegistryRejectsDuplicateVerbs(t *testing.T) {
	tests := map[string]struct {
		first  *noopCommand
		second *noopCommand
	}{
		"same name":      {&noopCommand{meta{name: "look"}}, &noopCommand{meta{name: "look"}}},
		"alias vs name":  {&noopCommand{meta{name: "look", aliases: []string{"l"}}}, &noopCommand{meta{name: "l"}}},
		"alias vs alias": {&noopCommand{meta{name: "look", aliases: []string{"l"}}}, &noopCommand{meta{name: "peek", aliases: []string{"l"}}}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewRegistry()
			if err := r.Register(tt.first); err != nil {
				t.Fatalf("registering first: %v", err)
			}
			if err := r.Register(tt.second); err == nil {
				t.Error("expected duplicate verb error")
			}
		})
	}
}

func TestRegistryAllIsSortedWithoutAliasDuplicates(t *testing.T) {
	r := NewRegistry()
	r.Register(&noopCommand{meta{name: "south", aliases: []string{"s"}}})
	r.Register(&noopCommand{meta{name: "look", aliases: []string{"l"}}})

	all := r.All()
	testutil.AssertEqual(t, "count", len(all), 2)
	testutil.AssertEqual(t, "first", all[0].Name(), "look")
	testutil.AssertEqual(t, "second", all[1].Name(), "south")
}

func TestDefaultRegistryBuilds(t *testing.T) {
	r, err := NewDefaultRegistry()
	if err != nil {
		t.Fatalf("building default registry: %v", err)
	}

	for _, verb := range []string{"login", "play", "north", "n", "say", "tell", "help", "quit", "who", "attack"} {
		if _, ok := r.Get(verb); !ok {
			t.Errorf("catalog is missing %q", verb)
		}
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := hashPassword("valaritas")
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}

	if !verifyPassword("valaritas", hash) {
		t.Error("correct password rejected")
	}
	if verifyPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
	if verifyPassword("valaritas", "not-a-phc-string") {
		t.Error("malformed hash accepted")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	h1, _ := hashPassword("valaritas")
	h2, _ := hashPassword("valaritas")
	if h1 == h2 {
		t.Error("two hashes of the same password are identical")
	}
}
