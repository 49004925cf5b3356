package database

import (
	"context"
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserCreateAndFetch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := db.Users.Create(ctx, "kvothe", "hash", "kvothe@university.edu")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	fetched, err := db.Users.GetByUsername(ctx, "kvothe")
	if err != nil {
		t.Fatalf("fetching user: %v", err)
	}
	testutil.AssertEqual(t, "id", fetched.ID, u.ID)
	testutil.AssertEqual(t, "email", fetched.Email, "kvothe@university.edu")
}

func TestUsernameUniqueCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.Users.Create(ctx, "kvothe", "hash", "a@b.c"); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	if _, err := db.Users.Create(ctx, "Kvothe", "hash", "a@b.c"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}

	fetched, err := db.Users.GetByUsername(ctx, "KVOTHE")
	if err != nil {
		t.Fatalf("case-insensitive lookup failed: %v", err)
	}
	testutil.AssertEqual(t, "username", fetched.Username, "kvothe")
}

func TestUnknownUserIsNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.Users.GetByUsername(context.Background(), "ambrose"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCharacterLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, err := db.Users.Create(ctx, "kvothe", "hash", "a@b.c")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	c, err := db.Characters.Create(ctx, u.ID, "Kote", "waystone-common-room")
	if err != nil {
		t.Fatalf("creating character: %v", err)
	}
	testutil.AssertEqual(t, "room", c.RoomID, "waystone-common-room")
	testutil.AssertEqual(t, "rank", c.Rank, RankCommoner)
	testutil.AssertEqual(t, "hp", c.HP, defaultMaxHP)

	c.RoomID = "waystone-kitchen"
	c.HP = 12
	c.Jots = 3
	if err := db.Characters.Save(ctx, c); err != nil {
		t.Fatalf("saving character: %v", err)
	}

	fetched, err := db.Characters.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("fetching character: %v", err)
	}
	testutil.AssertEqual(t, "room", fetched.RoomID, "waystone-kitchen")
	testutil.AssertEqual(t, "hp", fetched.HP, 12)
	testutil.AssertEqual(t, "jots", fetched.Jots, 3)

	if err := db.Characters.Delete(ctx, c.ID); err != nil {
		t.Fatalf("deleting character: %v", err)
	}
	if err := db.Characters.Delete(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCharacterNameUniqueAcrossUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u1, _ := db.Users.Create(ctx, "one", "hash", "a@b.c")
	u2, _ := db.Users.Create(ctx, "two", "hash", "d@e.f")

	if _, err := db.Characters.Create(ctx, u1.ID, "Denna", "start"); err != nil {
		t.Fatalf("creating character: %v", err)
	}
	if _, err := db.Characters.Create(ctx, u2.ID, "denna", "start"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u, _ := db.Users.Create(ctx, "kvothe", "hash", "a@b.c")
	db.Characters.Create(ctx, u.ID, "Kote", "start")
	db.Characters.Create(ctx, u.ID, "Reshi", "start")

	chars, err := db.Characters.ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("listing characters: %v", err)
	}
	testutil.AssertEqual(t, "count", len(chars), 2)
}

func TestRankString(t *testing.T) {
	tests := map[string]struct {
		rank Rank
		want string
	}{
		"commoner": {RankCommoner, "Commoner"},
		"elir":     {RankElir, "E'lir"},
		"arcanist": {RankArcanist, "Arcanist"},
		"unknown":  {Rank(99), "Unknown"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "rank name", tt.rank.String(), tt.want)
		})
	}
}
