package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Rank is a character's standing in the Arcanum. Rooms may gate entry on it.
type Rank int

const (
	RankCommoner Rank = iota
	RankElir
	RankRelar
	RankElthe
	RankArcanist
)

var rankNames = map[Rank]string{
	RankCommoner: "Commoner",
	RankElir:     "E'lir",
	RankRelar:    "Re'lar",
	RankElthe:    "El'the",
	RankArcanist: "Arcanist",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return "Unknown"
}

// ParseRank maps a rank keyword (as used in room definitions) to its Rank.
func ParseRank(s string) (Rank, bool) {
	switch strings.ToLower(s) {
	case "commoner":
		return RankCommoner, true
	case "elir", "e'lir":
		return RankElir, true
	case "relar", "re'lar":
		return RankRelar, true
	case "elthe", "el'the":
		return RankElthe, true
	case "arcanist":
		return RankArcanist, true
	}
	return RankCommoner, false
}

const defaultMaxHP = 20

// Character is a playable persona owned by a user. Location and vitals are
// persisted on save and logout.
type Character struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	RoomID    string    `db:"room_id"`
	Rank      Rank      `db:"rank"`
	HP        int       `db:"hp"`
	MaxHP     int       `db:"max_hp"`
	Talents   int       `db:"talents"`
	Jots      int       `db:"jots"`
	Drabs     int       `db:"drabs"`
	CreatedAt time.Time `db:"created_at"`
}

type CharacterStore struct {
	db *sqlx.DB
}

// Create inserts a new character starting in roomID. Names are unique
// case-insensitively across all users.
func (s *CharacterStore) Create(ctx context.Context, userID, name, roomID string) (*Character, error) {
	c := &Character{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		RoomID:    roomID,
		Rank:      RankCommoner,
		HP:        defaultMaxHP,
		MaxHP:     defaultMaxHP,
		Drabs:     20,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO characters (id, user_id, name, room_id, rank, hp, max_hp, talents, jots, drabs, created_at)
		 VALUES (:id, :user_id, :name, :room_id, :rank, :hp, :max_hp, :talents, :jots, :drabs, :created_at)`, c)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("character %q: %w", name, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating character: %w", err)
	}

	return c, nil
}

func (s *CharacterStore) Get(ctx context.Context, id string) (*Character, error) {
	var c Character
	err := s.db.GetContext(ctx, &c, `SELECT * FROM characters WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("character %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching character: %w", err)
	}
	return &c, nil
}

// GetByName finds a character by name, case-insensitively.
func (s *CharacterStore) GetByName(ctx context.Context, name string) (*Character, error) {
	var c Character
	err := s.db.GetContext(ctx, &c, `SELECT * FROM characters WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("character %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching character: %w", err)
	}
	return &c, nil
}

// ListByUser returns all characters owned by userID, oldest first.
func (s *CharacterStore) ListByUser(ctx context.Context, userID string) ([]*Character, error) {
	var chars []*Character
	err := s.db.SelectContext(ctx, &chars,
		`SELECT * FROM characters WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return chars, nil
}

// Save persists the mutable state of a character.
func (s *CharacterStore) Save(ctx context.Context, c *Character) error {
	_, err := s.db.NamedExecContext(ctx,
		`UPDATE characters
		 SET room_id = :room_id, rank = :rank, hp = :hp, max_hp = :max_hp,
		     talents = :talents, jots = :jots, drabs = :drabs
		 WHERE id = :id`, c)
	if err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	return nil
}

func (s *CharacterStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("character %s: %w", id, ErrNotFound)
	}
	return nil
}

// WealthString renders a character's purse in Commonwealth coinage.
func (c *Character) WealthString() string {
	return fmt.Sprintf("%d talents, %d jots, %d drabs", c.Talents, c.Jots, c.Drabs)
}
