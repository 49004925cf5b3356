package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	email         TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	last_login_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS characters (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	name       TEXT NOT NULL UNIQUE COLLATE NOCASE,
	room_id    TEXT NOT NULL,
	rank       INTEGER NOT NULL DEFAULT 0,
	hp         INTEGER NOT NULL,
	max_hp     INTEGER NOT NULL,
	talents    INTEGER NOT NULL DEFAULT 0,
	jots       INTEGER NOT NULL DEFAULT 0,
	drabs      INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_characters_user ON characters(user_id);
`

// DB wraps the sqlx handle and exposes the user and character stores.
type DB struct {
	db         *sqlx.DB
	Users      *UserStore
	Characters *CharacterStore
}

// Open opens (creating if necessary) the database at path and applies the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*DB, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// modernc sqlite serializes writes internally but concurrent writers
	// still trip SQLITE_BUSY without this.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &DB{
		db:         db,
		Users:      &UserStore{db: db},
		Characters: &CharacterStore{db: db},
	}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// WithTx runs fn inside a transaction, committing on nil and rolling back
// on error or panic.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}
