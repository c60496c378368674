// Package catalog provides the read-side store for adoptable dogs.
//
// The catalog is the source of truth the semantic index is projected
// from. It is owned externally; this service only lists and reads
// records, plus a one-time seed of demo data for fresh installs.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poochpalace/adoptions/pkg/models"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the dog catalog.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database in dataDir and ensures the
// schema exists. Pass ":memory:" as dataDir for an in-memory database
// (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "adoptions.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS dogs (
		id          INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		owner       TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

// List returns every dog in the catalog, ordered by id.
func (s *Store) List(ctx context.Context) ([]models.Dog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, owner, description FROM dogs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing dogs: %w", err)
	}
	defer rows.Close()

	var dogs []models.Dog
	for rows.Next() {
		var d models.Dog
		if err := rows.Scan(&d.ID, &d.Name, &d.Owner, &d.Description); err != nil {
			return nil, fmt.Errorf("scanning dog row: %w", err)
		}
		dogs = append(dogs, d)
	}
	return dogs, rows.Err()
}

// Get returns a single dog by id.
func (s *Store) Get(ctx context.Context, id int) (*models.Dog, error) {
	var d models.Dog
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, owner, description FROM dogs WHERE id = ?`, id).
		Scan(&d.ID, &d.Name, &d.Owner, &d.Description)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("dog %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting dog %d: %w", id, err)
	}
	return &d, nil
}

// SeedIfEmpty inserts the given dogs only when the catalog has no rows.
// Used by the server bootstrap to give fresh installs something to adopt.
func (s *Store) SeedIfEmpty(ctx context.Context, dogs []models.Dog) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM dogs`).Scan(&count); err != nil {
		return fmt.Errorf("counting dogs: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	for _, d := range dogs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dogs (id, name, owner, description) VALUES (?, ?, ?, ?)`,
			d.ID, d.Name, d.Owner, d.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting dog %d: %w", d.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	log.Info().Int("dogs", len(dogs)).Msg("Catalog seeded")
	return nil
}

// DemoDogs is the sample catalog inserted on first run.
func DemoDogs() []models.Dog {
	return []models.Dog{
		{ID: 1, Name: "Prancer", Owner: "shelter", Description: "A neurotic chihuahua who hates men, children, and other dogs, but will love you fiercely."},
		{ID: 2, Name: "Rex", Owner: "shelter", Description: "A loyal german shepherd who knows twelve commands and naps through thunderstorms."},
		{ID: 3, Name: "Biscuit", Owner: "shelter", Description: "A golden retriever puppy with boundless energy and an appetite for tennis balls."},
		{ID: 4, Name: "Luna", Owner: "foster", Description: "A gentle husky mix who howls along to sirens and loves long winter walks."},
		{ID: 5, Name: "Pickles", Owner: "shelter", Description: "A scrappy terrier who opens doors, fears vacuum cleaners, and adores children."},
		{ID: 6, Name: "Mochi", Owner: "foster", Description: "A calm shiba inu who prefers quiet apartments and windowsill sunbeams."},
	}
}
