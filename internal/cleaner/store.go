package cleaner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ProfileStore indexes noise profiles by Forvo username
type ProfileStore struct {
	db *sql.DB
}

// OpenProfileStore opens or creates the profile database at dbPath
func OpenProfileStore(dbPath string) (*ProfileStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &ProfileStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS noise_profiles (
		username text PRIMARY KEY,
		path text NOT NULL,
		created integer NOT NULL
	)`)
	return err
}

// Lookup returns the profile registered for username, or "" if none is
func (s *ProfileStore) Lookup(ctx context.Context, username string) (NoiseProfile, error) {
	var path string
	err := s.db.QueryRowContext(ctx,
		`SELECT path FROM noise_profiles WHERE username = ?`, username).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up noise profile: %w", err)
	}
	return NoiseProfile(path), nil
}

// Save registers profile for username, replacing an earlier one
func (s *ProfileStore) Save(ctx context.Context, username string, profile NoiseProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO noise_profiles (username, path, created) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET path = excluded.path, created = excluded.created`,
		username, string(profile), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save noise profile: %w", err)
	}
	return nil
}

// Forget removes the profile registered for username
func (s *ProfileStore) Forget(ctx context.Context, username string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM noise_profiles WHERE username = ?`, username); err != nil {
		return fmt.Errorf("failed to remove noise profile: %w", err)
	}
	return nil
}

// Close closes the database
func (s *ProfileStore) Close() error {
	return s.db.Close()
}
