// Package store persists user feedback, scan history, and OAuth tokens in
// a local SQLite database.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const createTablesQuery = `
CREATE TABLE IF NOT EXISTS User (
  name TEXT PRIMARY KEY,
  access_token TEXT DEFAULT '',
  refresh_token TEXT DEFAULT '',
  token_expiry DATETIME
);

CREATE TABLE IF NOT EXISTS Feedback (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT NOT NULL,
  artist_id TEXT NOT NULL,
  artist_name TEXT,
  verdict TEXT NOT NULL,
  seed_artists TEXT,
  omission_score REAL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS FeedbackUserArtist ON Feedback (user, artist_id);

CREATE TABLE IF NOT EXISTS ScanHistory (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT NOT NULL,
  min_popularity INTEGER,
  max_popularity INTEGER,
  candidates_found INTEGER,
  results_returned INTEGER,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

type Store struct {
	db *sql.DB

	// hardRejectCount is the reject total at which an artist becomes
	// permanently excluded for a user.
	hardRejectCount int
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(createTablesQuery); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db, hardRejectCount: 2}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetHardRejectThreshold overrides the reject count that triggers hard
// exclusion. The default is 2.
func (s *Store) SetHardRejectThreshold(n int) {
	if n > 0 {
		s.hardRejectCount = n
	}
}

// CreateUser ensures a user row exists.
func (s *Store) CreateUser(user string) error {
	row := s.db.QueryRow("SELECT name FROM User WHERE name = ?", user)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		if _, err := s.db.Exec("INSERT INTO User (name) VALUES (?)", user); err != nil {
			return fmt.Errorf("inserting user %q: %w", user, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", user, err)
	}
	return nil
}
