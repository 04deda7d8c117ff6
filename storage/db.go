package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens the local database in the config directory.
func OpenDB() (*sqlx.DB, error) {
	if _, err := ensureConfigDir(); err != nil {
		return nil, err
	}
	path, err := DBPath()
	if err != nil {
		return nil, err
	}
	return OpenDBAt(path)
}

func OpenDBAt(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	createKV := `
CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`
	if _, err := db.Exec(createKV); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return ensureBookingsSchema(db)
}
