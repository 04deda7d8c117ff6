package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// KV is a persisted string key-value store backed by the local database.
type KV struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewKV(db *sqlx.DB) *KV {
	return &KV{db: db, now: time.Now}
}

func (k *KV) GetItem(key string) (string, bool, error) {
	var value string
	err := k.db.Get(&value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (k *KV) SetItem(key, value string) error {
	_, err := k.db.Exec(`
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`,
		key, value, k.now().UTC().Format(time.RFC3339))
	return err
}

func (k *KV) RemoveItem(key string) error {
	_, err := k.db.Exec("DELETE FROM kv WHERE key = ?", key)
	return err
}

// Keys lists stored keys in order.
func (k *KV) Keys() ([]string, error) {
	keys := []string{}
	if err := k.db.Select(&keys, "SELECT key FROM kv ORDER BY key"); err != nil {
		return nil, err
	}
	return keys, nil
}
