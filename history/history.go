package history

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/go-logr/logr"
)

const (
	StorageKey   = "roomSearchHistory"
	MaxEntries   = 10
	DefaultLimit = 5
)

// KV is the persisted key-value store the history lives in.
type KV interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Store keeps past search terms, most recent first. Terms are de-duplicated
// by exact value, so "Hanoi" and "hanoi" are two entries.
type Store struct {
	mu  sync.Mutex
	kv  KV
	log logr.Logger
}

func NewStore(kv KV, log logr.Logger) *Store {
	return &Store{kv: kv, log: log}
}

func (s *Store) Record(term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	terms, err := s.load()
	if err != nil {
		return err
	}
	updated := make([]string, 0, len(terms)+1)
	updated = append(updated, term)
	for _, existing := range terms {
		if existing != term {
			updated = append(updated, existing)
		}
	}
	if len(updated) > MaxEntries {
		updated = updated[:MaxEntries]
	}
	return s.save(updated)
}

func (s *Store) Remove(term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	terms, err := s.load()
	if err != nil {
		return err
	}
	updated := slices.DeleteFunc(terms, func(existing string) bool {
		return existing == term
	})
	return s.save(updated)
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.RemoveItem(StorageKey)
}

// List returns up to limit terms. A non-empty query keeps only terms that
// contain it, ignoring case. limit <= 0 means DefaultLimit.
func (s *Store) List(query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.Lock()
	terms, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := []string{}
	for _, term := range terms {
		if len(matches) == limit {
			break
		}
		if needle != "" && !strings.Contains(strings.ToLower(term), needle) {
			continue
		}
		matches = append(matches, term)
	}
	return matches, nil
}

func (s *Store) load() ([]string, error) {
	raw, ok, err := s.kv.GetItem(StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []string{}, nil
	}
	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil {
		s.log.Error(err, "discarding unreadable search history")
		return []string{}, nil
	}
	return terms, nil
}

func (s *Store) save(terms []string) error {
	if terms == nil {
		terms = []string{}
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return err
	}
	return s.kv.SetItem(StorageKey, string(data))
}
