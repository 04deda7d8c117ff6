package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"
)

const (
	StorageKey = "roomSuggestions"
	TTL        = 5 * time.Minute
)

type Kind string

const (
	KindRoom     Kind = "room"
	KindRoomType Kind = "roomType"
	KindHistory  Kind = "history"
)

// Raw is a suggestion as the booking backend reports it.
type Raw struct {
	SuggestionType string `json:"suggestionType"`
	RoomID         int64  `json:"roomId"`
	RoomTitle      string `json:"roomTitle"`
	RoomCode       string `json:"roomCode"`
	RoomTypeID     int64  `json:"roomTypeId"`
	RoomTypeName   string `json:"roomTypeName"`
	LastBookedDate string `json:"lastBookedDate"`
	BookingCount   int64  `json:"bookingCount"`
}

type Suggestion struct {
	ID                 string `json:"id"`
	Label              string `json:"label"`
	Kind               Kind   `json:"type"`
	Value              string `json:"value"`
	RoomTitle          string `json:"roomTitle,omitempty"`
	RoomCode           string `json:"roomCode,omitempty"`
	RoomTypeName       string `json:"roomTypeName,omitempty"`
	Count              int64  `json:"count"`
	LastBookedDate     string `json:"lastBookedDate,omitempty"`
	IsPreviouslyBooked bool   `json:"isPreviouslyBooked"`
}

// Fetcher loads raw suggestions from the backend.
type Fetcher func(ctx context.Context) ([]Raw, error)

type KV interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

type entry struct {
	Data      []Suggestion `json:"data"`
	Timestamp int64        `json:"timestamp"`
}

// Cache serves suggestions from the key-value store while they are younger
// than TTL, refetching them otherwise.
type Cache struct {
	kv    KV
	ttl   time.Duration
	now   func() time.Time
	log   logr.Logger
	group singleflight.Group
	mu    sync.Mutex
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

func WithLogger(log logr.Logger) Option {
	return func(c *Cache) { c.log = log }
}

func NewCache(kv KV, opts ...Option) *Cache {
	c := &Cache{kv: kv, ttl: TTL, now: time.Now, log: logr.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get never fails: a fetch error yields an empty list.
func (c *Cache) Get(ctx context.Context, fetch Fetcher) []Suggestion {
	if cached, ok := c.fresh(); ok {
		return cached
	}

	v, err, shared := c.group.Do(StorageKey, func() (any, error) {
		if cached, ok := c.fresh(); ok {
			return cached, nil
		}
		raw, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		suggestions := Normalize(raw)
		c.store(suggestions)
		return suggestions, nil
	})
	if err != nil {
		c.log.Error(err, "fetch search suggestions")
		return []Suggestion{}
	}
	out := v.([]Suggestion)
	c.log.V(1).Info("resolved search suggestions", "count", len(out), "shared", shared)
	return append([]Suggestion{}, out...)
}

// Invalidate drops the cached entry.
func (c *Cache) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.RemoveItem(StorageKey)
}

func (c *Cache) fresh() ([]Suggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok, err := c.kv.GetItem(StorageKey)
	if err != nil {
		c.log.Error(err, "read cached suggestions")
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.log.Error(err, "parse cached suggestions")
		return nil, false
	}
	age := c.now().Sub(time.UnixMilli(e.Timestamp))
	if age < 0 || age >= c.ttl {
		return nil, false
	}
	if e.Data == nil {
		e.Data = []Suggestion{}
	}
	return e.Data, true
}

func (c *Cache) store(suggestions []Suggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(entry{Data: suggestions, Timestamp: c.now().UnixMilli()})
	if err != nil {
		c.log.Error(err, "encode suggestions")
		return
	}
	if err := c.kv.SetItem(StorageKey, string(data)); err != nil {
		c.log.Error(err, "cache suggestions")
	}
}

// Normalize converts backend suggestions into display entries.
func Normalize(raw []Raw) []Suggestion {
	out := make([]Suggestion, 0, len(raw))
	for _, item := range raw {
		s := Suggestion{
			Count:              item.BookingCount,
			LastBookedDate:     item.LastBookedDate,
			IsPreviouslyBooked: item.LastBookedDate != "",
		}
		if Kind(item.SuggestionType) == KindRoom {
			s.ID = fmt.Sprintf("room-%d", item.RoomID)
			s.Label = item.RoomTitle
			if s.Label == "" {
				s.Label = item.RoomCode
			}
			s.Kind = KindRoom
			s.Value = fmt.Sprint(item.RoomID)
			s.RoomTitle = item.RoomTitle
			s.RoomCode = item.RoomCode
			s.RoomTypeName = item.RoomTypeName
		} else {
			s.ID = fmt.Sprintf("roomType-%d", item.RoomTypeID)
			s.Label = item.RoomTypeName
			s.Kind = KindRoomType
			s.Value = fmt.Sprint(item.RoomTypeID)
			s.RoomTypeName = item.RoomTypeName
		}
		out = append(out, s)
	}
	return out
}

// Filter keeps suggestions whose label contains query, ignoring case. An
// empty query keeps everything.
func Filter(suggestions []Suggestion, query string) []Suggestion {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return suggestions
	}
	out := []Suggestion{}
	for _, s := range suggestions {
		if strings.Contains(strings.ToLower(s.Label), needle) {
			out = append(out, s)
		}
	}
	return out
}

// FromHistory wraps search history terms as suggestions.
func FromHistory(terms []string) []Suggestion {
	out := make([]Suggestion, 0, len(terms))
	for _, term := range terms {
		out = append(out, Suggestion{
			ID:    "history-" + term,
			Label: term,
			Kind:  KindHistory,
			Value: term,
		})
	}
	return out
}
