package pager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

type Status int

const (
	Idle Status = iota
	Loading
	Loaded
	Errored
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

var (
	// ErrSuperseded is returned when a newer load was issued before this one resolved.
	ErrSuperseded = errors.New("pager: response superseded by a newer request")
	// ErrClosed is returned once the controller has been closed.
	ErrClosed          = errors.New("pager: controller closed")
	ErrInvalidPageSize = errors.New("pager: page size not allowed")
)

// Result is one page as returned by the backend.
type Result[T any] struct {
	Content       []T
	TotalPages    int
	TotalElements int64
}

type Request[F any] struct {
	Filters F
	Page    int
	Size    int
}

type FetchFunc[T, F any] func(ctx context.Context, req Request[F]) (Result[T], error)

// State is a snapshot of a controller.
type State[T, F any] struct {
	Status        Status
	Page          int
	Size          int
	TotalPages    int
	TotalElements int64
	Content       []T
	Filters       F
	Err           error
}

type Options struct {
	Sizes       []int
	DefaultSize int
	Logger      logr.Logger
}

// Controller tracks page, size and content for one list. It is safe for
// concurrent use; only the most recently issued load may change its state.
type Controller[T, F any] struct {
	mu     sync.Mutex
	fetch  FetchFunc[T, F]
	sizes  []int
	state  State[T, F]
	seq    uint64
	closed bool
	log    logr.Logger
}

func New[T, F any](fetch FetchFunc[T, F], opts Options) *Controller[T, F] {
	sizes := slices.Clone(opts.Sizes)
	size := opts.DefaultSize
	if size <= 0 && len(sizes) > 0 {
		size = sizes[0]
	}
	if len(sizes) > 0 && !slices.Contains(sizes, size) {
		size = sizes[0]
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Controller[T, F]{
		fetch: fetch,
		sizes: sizes,
		state: State[T, F]{Status: Idle, Size: size, Content: []T{}},
		log:   log,
	}
}

func (c *Controller[T, F]) Sizes() []int {
	return slices.Clone(c.sizes)
}

func (c *Controller[T, F]) Snapshot() State[T, F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Content = slices.Clone(c.state.Content)
	if s.Content == nil {
		s.Content = []T{}
	}
	return s
}

// Load fetches page and shows the loading state while it is in flight.
// Page only changes once the fetch succeeds.
func (c *Controller[T, F]) Load(ctx context.Context, page int) error {
	return c.load(ctx, page, 0, false, nil)
}

// Refresh reloads the current page without entering the loading state.
func (c *Controller[T, F]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page := c.state.Page
	c.mu.Unlock()
	return c.load(ctx, page, 0, true, nil)
}

// ChangePage loads page n. It does nothing when n is outside [0, TotalPages).
func (c *Controller[T, F]) ChangePage(ctx context.Context, n int) error {
	c.mu.Lock()
	total := c.state.TotalPages
	c.mu.Unlock()
	if n < 0 || n >= total {
		c.log.V(1).Info("ignoring page change out of range", "page", n, "totalPages", total)
		return nil
	}
	return c.load(ctx, n, 0, false, nil)
}

// ChangePageSize resets to the first page and reloads with size. The new
// size is kept only if that load succeeds.
func (c *Controller[T, F]) ChangePageSize(ctx context.Context, size int) error {
	if len(c.sizes) > 0 && !slices.Contains(c.sizes, size) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrInvalidPageSize, size, c.sizes)
	}
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	return c.load(ctx, 0, size, false, func(s *State[T, F]) {
		s.Page = 0
	})
}

// Apply replaces the applied filter snapshot and reloads from the first page.
func (c *Controller[T, F]) Apply(ctx context.Context, filters F) error {
	return c.load(ctx, 0, 0, false, func(s *State[T, F]) {
		s.Filters = filters
		s.Page = 0
	})
}

// Close detaches the controller; responses still in flight are discarded.
func (c *Controller[T, F]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// load fetches page at size (0 keeps the current size). reset runs before
// the request is issued and is kept whatever the outcome.
func (c *Controller[T, F]) load(ctx context.Context, page, size int, silent bool, reset func(*State[T, F])) error {
	if page < 0 {
		page = 0
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if reset != nil {
		reset(&c.state)
	}
	if size <= 0 {
		size = c.state.Size
	}
	c.seq++
	seq := c.seq
	if !silent {
		c.state.Status = Loading
	}
	req := Request[F]{Filters: c.state.Filters, Page: page, Size: size}
	c.mu.Unlock()

	c.log.V(1).Info("loading page", "page", req.Page, "size", req.Size, "seq", seq, "silent", silent)
	result, err := c.fetch(ctx, req)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if seq != c.seq {
		c.mu.Unlock()
		c.log.V(1).Info("discarding stale page", "seq", seq, "latest", c.seq)
		return ErrSuperseded
	}
	if err != nil {
		c.state.Status = Errored
		c.state.Err = err
		c.state.Page = clampPage(c.state.Page, c.state.TotalPages)
		c.mu.Unlock()
		c.log.Error(err, "page load failed", "page", req.Page, "size", req.Size)
		return err
	}

	content := result.Content
	if content == nil {
		content = []T{}
	}
	c.state.Status = Loaded
	c.state.Err = nil
	c.state.Size = req.Size
	c.state.Content = content
	c.state.TotalPages = result.TotalPages
	c.state.TotalElements = result.TotalElements

	// The list shrank underneath us, typically after a delete on the last page.
	if result.TotalPages > 0 && page >= result.TotalPages {
		last := result.TotalPages - 1
		c.state.Page = last
		c.mu.Unlock()
		return c.load(ctx, last, req.Size, silent, nil)
	}
	c.state.Page = clampPage(page, result.TotalPages)
	c.mu.Unlock()
	return nil
}

// clampPage keeps page within [0, max(total,1)).
func clampPage(page, total int) int {
	if page < 0 || total <= 0 {
		return 0
	}
	if page >= total {
		return total - 1
	}
	return page
}
