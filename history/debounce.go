package history

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// DefaultDelay is how long the keyword has to stay unchanged before it is recorded.
const DefaultDelay = time.Second

// Debouncer records a keyword once it has stopped changing for the configured delay.
type Debouncer struct {
	mu      sync.Mutex
	store   *Store
	delay   time.Duration
	timer   *time.Timer
	pending string
	gen     uint64
	log     logr.Logger
}

func NewDebouncer(store *Store, delay time.Duration, log logr.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{store: store, delay: delay, log: log}
}

// Observe restarts the countdown with the latest keyword value.
func (d *Debouncer) Observe(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = term
	if term == "" {
		return
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

// Flush records the pending keyword now.
func (d *Debouncer) Flush() error {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	term := d.pending
	d.pending = ""
	d.mu.Unlock()

	return d.store.Record(term)
}

// Stop drops the pending keyword.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = ""
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	term := d.pending
	d.timer = nil
	d.pending = ""
	d.mu.Unlock()

	if err := d.store.Record(term); err != nil {
		d.log.Error(err, "record search term", "term", term)
	}
}
