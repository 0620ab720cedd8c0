// Package supersede discards results of operations overtaken by a newer one for the same key.
package supersede

import (
	"errors"
	"sync"
)

// ErrSuperseded is returned when a newer operation on the same key has started.
var ErrSuperseded = errors.New("superseded by a newer request")

// Tracker hands out monotonically increasing generations per key.
// Safe for concurrent use.
// INVARIANT: generations are unique across keys, so a released key never reissues an old one
type Tracker struct {
	mu   sync.Mutex
	next uint64
	gens map[string]uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{gens: make(map[string]uint64)}
}

// Ticket identifies one started operation.
type Ticket struct {
	t   *Tracker
	key string
	gen uint64
}

// Begin starts an operation on key; earlier tickets for key become stale.
// POST: the returned ticket is the latest for key
func (t *Tracker) Begin(key string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.gens[key] = t.next
	return Ticket{t: t, key: key, gen: t.next}
}

// Current reports whether no newer operation has started on the ticket's key.
func (tk Ticket) Current() bool {
	tk.t.mu.Lock()
	defer tk.t.mu.Unlock()
	return tk.t.gens[tk.key] == tk.gen
}

// Check returns ErrSuperseded for stale tickets.
func (tk Ticket) Check() error {
	if !tk.Current() {
		return ErrSuperseded
	}
	return nil
}

// Done releases the key when the ticket is still the latest, keeping the map small.
func (tk Ticket) Done() {
	tk.t.mu.Lock()
	defer tk.t.mu.Unlock()
	if tk.t.gens[tk.key] == tk.gen {
		delete(tk.t.gens, tk.key)
	}
}
