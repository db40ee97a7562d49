package mention

import "sync"

// Ticket identifies one suggestion lookup.
type Ticket struct {
	Seq   uint64
	Query string
}

// Tracker decides whether a suggestion response may still be applied.
// The latest query wins, regardless of the order in which responses arrive.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	query  string
	active bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin records query as the latest lookup.
func (t *Tracker) Begin(query string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.query = query
	t.active = true
	return Ticket{Seq: t.seq, Query: query}
}

// Cancel closes the suggestion menu; every outstanding ticket becomes stale.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	t.query = ""
	t.active = false
}

// Current reports whether a response for ticket still matches the latest query.
func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.active && ticket.Query == t.query
}
