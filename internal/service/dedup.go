package service

import "sync"

// Ledger is a fixed-capacity duplicate filter over update sequence ids. The
// platform redelivers updates after reconnects; the ledger remembers the last
// `capacity` admitted ids and rejects repeats. A never-seen id is always
// admitted on first sight, regardless of pressure on the window.
type Ledger struct {
	mu   sync.Mutex
	seen map[int64]struct{}
	ring []int64
	next int
	full bool
}

// NewLedger creates a Ledger remembering the last capacity ids.
func NewLedger(capacity int) *Ledger {
	if capacity < 1 {
		capacity = 1
	}
	return &Ledger{
		seen: make(map[int64]struct{}, capacity),
		ring: make([]int64, capacity),
	}
}

// Admit records id and reports whether it was new. The first call for any id
// returns true; repeats within the window return false. When the window is
// full the oldest remembered id is evicted.
func (l *Ledger) Admit(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[id]; dup {
		return false
	}

	if l.full {
		delete(l.seen, l.ring[l.next])
	}
	l.ring[l.next] = id
	l.seen[id] = struct{}{}
	l.next++
	if l.next == len(l.ring) {
		l.next = 0
		l.full = true
	}
	return true
}

// Len returns the number of ids currently remembered.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}
