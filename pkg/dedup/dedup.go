// Package dedup provides a small TTL-bounded set used to recognize
// redelivered QoS 1 command payloads by their content hash. Adapted from
// the teacher's sensor-simulator deduper (internal/sensor-simulator,
// originally guarding against duplicate state-change events); here it
// guards the controller's command dispatcher instead.
package dedup

import (
	"sync"
	"time"
)

// Deduper remembers payload hashes it has already accepted, for ttl. Once
// the set grows past max, expired entries are swept until it is back at
// max; unexpired entries are never evicted, so the set can stay above max.
type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
}

// New builds a Deduper. Non-positive ttl/max fall back to sane defaults.
func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if max <= 0 {
		max = 10000
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time, max)}
}

// ShouldProcess reports whether id has not been seen within ttl. A QoS 1
// redelivery of the same command payload hashes to the same id and is
// rejected on the second call; an empty id always passes (nothing to key
// on, so nothing to dedup).
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[id]; ok && now.Before(exp) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)

	if len(d.seen) > d.max {
		d.evictExpired(now)
	}
	return true
}

// evictExpired sweeps entries whose TTL has passed. Called with mu held.
func (d *Deduper) evictExpired(now time.Time) {
	for k, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, k)
		}
		if len(d.seen) <= d.max {
			return
		}
	}
}
