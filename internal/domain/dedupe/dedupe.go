// Package dedupe remembers recently handled IDs so the same item is not
// enqueued twice when a caller retries a hand-off. It does not detect
// repeated evaluations; the evaluation store rejects those.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 100_000

// Deduper records seen IDs to ensure at-most-once handling.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded, recording it
	// if not. The check and the record happen atomically.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so it can be handled again, for example after the
	// downstream queue refused it.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper keeps IDs in a ring in insertion order. A ring slot is
// live only while seen still points back at it.
type inMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int
	seen    map[string]int // id -> ring slot, -1 when unbounded
	ring    []string
	next    int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[id] = -1
		return false
	}

	slot := d.next
	if owner, ok := d.seen[d.ring[slot]]; ok && owner == slot {
		delete(d.seen, d.ring[slot])
	}
	d.ring[slot] = id
	d.seen[id] = slot
	d.next = (slot + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.seen, id)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
