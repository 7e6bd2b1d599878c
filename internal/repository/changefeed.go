package repository

import (
	"context"
	"sync"
)

// Collection identifies a watched collection
type Collection string

const (
	CollectionUsers   Collection = "users"
	CollectionCourses Collection = "courses"
)

// Operation is the change type reported by the storage layer
type Operation string

const (
	OpInsert  Operation = "insert"
	OpUpdate  Operation = "update"
	OpReplace Operation = "replace"
	OpDelete  Operation = "delete"
)

// Event is one data-change notification
type Event struct {
	Collection Collection
	Operation  Operation
}

// ChangeFeed delivers data-change notifications for the watched collections.
// Delivery is asynchronous and unordered; consumers must recompute full
// aggregates rather than apply deltas.
type ChangeFeed interface {
	// Events is the notification channel; closed when the feed stops
	Events() <-chan Event
	// Run tails the underlying feed until ctx is cancelled
	Run(ctx context.Context) error
}

// MemoryChangeFeed is an in-process feed for tests and single-node setups
type MemoryChangeFeed struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewMemoryChangeFeed creates a feed with a small delivery buffer
func NewMemoryChangeFeed() *MemoryChangeFeed {
	return &MemoryChangeFeed{
		ch: make(chan Event, 64),
	}
}

// Events returns the notification channel
func (f *MemoryChangeFeed) Events() <-chan Event {
	return f.ch
}

// Publish delivers an event to subscribers. Events are dropped silently
// after the feed stops or when the buffer is full; the mutex keeps the
// send and the close ordered so a late publisher never hits a closed
// channel.
func (f *MemoryChangeFeed) Publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- ev:
	default:
	}
}

// Run blocks until ctx is cancelled, then closes the channel
func (f *MemoryChangeFeed) Run(ctx context.Context) error {
	<-ctx.Done()
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	f.mu.Unlock()
	return ctx.Err()
}
