package application

import (
	"context"
	"sync"

	"github.com/lockfind/lockfind/internal/domain/model"
	"github.com/lockfind/lockfind/internal/domain/port/driven"
)

// DefaultLogCapacity is the number of entries a RingLog retains.
const DefaultLogCapacity = 1000

// Compile-time interface satisfaction check.
var _ driven.RequestLogStore = (*RingLog)(nil)

// RingLog is the in-memory RequestLogStore: a bounded FIFO of the most
// recent dispatch outcomes. When full, the oldest entries are dropped.
type RingLog struct {
	mu       sync.Mutex
	entries  []model.RequestLogEntry
	capacity int
}

// NewRingLog creates a RingLog with the given capacity, or
// DefaultLogCapacity when capacity is not positive.
func NewRingLog(capacity int) *RingLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &RingLog{capacity: capacity}
}

// Append adds an entry at the end, evicting from the front while over
// capacity.
func (l *RingLog) Append(_ context.Context, entry model.RequestLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if excess := len(l.entries) - l.capacity; excess > 0 {
		l.entries = append(l.entries[:0], l.entries[excess:]...)
	}
	return nil
}

// Recent returns up to limit of the most recent entries, newest last.
func (l *RingLog) Recent(_ context.Context, limit int) ([]model.RequestLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}

	recent := make([]model.RequestLogEntry, limit)
	copy(recent, l.entries[len(l.entries)-limit:])
	return recent, nil
}

// Clear empties the log.
func (l *RingLog) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return nil
}
