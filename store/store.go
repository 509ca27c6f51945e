// Package store keeps a history of published lane collections.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/laneplanner/lane"
)

// ErrNoLanes is returned when a store holds no records.
var ErrNoLanes = errors.New("no lanes recorded")

// Record is one published lane collection.
type Record struct {
	ID          string      `bson:"_id" json:"id"`
	PublishedAt time.Time   `bson:"published_at" json:"published_at"`
	Lanes       []lane.Lane `bson:"lanes" json:"lanes"`
}

// NewRecord wraps a collection published at the given time.
func NewRecord(c *lane.Collection, at time.Time) Record {
	return Record{ID: c.ID.String(), PublishedAt: at, Lanes: c.Lanes}
}

// Store persists records.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	// Latest returns the most recently published record or ErrNoLanes.
	Latest(ctx context.Context) (Record, error)
	// List returns up to limit records, newest first. A limit of zero or less returns all.
	List(ctx context.Context, limit int) ([]Record, error)
	Close(ctx context.Context) error
}

// DefaultMemoryCapacity bounds a MemoryStore created with a zero capacity.
const DefaultMemoryCapacity = 256

// MemoryStore keeps the most recent records in memory.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	records  []Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding at most capacity records.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity}
}

// Insert implements Store. The oldest record is evicted when full.
func (s *MemoryStore) Insert(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].PublishedAt.Before(s.records[j].PublishedAt)
	})
	if over := len(s.records) - s.capacity; over > 0 {
		s.records = append([]Record(nil), s.records[over:]...)
	}
	return nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return Record{}, ErrNoLanes
	}
	return s.records[len(s.records)-1], nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
