package journal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in memory.
type MemoryStore struct {
	records []*Record
	mu      sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a copy of record.
func (s *MemoryStore) Append(ctx context.Context, record *Record) error {
	if record == nil {
		return NewStorageError("memory", "append", fmt.Errorf("record is nil"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, cloneRecord(record))
	return nil
}

// Query returns matching records, newest first.
func (s *MemoryStore) Query(ctx context.Context, q *Query) ([]*Record, error) {
	if q == nil {
		q = &Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*Record{}
	for _, r := range s.records {
		if matches(r, q) {
			results = append(results, cloneRecord(r))
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Prune drops records started before cutoff.
func (s *MemoryStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var removed int64
	for _, r := range s.records {
		if r.StartedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept

	return removed, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matches(r *Record, q *Query) bool {
	if q.Root != "" && r.Root != q.Root {
		return false
	}
	if q.Operation != "" && r.Operation != q.Operation {
		return false
	}
	if q.Since != nil && r.StartedAt.Before(*q.Since) {
		return false
	}
	return true
}

func cloneRecord(r *Record) *Record {
	c := *r
	c.Deleted = append([]string(nil), r.Deleted...)
	c.Moved = append([]string(nil), r.Moved...)
	c.Malformed = append([]string(nil), r.Malformed...)
	return &c
}
