package memory

import (
	"context"
	"sync"

	"salesreport/internal/core"
	"salesreport/internal/records"
)

// Store keeps records in process memory. ReplaceAll swaps in a new slice so
// readers never observe a mix of old and new contents.
type Store struct {
	mu    sync.RWMutex
	items []core.ProductRecord
}

var (
	_ records.Store   = (*Store)(nil)
	_ records.Counter = (*Store)(nil)
)

func New(seed ...core.ProductRecord) *Store {
	return &Store{items: append([]core.ProductRecord(nil), seed...)}
}

// ReplaceAll validates every record before installing the new set.
func (s *Store) ReplaceAll(_ context.Context, recs []core.ProductRecord) error {
	if err := records.ValidateAll(recs); err != nil {
		return err
	}
	next := append([]core.ProductRecord(nil), recs...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = next
	return nil
}

// ScanAll returns a copy of the current snapshot.
func (s *Store) ScanAll(_ context.Context) ([]core.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.ProductRecord(nil), s.items...), nil
}

func (s *Store) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}
