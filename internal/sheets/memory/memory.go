package memory

import (
	"context"
	"sync"

	"salesreport/internal/core"
	"salesreport/internal/report"
	"salesreport/internal/sheets"
)

var _ sheets.ReportWriter = (*Store)(nil)

// Store keeps the last written report in memory as sheet values.
type Store struct {
	mu     sync.Mutex
	values [][]interface{}
	writes int
}

func New() *Store {
	return &Store{}
}

// WriteReport replaces the stored values with the header and rows.
func (s *Store) WriteReport(_ context.Context, rows []core.CategorySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = report.Values(rows)
	s.writes++
	return nil
}

// Values returns a copy of the last written values.
func (s *Store) Values() [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]interface{}, len(s.values))
	for i, row := range s.values {
		out[i] = append([]interface{}(nil), row...)
	}
	return out
}

// Writes reports how many times WriteReport was called.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
