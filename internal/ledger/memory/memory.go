// Package memory is an in-memory ledger for development and tests.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Record // insertion order, deleted rows removed
}

var _ ledger.Ledger = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1}
}

// Append stores the record and returns a synthetic row id.
func (s *Store) Append(_ context.Context, r core.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.RowID = strconv.FormatInt(s.nextID, 10)
	s.nextID++
	s.items = append(s.items, r)
	return r.RowID, nil
}

func (s *Store) Delete(_ context.Context, rowID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.RowID == rowID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Scan(_ context.Context, from, to time.Time) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Record
	for _, r := range s.items {
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) ScanLatest(_ context.Context, n int) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || len(s.items) == 0 {
		return nil, nil
	}
	start := len(s.items) - n
	if start < 0 {
		start = 0
	}
	// Newest first.
	out := make([]core.Record, 0, len(s.items)-start)
	for i := len(s.items) - 1; i >= start; i-- {
		out = append(out, s.items[i])
	}
	return out, nil
}
