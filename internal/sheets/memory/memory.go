// Package memory is an in-memory RealizationWriter for tests and local
// development without Google credentials.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "flussi/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []ports.Realization
}

var _ ports.RealizationWriter = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, r ports.Realization) (string, error) {
	if r.FlowID <= 0 {
		return "", errors.New("flow id must be positive")
	}
	if r.Date == "" {
		return "", errors.New("date is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Realizations returns a copy of everything appended so far.
func (s *Store) Realizations() []ports.Realization {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.Realization, len(s.rows))
	copy(out, s.rows)
	return out
}
