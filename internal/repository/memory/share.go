// Package memory is the in-process ShareStore. Records live until the
// process exits; ExpiresAt is recorded but nothing evicts on it.
package memory

import (
	"context"
	"sync"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/repository"
)

var _ repository.ShareStore = (*ShareStore)(nil)

// ShareStore is safe for concurrent use; every HTTP request runs on its own
// goroutine, so the map is guarded by a RWMutex.
type ShareStore struct {
	mu      sync.RWMutex
	records map[string]model.ShareRecord
}

func NewShareStore() *ShareStore {
	return &ShareStore{records: make(map[string]model.ShareRecord)}
}

func (s *ShareStore) Put(_ context.Context, rec *model.ShareRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = *rec
	return nil
}

func (s *ShareStore) Get(_ context.Context, id string) (*model.ShareRecord, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.NotFound("share", id)
	}
	return &rec, nil
}

// Len reports how many records are held.
func (s *ShareStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
