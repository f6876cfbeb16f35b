package drafts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// MemoryStore keeps drafts for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Create(_ context.Context, d *Draft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = ulid.Make().String()
	d.CreatedAt = time.Now().UTC()
	s.drafts[d.ID] = *d
	logrus.WithFields(logrus.Fields{"draft_id": d.ID, "data_length": len(d.DataURL)}).Debug("draft created")
	return d.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &d, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Draft, 0, len(s.drafts))
	for _, d := range s.drafts {
		d := d
		d.DataURL = ""
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.drafts, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
