package memory

import (
	"context"
	"sort"
	"sync"

	"linguahub/internal/domain"
)

// DoubtStore is an in-memory implementation of app.DoubtStore.
type DoubtStore struct {
	mu     sync.RWMutex
	doubts map[string]domain.Doubt
}

func NewDoubtStore() *DoubtStore {
	return &DoubtStore{doubts: make(map[string]domain.Doubt)}
}

func (s *DoubtStore) CreateDoubt(_ context.Context, d *domain.Doubt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doubts[d.ID] = *d
	return nil
}

func (s *DoubtStore) GetDoubt(_ context.Context, id string) (domain.Doubt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.doubts[id]; ok {
		return d, nil
	}
	return domain.Doubt{}, domain.ErrDoubtNotFound
}

func (s *DoubtStore) UpdateDoubt(_ context.Context, d domain.Doubt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doubts[d.ID]; !ok {
		return domain.ErrDoubtNotFound
	}
	s.doubts[d.ID] = d
	return nil
}

// ListByTutor returns the tutor's inbox, open doubts first, newest
// first within each status.
func (s *DoubtStore) ListByTutor(_ context.Context, tutorID string) ([]domain.Doubt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Doubt, 0)
	for _, d := range s.doubts {
		if d.Tutor == tutorID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status == domain.DoubtOpen
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *DoubtStore) ListByLearner(_ context.Context, learnerID string) ([]domain.Doubt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Doubt, 0)
	for _, d := range s.doubts {
		if d.Learner == learnerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
