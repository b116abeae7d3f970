package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"linguahub/internal/domain"
)

// TestStore is an in-memory implementation of app.TestStore and
// app.SubmissionStore. Holding both behind one lock keeps the
// delete-test cascade atomic.
type TestStore struct {
	mu          sync.RWMutex
	tests       map[string]domain.Test
	submissions map[string]domain.Submission
}

func NewTestStore() *TestStore {
	return &TestStore{
		tests:       make(map[string]domain.Test),
		submissions: make(map[string]domain.Submission),
	}
}

func (s *TestStore) CreateTest(_ context.Context, t *domain.Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests[t.ID] = *t
	return nil
}

func (s *TestStore) GetTest(_ context.Context, id string) (domain.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tests[id]; ok {
		return t, nil
	}
	return domain.Test{}, domain.ErrTestNotFound
}

func (s *TestStore) ListLive(_ context.Context, language string) ([]domain.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Test, 0)
	for _, t := range s.tests {
		if t.IsLive && (language == "" || t.Language == language) {
			out = append(out, t)
		}
	}
	sortTestsNewestFirst(out)
	return out, nil
}

func (s *TestStore) ListByTutor(_ context.Context, tutorID string) ([]domain.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Test, 0)
	for _, t := range s.tests {
		if t.Tutor == tutorID {
			out = append(out, t)
		}
	}
	sortTestsNewestFirst(out)
	return out, nil
}

func (s *TestStore) SetLive(_ context.Context, id, tutorID string, live bool) (domain.Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[id]
	if !ok || t.Tutor != tutorID {
		return domain.Test{}, domain.ErrTestNotFound
	}
	t.IsLive = live
	s.tests[id] = t
	return t, nil
}

func (s *TestStore) DeleteTest(_ context.Context, id, tutorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tests[id]
	if !ok || t.Tutor != tutorID {
		return domain.ErrTestNotFound
	}
	delete(s.tests, id)
	for subID, sub := range s.submissions {
		if sub.TestID == id {
			delete(s.submissions, subID)
		}
	}
	return nil
}

func (s *TestStore) CreateSubmission(_ context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[sub.ID] = *sub
	return nil
}

func (s *TestStore) GetSubmission(_ context.Context, id string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.submissions[id]; ok {
		return sub, nil
	}
	return domain.Submission{}, domain.ErrSubmissionNotFound
}

func (s *TestStore) ListByTest(_ context.Context, testID string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.submissions {
		if sub.TestID == testID {
			out = append(out, sub)
		}
	}
	sortSubmissionsNewestFirst(out)
	return out, nil
}

func (s *TestStore) ListByLearner(_ context.Context, learnerID string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.submissions {
		if sub.Learner == learnerID {
			out = append(out, sub)
		}
	}
	sortSubmissionsNewestFirst(out)
	return out, nil
}

func (s *TestStore) SetComment(_ context.Context, id, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	sub.Comment = comment
	s.submissions[id] = sub
	return nil
}

func (s *TestStore) CountByTest(_ context.Context, testIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(testIDs))
	for _, id := range testIDs {
		wanted[id] = true
	}
	counts := make(map[string]int, len(testIDs))
	for _, sub := range s.submissions {
		if wanted[sub.TestID] {
			counts[sub.TestID]++
		}
	}
	return counts, nil
}

func (s *TestStore) TimesInWindow(_ context.Context, learnerID string, from, to time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]time.Time, 0)
	for _, sub := range s.submissions {
		if sub.Learner != learnerID {
			continue
		}
		if sub.CreatedAt.Before(from) || sub.CreatedAt.After(to) {
			continue
		}
		out = append(out, sub.CreatedAt)
	}
	return out, nil
}

func sortTestsNewestFirst(tests []domain.Test) {
	sort.Slice(tests, func(i, j int) bool {
		if !tests[i].CreatedAt.Equal(tests[j].CreatedAt) {
			return tests[i].CreatedAt.After(tests[j].CreatedAt)
		}
		return tests[i].ID < tests[j].ID
	})
}

func sortSubmissionsNewestFirst(subs []domain.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].CreatedAt.Equal(subs[j].CreatedAt) {
			return subs[i].CreatedAt.After(subs[j].CreatedAt)
		}
		return subs[i].ID < subs[j].ID
	})
}
