package memory

import (
	"context"
	"sync"

	"quiz-engine/internal/domain"
)

// ResultStore keeps submitted results in process memory.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]domain.QuizResult
	byQuiz  map[string][]string
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]domain.QuizResult),
		byQuiz:  make(map[string][]string),
	}
}

// SaveResult stores r. Results are immutable, so a second save of the same ID is ignored.
func (s *ResultStore) SaveResult(_ context.Context, r domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[r.ID]; !exists {
		s.results[r.ID] = r
		s.byQuiz[r.QuizID] = append(s.byQuiz[r.QuizID], r.ID)
	}
	return nil
}

func (s *ResultStore) GetResult(_ context.Context, resultID string) (domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[resultID]
	if !ok {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	return r, nil
}

// ListResults returns the results of quizID, newest first.
func (s *ResultStore) ListResults(_ context.Context, quizID string) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byQuiz[quizID]
	out := make([]domain.QuizResult, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, s.results[ids[i]])
	}
	return out, nil
}
