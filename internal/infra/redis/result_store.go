package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/domain"
)

// ResultStore keeps submitted results in Redis.
// Results are stored as:      SET result:{resultID} {json}
// Per-quiz history is kept as: LPUSH quiz:{quizID}:results {resultID}
type ResultStore struct {
	client *redis.Client
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

// SaveResult stores r once; saving an existing ID again is a no-op.
func (s *ResultStore) SaveResult(ctx context.Context, r domain.QuizResult) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result %s: %w", r.ID, err)
	}
	created, err := s.client.SetNX(ctx, resultKey(r.ID), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("save result %s: %w", r.ID, err)
	}
	if !created {
		return nil
	}
	if err := s.client.LPush(ctx, historyKey(r.QuizID), r.ID).Err(); err != nil {
		return fmt.Errorf("index result %s: %w", r.ID, err)
	}
	return nil
}

func (s *ResultStore) GetResult(ctx context.Context, resultID string) (domain.QuizResult, error) {
	raw, err := s.client.Get(ctx, resultKey(resultID)).Bytes()
	if isMiss(err) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("get result %s: %w", resultID, err)
	}
	var r domain.QuizResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.QuizResult{}, fmt.Errorf("decode result %s: %w", resultID, err)
	}
	return r, nil
}

// ListResults returns the results of quizID, newest first.
func (s *ResultStore) ListResults(ctx context.Context, quizID string) ([]domain.QuizResult, error) {
	ids, err := s.client.LRange(ctx, historyKey(quizID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list results for %s: %w", quizID, err)
	}
	if len(ids) == 0 {
		return []domain.QuizResult{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = resultKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load results for %s: %w", quizID, err)
	}
	out := make([]domain.QuizResult, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r domain.QuizResult
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

func resultKey(resultID string) string {
	return "result:" + resultID
}

func historyKey(quizID string) string {
	return "quiz:" + quizID + ":results"
}
