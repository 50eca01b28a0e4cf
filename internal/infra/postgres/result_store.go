package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-engine/internal/domain"
)

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID             string              `bun:"id,pk"`
	QuizID         string              `bun:"quiz_id,notnull"`
	Score          int                 `bun:"score,notnull"`
	MaxScore       int                 `bun:"max_score,notnull"`
	TimeTaken      int                 `bun:"time_taken,notnull"`
	DateTaken      time.Time           `bun:"date_taken,notnull"`
	TotalQuestions int                 `bun:"total_questions,notnull"`
	Answers        []domain.QuizAnswer `bun:"answers,type:jsonb"`
}

func (r resultRow) toDomain() domain.QuizResult {
	return domain.QuizResult{
		ID:             r.ID,
		QuizID:         r.QuizID,
		Score:          r.Score,
		MaxScore:       r.MaxScore,
		TimeTaken:      r.TimeTaken,
		DateTaken:      r.DateTaken.UTC(),
		TotalQuestions: r.TotalQuestions,
		Answers:        r.Answers,
	}
}

// ResultStore persists submitted results in the quiz_results table.
type ResultStore struct {
	db *bun.DB
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db}
}

// SaveResult inserts r; an existing row with the same ID is left untouched.
func (s *ResultStore) SaveResult(ctx context.Context, r domain.QuizResult) error {
	row := &resultRow{
		ID:             r.ID,
		QuizID:         r.QuizID,
		Score:          r.Score,
		MaxScore:       r.MaxScore,
		TimeTaken:      r.TimeTaken,
		DateTaken:      r.DateTaken,
		TotalQuestions: r.TotalQuestions,
		Answers:        r.Answers,
	}
	if _, err := s.db.NewInsert().Model(row).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("insert result %s: %w", r.ID, err)
	}
	return nil
}

func (s *ResultStore) GetResult(ctx context.Context, resultID string) (domain.QuizResult, error) {
	var row resultRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", resultID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("get result %s: %w", resultID, err)
	}
	return row.toDomain(), nil
}

// ListResults returns the results of quizID, newest first.
func (s *ResultStore) ListResults(ctx context.Context, quizID string) ([]domain.QuizResult, error) {
	var rows []resultRow
	err := s.db.NewSelect().Model(&rows).
		Where("quiz_id = ?", quizID).
		Order("date_taken DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results for %s: %w", quizID, err)
	}
	out := make([]domain.QuizResult, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
