package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-engine/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID         string      `bun:"id,pk"`
	Title      string      `bun:"title,notnull"`
	CategoryID string      `bun:"category_id"`
	Difficulty string      `bun:"difficulty"`
	Data       domain.Quiz `bun:"data,type:jsonb,notnull"`
}

type categoryRow struct {
	bun.BaseModel `bun:"table:categories"`

	ID          string `bun:"id,pk"`
	Name        string `bun:"name,notnull"`
	Description string `bun:"description"`
	Icon        string `bun:"icon"`
	Color       string `bun:"color"`
}

// Seed upserts categories and quizzes in one transaction.
func Seed(ctx context.Context, db *bun.DB, categories []domain.Category, quizzes []domain.Quiz) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(categories) > 0 {
			rows := make([]categoryRow, len(categories))
			for i, c := range categories {
				rows[i] = categoryRow{ID: c.ID, Name: c.Name, Description: c.Description, Icon: c.Icon, Color: c.Color}
			}
			_, err := tx.NewInsert().Model(&rows).
				On("CONFLICT (id) DO UPDATE").
				Set("name = EXCLUDED.name").
				Set("description = EXCLUDED.description").
				Set("icon = EXCLUDED.icon").
				Set("color = EXCLUDED.color").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
		}
		if len(quizzes) > 0 {
			rows := make([]quizRow, len(quizzes))
			for i, q := range quizzes {
				rows[i] = quizRow{ID: q.ID, Title: q.Title, CategoryID: q.CategoryID, Difficulty: string(q.Difficulty), Data: q}
			}
			_, err := tx.NewInsert().Model(&rows).
				On("CONFLICT (id) DO UPDATE").
				Set("title = EXCLUDED.title").
				Set("category_id = EXCLUDED.category_id").
				Set("difficulty = EXCLUDED.difficulty").
				Set("data = EXCLUDED.data").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("seed quizzes: %w", err)
			}
		}
		return nil
	})
}
