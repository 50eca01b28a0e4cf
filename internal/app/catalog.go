package app

import (
	"context"
	"strings"

	"quiz-engine/internal/domain"
)

// CatalogSource lists browseable content.
type CatalogSource interface {
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Filter narrows the quiz listing. Empty fields match everything.
type Filter struct {
	CategoryID string
	Difficulty domain.Difficulty
	Search     string
}

// CatalogService serves the category and quiz browsing views.
type CatalogService struct {
	source CatalogSource
}

func NewCatalogService(source CatalogSource) *CatalogService {
	return &CatalogService{source: source}
}

// Categories returns every category with the number of quizzes it holds.
func (c *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	categories, err := c.source.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	quizzes, err := c.source.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(categories))
	for _, q := range quizzes {
		counts[q.CategoryID]++
	}
	out := make([]domain.Category, len(categories))
	for i, cat := range categories {
		cat.QuizCount = counts[cat.ID]
		out[i] = cat
	}
	return out, nil
}

// Quizzes lists quizzes matching f in source order.
func (c *CatalogService) Quizzes(ctx context.Context, f Filter) ([]domain.Quiz, error) {
	quizzes, err := c.source.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	return FilterQuizzes(quizzes, f), nil
}

// FilterQuizzes keeps quizzes in the category and difficulty of f whose title
// or description contains f.Search, ignoring case.
func FilterQuizzes(quizzes []domain.Quiz, f Filter) []domain.Quiz {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Quiz, 0, len(quizzes))
	for _, q := range quizzes {
		if f.CategoryID != "" && q.CategoryID != f.CategoryID {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(q.Title), search) &&
			!strings.Contains(strings.ToLower(q.Description), search) {
			continue
		}
		out = append(out, q)
	}
	return out
}
