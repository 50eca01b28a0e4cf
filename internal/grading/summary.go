package grading

import "quiz-engine/internal/domain"

// Band is the coarse verdict shown next to a result.
type Band string

const (
	BandExcellent      Band = "excellent"
	BandGood           Band = "good"
	BandKeepPracticing Band = "keep_practicing"
)

// Summary is a display view of a result.
type Summary struct {
	ResultID string `json:"resultId"`
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Percent  int    `json:"percent"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
	Band     Band   `json:"band"`
}

// Summarize computes the rounded percentage and band for r.
func Summarize(r domain.QuizResult) Summary {
	s := Summary{
		ResultID: r.ID,
		Score:    r.Score,
		MaxScore: r.MaxScore,
		Total:    r.TotalQuestions,
	}
	for _, a := range r.Answers {
		if a.IsCorrect {
			s.Correct++
		}
	}
	if r.MaxScore > 0 {
		s.Percent = (r.Score*100 + r.MaxScore/2) / r.MaxScore
	}
	switch {
	case s.Percent >= 70:
		s.Band = BandExcellent
	case s.Percent >= 40:
		s.Band = BandGood
	default:
		s.Band = BandKeepPracticing
	}
	return s
}
