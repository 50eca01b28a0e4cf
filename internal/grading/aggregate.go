package grading

import (
	"time"

	"quiz-engine/internal/domain"
)

// Aggregate evaluates each question against the answer at the same index.
// answers may be shorter than questions or hold nil entries; those questions
// still produce a QuizAnswer scored 0. Answers past the last question are ignored.
func Aggregate(questions []domain.Question, answers []domain.Answer) ([]domain.QuizAnswer, int) {
	out := make([]domain.QuizAnswer, 0, len(questions))
	total := 0
	for i, q := range questions {
		var a domain.Answer
		if i < len(answers) {
			a = answers[i]
		}
		correct := Evaluate(q, a)
		score := 0
		if correct {
			score = q.EffectivePoints()
		}
		total += score
		out = append(out, domain.QuizAnswer{
			QuestionID:   q.ID,
			QuestionType: q.Kind(),
			Answer:       a,
			IsCorrect:    correct,
			Score:        score,
		})
	}
	return out, total
}

// AllAnswered reports whether every question has a non-nil answer.
// It drives a soft warning only and never blocks submission.
func AllAnswered(questions []domain.Question, answers []domain.Answer) bool {
	if len(answers) < len(questions) {
		return false
	}
	for i := range questions {
		if answers[i] == nil {
			return false
		}
	}
	return true
}

// MaxScore sums the effective points of every question.
func MaxScore(questions []domain.Question) int {
	total := 0
	for _, q := range questions {
		total += q.EffectivePoints()
	}
	return total
}

// NewResult builds the terminal record for an attempt.
func NewResult(id string, quiz domain.Quiz, answers []domain.Answer, timeTaken time.Duration, takenAt time.Time) domain.QuizResult {
	perQuestion, total := Aggregate(quiz.Questions, answers)
	secs := int(timeTaken / time.Second)
	if secs < 0 {
		secs = 0
	}
	return domain.QuizResult{
		ID:             id,
		QuizID:         quiz.ID,
		Score:          total,
		MaxScore:       MaxScore(quiz.Questions),
		TimeTaken:      secs,
		DateTaken:      takenAt.UTC(),
		TotalQuestions: len(quiz.Questions),
		Answers:        perQuestion,
	}
}
