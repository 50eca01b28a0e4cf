package domain

import (
	"encoding/json"
	"time"
)

const (
	// DefaultQuizDuration is the overall attempt budget when a quiz sets none.
	DefaultQuizDuration = 600
	// DefaultQuestionTime is the per-question budget when a question sets none.
	DefaultQuestionTime = 30
)

// Difficulty labels a quiz for browsing.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Category groups quizzes in the catalog.
type Category struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	QuizCount   int    `json:"quiz_count,omitempty"`
}

// Quiz is an ordered, read-only collection of questions.
type Quiz struct {
	ID            string     `json:"id" validate:"required"`
	Title         string     `json:"title" validate:"required"`
	Description   string     `json:"description"`
	CategoryID    string     `json:"category_id"`
	Difficulty    Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	DurationLimit int        `json:"duration_limit" validate:"gte=0"` // seconds, 0 means default
	Questions     []Question `json:"questions" validate:"required,min=1"`
}

// EffectiveDuration returns the attempt budget in seconds, falling back to
// def (or DefaultQuizDuration when def is not positive) for an unset limit.
func (q Quiz) EffectiveDuration(def int) int {
	if q.DurationLimit <= 0 {
		if def <= 0 {
			return DefaultQuizDuration
		}
		return def
	}
	return q.DurationLimit
}

// QuizAnswer is the per-question outcome of an attempt.
type QuizAnswer struct {
	QuestionID   string `json:"question_id"`
	QuestionType Kind   `json:"question_type"`
	Answer       Answer `json:"answer"`
	IsCorrect    bool   `json:"is_correct"`
	Score        int    `json:"score"`
}

type quizAnswerWire struct {
	QuestionID   string          `json:"question_id"`
	QuestionType Kind            `json:"question_type"`
	Answer       json.RawMessage `json:"answer"`
	IsCorrect    bool            `json:"is_correct"`
	Score        int             `json:"score"`
}

func (a QuizAnswer) MarshalJSON() ([]byte, error) {
	raw := json.RawMessage("null")
	if a.Answer != nil {
		data, err := MarshalAnswer(a.Answer)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(quizAnswerWire{
		QuestionID:   a.QuestionID,
		QuestionType: a.QuestionType,
		Answer:       raw,
		IsCorrect:    a.IsCorrect,
		Score:        a.Score,
	})
}

func (a *QuizAnswer) UnmarshalJSON(data []byte) error {
	var wire quizAnswerWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*a = QuizAnswer{
		QuestionID:   wire.QuestionID,
		QuestionType: wire.QuestionType,
		IsCorrect:    wire.IsCorrect,
		Score:        wire.Score,
	}
	if len(wire.Answer) == 0 || string(wire.Answer) == "null" {
		return nil
	}
	answer, err := UnmarshalAnswer(wire.Answer)
	if err != nil {
		return err
	}
	a.Answer = answer
	return nil
}

// QuizResult is the terminal record of one completed attempt.
type QuizResult struct {
	ID             string       `json:"id"`
	QuizID         string       `json:"quiz_id"`
	Score          int          `json:"score"`
	MaxScore       int          `json:"max_score"`
	TimeTaken      int          `json:"time_taken"` // seconds
	DateTaken      time.Time    `json:"date_taken"`
	TotalQuestions int          `json:"total_questions"`
	Answers        []QuizAnswer `json:"answers"`
}
