// Package validate checks quiz content when it is authored or seeded.
// Grading never relies on it: the evaluator treats bad keys as incorrect.
package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"quiz-engine/internal/domain"
)

// QuizValidator combines struct-tag validation with per-kind key checks.
type QuizValidator struct {
	structs *validator.Validate
}

func New() *QuizValidator {
	return &QuizValidator{structs: validator.New(validator.WithRequiredStructEnabled())}
}

// Quiz validates the quiz fields and every question in it.
func (v *QuizValidator) Quiz(q domain.Quiz) error {
	if err := v.structs.Struct(q); err != nil {
		return fmt.Errorf("quiz %q: %w", q.ID, err)
	}
	seen := make(map[string]struct{}, len(q.Questions))
	var errs []error
	for i, question := range q.Questions {
		if _, dup := seen[question.ID]; dup {
			errs = append(errs, fmt.Errorf("question %d: duplicate id %q", i+1, question.ID))
		}
		seen[question.ID] = struct{}{}
		if err := v.Question(question); err != nil {
			errs = append(errs, fmt.Errorf("question %d: %w", i+1, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("quiz %q: %w", q.ID, errors.Join(errs...))
	}
	return nil
}

// Category validates category fields.
func (v *QuizValidator) Category(c domain.Category) error {
	return v.structs.Struct(c)
}

// Question checks that the answer key only references valid indices.
func (v *QuizValidator) Question(q domain.Question) error {
	if q.ID == "" {
		return errors.New("id is required")
	}
	if q.Points < 0 {
		return errors.New("points cannot be negative")
	}
	if q.TimeLimit < 0 {
		return errors.New("time limit cannot be negative")
	}
	switch b := q.Body.(type) {
	case domain.MultipleChoice:
		return multipleChoice(b)
	case domain.FillInBlank:
		return fillInBlank(q.Text, b)
	case domain.Match:
		return match(b)
	case domain.DragDrop:
		return dragDrop(b)
	case domain.DropDown:
		return dropDown(b)
	default:
		return domain.ErrUnknownKind
	}
}

func multipleChoice(b domain.MultipleChoice) error {
	if len(b.Options) < 2 {
		return errors.New("must have at least 2 options")
	}
	if !inRange(b.CorrectOption, len(b.Options)) {
		return fmt.Errorf("correct option %d out of range", b.CorrectOption)
	}
	return nil
}

func fillInBlank(text string, b domain.FillInBlank) error {
	if len(b.CorrectAnswers) == 0 {
		return errors.New("must have at least 1 accepted answer")
	}
	if n := domain.BlankCount(text); n > 0 && n != len(b.CorrectAnswers) {
		return fmt.Errorf("text has %d blanks but %d accepted answers", n, len(b.CorrectAnswers))
	}
	for i, a := range b.CorrectAnswers {
		if a == "" {
			return fmt.Errorf("accepted answer %d is empty", i)
		}
	}
	return nil
}

func match(b domain.Match) error {
	if len(b.CorrectMatches) == 0 {
		return errors.New("must have at least 1 correct match")
	}
	for _, m := range b.CorrectMatches {
		if !inRange(m.Left, len(b.LeftItems)) || !inRange(m.Right, len(b.RightItems)) {
			return fmt.Errorf("match (%d,%d) out of range", m.Left, m.Right)
		}
	}
	return nil
}

func dragDrop(b domain.DragDrop) error {
	if len(b.CorrectPlacements) == 0 {
		return errors.New("must have at least 1 correct placement")
	}
	for _, p := range b.CorrectPlacements {
		if !inRange(p.Item, len(b.Items)) || !inRange(p.Zone, len(b.DropZones)) {
			return fmt.Errorf("placement (%d,%d) out of range", p.Item, p.Zone)
		}
	}
	return nil
}

func dropDown(b domain.DropDown) error {
	if len(b.DropDowns) == 0 {
		return errors.New("must have at least 1 dropdown")
	}
	if n := domain.BlankCount(b.Sentence); n != len(b.DropDowns) {
		return fmt.Errorf("sentence has %d blanks but %d dropdowns", n, len(b.DropDowns))
	}
	ids := make(map[string]struct{}, len(b.DropDowns))
	for _, dd := range b.DropDowns {
		if dd.ID == "" {
			return errors.New("dropdown id is required")
		}
		if _, dup := ids[dd.ID]; dup {
			return fmt.Errorf("duplicate dropdown id %q", dd.ID)
		}
		ids[dd.ID] = struct{}{}
		if !inRange(dd.CorrectOption, len(dd.Options)) {
			return fmt.Errorf("dropdown %q correct option %d out of range", dd.ID, dd.CorrectOption)
		}
	}
	return nil
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
