package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quiz-engine/internal/domain"
)

func mcQuestion() domain.Question {
	return domain.Question{ID: "mc", Body: domain.MultipleChoice{Options: []string{"A", "B", "A"}, CorrectOption: 2}}
}

func fibQuestion(caseSensitive bool, answers ...string) domain.Question {
	return domain.Question{ID: "fib", Text: "___ and ___", Body: domain.FillInBlank{CorrectAnswers: answers, CaseSensitive: caseSensitive}}
}

func matchQuestion() domain.Question {
	return domain.Question{ID: "match", Body: domain.Match{
		LeftItems:      []string{"dog", "cat", "cow"},
		RightItems:     []string{"meow", "woof", "moo"},
		CorrectMatches: []domain.MatchKey{{Left: 0, Right: 1}, {Left: 1, Right: 0}},
	}}
}

func dragQuestion() domain.Question {
	return domain.Question{ID: "drag", Body: domain.DragDrop{
		Items:             []string{"H2O", "NaCl"},
		DropZones:         []string{"salt", "water"},
		CorrectPlacements: []domain.PlacementKey{{Item: 0, Zone: 1}, {Item: 1, Zone: 0}},
	}}
}

func dropDownQuestion() domain.Question {
	return domain.Question{ID: "dd", Points: 3, Body: domain.DropDown{
		Sentence: "Go has ___ and ___",
		DropDowns: []domain.SubDropDown{
			{ID: "d1", Options: []string{"threads", "goroutines"}, CorrectOption: 1},
			{ID: "d2", Options: []string{"a", "b", "c", "channels"}, CorrectOption: 3},
		},
	}}
}

func blanks(values ...string) domain.FillInBlankAnswer {
	out := domain.FillInBlankAnswer{}
	for i, v := range values {
		out.Blanks = append(out.Blanks, domain.BlankValue{Position: i, Value: v})
	}
	return out
}

func TestMultipleChoiceComparesIndexNotText(t *testing.T) {
	q := mcQuestion()
	assert.False(t, Evaluate(q, domain.MultipleChoiceAnswer{SelectedOption: 0}), "same text at another index must not score")
	assert.True(t, Evaluate(q, domain.MultipleChoiceAnswer{SelectedOption: 2}))
	assert.False(t, Evaluate(q, domain.MultipleChoiceAnswer{SelectedOption: domain.NoSelection}))
	assert.False(t, Evaluate(q, domain.MultipleChoiceAnswer{SelectedOption: 7}))

	broken := domain.Question{Body: domain.MultipleChoice{Options: []string{"A"}, CorrectOption: 4}}
	assert.False(t, Evaluate(broken, domain.MultipleChoiceAnswer{SelectedOption: 4}), "out-of-range key never scores")
}

func TestFillInBlankPositional(t *testing.T) {
	cases := []struct {
		name   string
		q      domain.Question
		answer domain.FillInBlankAnswer
		want   bool
	}{
		{"exact", fibQuestion(false, "salt", "pepper"), blanks("salt", "pepper"), true},
		{"case folded", fibQuestion(false, "Salt", "pepper"), blanks("SALT", "Pepper"), true},
		{"surrounding space ignored", fibQuestion(false, "salt"), blanks("  salt "), true},
		{"case sensitive mismatch", fibQuestion(true, "Salt"), blanks("salt"), false},
		{"case sensitive match", fibQuestion(true, "Salt"), blanks("Salt"), true},
		{"swapped order is wrong", fibQuestion(false, "salt", "pepper"), blanks("pepper", "salt"), false},
		{"missing second blank", fibQuestion(false, "salt", "pepper"), blanks("salt"), false},
		{"extra blank ignored", fibQuestion(false, "salt"), blanks("salt", "sugar"), true},
		{"empty submission", fibQuestion(false, "salt"), domain.FillInBlankAnswer{}, false},
		{"empty key", fibQuestion(false), blanks("salt"), false},
		{"blank positions out of order in slice", fibQuestion(false, "salt", "pepper"), domain.FillInBlankAnswer{Blanks: []domain.BlankValue{
			{Position: 1, Value: "pepper"}, {Position: 0, Value: "salt"},
		}}, true},
		{"duplicate values do not cover other blanks", fibQuestion(false, "salt", "salt"), domain.FillInBlankAnswer{Blanks: []domain.BlankValue{
			{Position: 0, Value: "salt"},
		}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.q, tc.answer))
		})
	}
}

func TestMatchKeyCoverage(t *testing.T) {
	q := matchQuestion()
	withExtra := domain.MatchAnswer{Pairs: []domain.MatchPair{{LeftID: 0, RightID: 1}, {LeftID: 1, RightID: 0}, {LeftID: 2, RightID: 2}}}
	assert.True(t, Evaluate(q, withExtra), "extra pairs are tolerated")

	missing := domain.MatchAnswer{Pairs: []domain.MatchPair{{LeftID: 0, RightID: 1}}}
	assert.False(t, Evaluate(q, missing))

	wrong := domain.MatchAnswer{Pairs: []domain.MatchPair{{LeftID: 0, RightID: 0}, {LeftID: 1, RightID: 1}}}
	assert.False(t, Evaluate(q, wrong))

	assert.False(t, Evaluate(q, domain.MatchAnswer{}))
}

func TestDragDropKeyCoverage(t *testing.T) {
	q := dragQuestion()
	assert.True(t, Evaluate(q, domain.DragDropAnswer{Placements: []domain.Placement{{ItemID: 1, ZoneID: 0}, {ItemID: 0, ZoneID: 1}}}))
	assert.False(t, Evaluate(q, domain.DragDropAnswer{Placements: []domain.Placement{{ItemID: 0, ZoneID: 1}}}))

	broken := dragQuestion()
	key := broken.Body.(domain.DragDrop)
	key.CorrectPlacements = []domain.PlacementKey{{Item: 5, Zone: 0}}
	broken.Body = key
	assert.False(t, Evaluate(broken, domain.DragDropAnswer{Placements: []domain.Placement{{ItemID: 5, ZoneID: 0}}}))
}

func TestDropDownCompleteness(t *testing.T) {
	q := dropDownQuestion()
	partial := domain.DropDownAnswer{Selections: []domain.DropDownSelection{{DropDownID: "d1", Value: 1}}}
	assert.False(t, Evaluate(q, partial), "a missing sub-dropdown fails the question")

	full := domain.DropDownAnswer{Selections: []domain.DropDownSelection{{DropDownID: "d2", Value: 3}, {DropDownID: "d1", Value: 1}}}
	assert.True(t, Evaluate(q, full))
	assert.Equal(t, 3, Score(q, full))

	wrong := domain.DropDownAnswer{Selections: []domain.DropDownSelection{{DropDownID: "d1", Value: 1}, {DropDownID: "d2", Value: 0}}}
	assert.False(t, Evaluate(q, wrong))
	assert.Equal(t, 0, Score(q, wrong))
}

func TestEvaluateIsTotal(t *testing.T) {
	questions := []domain.Question{mcQuestion(), fibQuestion(false, "x"), matchQuestion(), dragQuestion(), dropDownQuestion(), {ID: "no-body"}}
	answers := []domain.Answer{
		nil,
		domain.MultipleChoiceAnswer{},
		domain.MultipleChoiceAnswer{SelectedOption: -5},
		domain.FillInBlankAnswer{},
		domain.FillInBlankAnswer{Blanks: []domain.BlankValue{{Position: -1, Value: ""}}},
		domain.MatchAnswer{},
		domain.MatchAnswer{Pairs: []domain.MatchPair{{LeftID: -1, RightID: 99}}},
		domain.DragDropAnswer{},
		domain.DropDownAnswer{},
		domain.DropDownAnswer{Selections: []domain.DropDownSelection{{DropDownID: "", Value: -1}}},
	}
	for _, q := range questions {
		for _, a := range answers {
			assert.NotPanics(t, func() {
				first := Evaluate(q, a)
				assert.Equal(t, first, Evaluate(q, a), "evaluation must be deterministic")
			})
		}
	}
}

func TestMismatchedKindIsIncorrect(t *testing.T) {
	assert.False(t, Evaluate(mcQuestion(), domain.DropDownAnswer{Selections: []domain.DropDownSelection{{DropDownID: "d1", Value: 2}}}))
	assert.False(t, Evaluate(matchQuestion(), domain.DragDropAnswer{Placements: []domain.Placement{{ItemID: 0, ZoneID: 1}, {ItemID: 1, ZoneID: 0}}}))
}
