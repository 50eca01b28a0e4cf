// Package grading judges answers against question keys and folds the verdicts
// of an attempt into a result. Every function here is total: malformed,
// missing or mismatched input yields "incorrect", never an error or panic.
package grading

import (
	"strings"

	"quiz-engine/internal/domain"
)

// Evaluate reports whether a answers q correctly.
func Evaluate(q domain.Question, a domain.Answer) bool {
	if a == nil || q.Body == nil {
		return false
	}
	switch key := q.Body.(type) {
	case domain.MultipleChoice:
		ans, ok := a.(domain.MultipleChoiceAnswer)
		return ok && evalMultipleChoice(key, ans)
	case domain.FillInBlank:
		ans, ok := a.(domain.FillInBlankAnswer)
		return ok && evalFillInBlank(key, ans)
	case domain.Match:
		ans, ok := a.(domain.MatchAnswer)
		return ok && evalMatch(key, ans)
	case domain.DragDrop:
		ans, ok := a.(domain.DragDropAnswer)
		return ok && evalDragDrop(key, ans)
	case domain.DropDown:
		ans, ok := a.(domain.DropDownAnswer)
		return ok && evalDropDown(key, ans)
	default:
		return false
	}
}

// Score returns the points awarded for a: the question's points when correct, else 0.
func Score(q domain.Question, a domain.Answer) int {
	if Evaluate(q, a) {
		return q.EffectivePoints()
	}
	return 0
}

// Options are compared by index so that duplicate option text cannot score.
func evalMultipleChoice(key domain.MultipleChoice, ans domain.MultipleChoiceAnswer) bool {
	if !inRange(key.CorrectOption, len(key.Options)) {
		return false
	}
	return ans.SelectedOption == key.CorrectOption
}

// Blank i must hold CorrectAnswers[i]. Blanks past the key are ignored.
func evalFillInBlank(key domain.FillInBlank, ans domain.FillInBlankAnswer) bool {
	if len(key.CorrectAnswers) == 0 {
		return false
	}
	submitted := make(map[int]string, len(ans.Blanks))
	for _, b := range ans.Blanks {
		if _, seen := submitted[b.Position]; !seen {
			submitted[b.Position] = b.Value
		}
	}
	for i, want := range key.CorrectAnswers {
		got, ok := submitted[i]
		if !ok || !textMatches(want, got, key.CaseSensitive) {
			return false
		}
	}
	return true
}

func textMatches(want, got string, caseSensitive bool) bool {
	want, got = strings.TrimSpace(want), strings.TrimSpace(got)
	if got == "" {
		return false
	}
	if caseSensitive {
		return want == got
	}
	return strings.EqualFold(want, got)
}

// Every key pair must be submitted; extra pairs are tolerated.
func evalMatch(key domain.Match, ans domain.MatchAnswer) bool {
	if len(key.CorrectMatches) == 0 {
		return false
	}
	submitted := make(map[domain.MatchPair]struct{}, len(ans.Pairs))
	for _, p := range ans.Pairs {
		submitted[p] = struct{}{}
	}
	for _, k := range key.CorrectMatches {
		if !inRange(k.Left, len(key.LeftItems)) || !inRange(k.Right, len(key.RightItems)) {
			return false
		}
		if _, ok := submitted[domain.MatchPair{LeftID: k.Left, RightID: k.Right}]; !ok {
			return false
		}
	}
	return true
}

// Same coverage rule as evalMatch over (item, zone).
func evalDragDrop(key domain.DragDrop, ans domain.DragDropAnswer) bool {
	if len(key.CorrectPlacements) == 0 {
		return false
	}
	submitted := make(map[domain.Placement]struct{}, len(ans.Placements))
	for _, p := range ans.Placements {
		submitted[p] = struct{}{}
	}
	for _, k := range key.CorrectPlacements {
		if !inRange(k.Item, len(key.Items)) || !inRange(k.Zone, len(key.DropZones)) {
			return false
		}
		if _, ok := submitted[domain.Placement{ItemID: k.Item, ZoneID: k.Zone}]; !ok {
			return false
		}
	}
	return true
}

// Every sub-dropdown needs an entry equal to its key. The first entry per ID wins.
func evalDropDown(key domain.DropDown, ans domain.DropDownAnswer) bool {
	if len(key.DropDowns) == 0 {
		return false
	}
	for _, dd := range key.DropDowns {
		if !inRange(dd.CorrectOption, len(dd.Options)) {
			return false
		}
		found := false
		for _, sel := range ans.Selections {
			if sel.DropDownID == dd.ID {
				found = sel.Value == dd.CorrectOption
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
