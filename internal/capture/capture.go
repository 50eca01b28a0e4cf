// Package capture turns user interaction into answers. Each function returns
// a complete replacement answer and never modifies its input; none of them
// judge correctness.
package capture

import (
	"sort"
	"strings"

	"quiz-engine/internal/domain"
)

// SelectOption replaces the multiple-choice selection. NoSelection clears it.
func SelectOption(index int) domain.Answer {
	if index < 0 {
		return nil
	}
	return domain.MultipleChoiceAnswer{SelectedOption: index}
}

// SetBlank upserts the text for one blank. Text that is empty after trimming
// removes the blank's entry instead of storing it.
func SetBlank(current domain.FillInBlankAnswer, position int, text string) domain.FillInBlankAnswer {
	next := make([]domain.BlankValue, 0, len(current.Blanks)+1)
	for _, b := range current.Blanks {
		if b.Position != position {
			next = append(next, b)
		}
	}
	if strings.TrimSpace(text) != "" {
		next = append(next, domain.BlankValue{Position: position, Value: text})
	}
	sort.SliceStable(next, func(i, j int) bool { return next[i].Position < next[j].Position })
	return domain.FillInBlankAnswer{Blanks: next}
}

// MatchState is the click state of a match question: the committed pairs
// plus an optional armed left item.
type MatchState struct {
	Answer  domain.MatchAnswer
	Pending *int
}

// ArmLeft marks a left item as pending, replacing any previously armed item.
func (s MatchState) ArmLeft(left int) MatchState {
	l := left
	return MatchState{Answer: s.Answer, Pending: &l}
}

// ClickRight commits (pending, right) and clears pending. Pairs that already
// use the same left or the same right are evicted. Without a pending left the
// click is ignored.
func (s MatchState) ClickRight(right int) MatchState {
	if s.Pending == nil {
		return s
	}
	left := *s.Pending
	next := make([]domain.MatchPair, 0, len(s.Answer.Pairs)+1)
	for _, p := range s.Answer.Pairs {
		if p.LeftID != left && p.RightID != right {
			next = append(next, p)
		}
	}
	next = append(next, domain.MatchPair{LeftID: left, RightID: right})
	return MatchState{Answer: domain.MatchAnswer{Pairs: next}}
}

// Drop places item into zone, evicting any placement that used the item or the zone.
func Drop(current domain.DragDropAnswer, item, zone int) domain.DragDropAnswer {
	next := make([]domain.Placement, 0, len(current.Placements)+1)
	for _, p := range current.Placements {
		if p.ItemID != item && p.ZoneID != zone {
			next = append(next, p)
		}
	}
	next = append(next, domain.Placement{ItemID: item, ZoneID: zone})
	return domain.DragDropAnswer{Placements: next}
}

// SelectDropDown upserts the selection for one sub-dropdown. A negative index
// (NoSelection) removes its entry.
func SelectDropDown(current domain.DropDownAnswer, dropDownID string, index int) domain.DropDownAnswer {
	next := make([]domain.DropDownSelection, 0, len(current.Selections)+1)
	for _, s := range current.Selections {
		if s.DropDownID != dropDownID {
			next = append(next, s)
		}
	}
	if index >= 0 {
		next = append(next, domain.DropDownSelection{DropDownID: dropDownID, Value: index})
	}
	return domain.DropDownAnswer{Selections: next}
}
