package capture

import (
	"encoding/json"
	"fmt"

	"quiz-engine/internal/domain"
)

// State is the capture state of a single question.
type State struct {
	Answer  domain.Answer
	Pending *int // armed left item, match questions only
}

// Event is one user interaction. The concrete types form a closed set.
type Event interface {
	kind() domain.Kind
}

// OptionSelected picks a multiple-choice option (NoSelection clears).
type OptionSelected struct {
	Index int `json:"index"`
}

// BlankEdited replaces the text of one blank.
type BlankEdited struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// LeftArmed arms a left match item.
type LeftArmed struct {
	Left int `json:"left"`
}

// RightClicked commits a match pair with the armed left item.
type RightClicked struct {
	Right int `json:"right"`
}

// ItemDropped drops an item into a zone.
type ItemDropped struct {
	Item int `json:"item"`
	Zone int `json:"zone"`
}

// DropDownChanged changes one sub-dropdown (NoSelection clears).
type DropDownChanged struct {
	DropDownID string `json:"dropdownId"`
	Index      int    `json:"index"`
}

func (OptionSelected) kind() domain.Kind  { return domain.KindMultipleChoice }
func (BlankEdited) kind() domain.Kind     { return domain.KindFillInBlank }
func (LeftArmed) kind() domain.Kind       { return domain.KindMatch }
func (RightClicked) kind() domain.Kind    { return domain.KindMatch }
func (ItemDropped) kind() domain.Kind     { return domain.KindDragDrop }
func (DropDownChanged) kind() domain.Kind { return domain.KindDropDown }

// Accepts reports whether ev applies to questions of kind k.
func Accepts(k domain.Kind, ev Event) bool {
	return ev != nil && ev.kind() == k
}

// Reduce applies ev to s for a question of kind k. Events for another kind
// leave the state unchanged.
func Reduce(k domain.Kind, s State, ev Event) State {
	if !Accepts(k, ev) {
		return s
	}
	switch e := ev.(type) {
	case OptionSelected:
		return State{Answer: SelectOption(e.Index)}
	case BlankEdited:
		cur, _ := s.Answer.(domain.FillInBlankAnswer)
		next := SetBlank(cur, e.Position, e.Text)
		if len(next.Blanks) == 0 {
			return State{}
		}
		return State{Answer: next}
	case LeftArmed:
		ms := matchState(s).ArmLeft(e.Left)
		return fromMatch(ms)
	case RightClicked:
		ms := matchState(s).ClickRight(e.Right)
		return fromMatch(ms)
	case ItemDropped:
		cur, _ := s.Answer.(domain.DragDropAnswer)
		return State{Answer: Drop(cur, e.Item, e.Zone)}
	case DropDownChanged:
		cur, _ := s.Answer.(domain.DropDownAnswer)
		next := SelectDropDown(cur, e.DropDownID, e.Index)
		if len(next.Selections) == 0 {
			return State{}
		}
		return State{Answer: next}
	default:
		return s
	}
}

func matchState(s State) MatchState {
	cur, _ := s.Answer.(domain.MatchAnswer)
	return MatchState{Answer: cur, Pending: s.Pending}
}

func fromMatch(ms MatchState) State {
	st := State{Pending: ms.Pending}
	if len(ms.Answer.Pairs) > 0 {
		st.Answer = ms.Answer
	}
	return st
}

// DecodeEvent reads {"event": <name>, ...fields} as sent by clients.
func DecodeEvent(data []byte) (Event, error) {
	var head struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var ev Event
	var err error
	switch head.Event {
	case "optionSelected":
		var e OptionSelected
		err = json.Unmarshal(data, &e)
		ev = e
	case "blankEdited":
		var e BlankEdited
		err = json.Unmarshal(data, &e)
		ev = e
	case "leftArmed":
		var e LeftArmed
		err = json.Unmarshal(data, &e)
		ev = e
	case "rightClicked":
		var e RightClicked
		err = json.Unmarshal(data, &e)
		ev = e
	case "itemDropped":
		var e ItemDropped
		err = json.Unmarshal(data, &e)
		ev = e
	case "dropDownChanged":
		var e DropDownChanged
		err = json.Unmarshal(data, &e)
		ev = e
	default:
		return nil, fmt.Errorf("unknown capture event %q", head.Event)
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}
