package domain

import (
	"encoding/json"
	"fmt"
)

// NoSelection marks "nothing selected" for multiple-choice and drop-down capture.
const NoSelection = -1

// Answer is implemented only by the five kind-specific answer shapes.
// An Answer is interpreted against a question of the same Kind only.
type Answer interface {
	Kind() Kind
	isAnswer()
}

// MultipleChoiceAnswer holds the selected option index.
type MultipleChoiceAnswer struct {
	SelectedOption int `json:"selected_option"`
}

// BlankValue is the text typed into one blank.
type BlankValue struct {
	Position int    `json:"blank_id"`
	Value    string `json:"value"`
}

// FillInBlankAnswer holds one entry per answered blank, ordered by position.
type FillInBlankAnswer struct {
	Blanks []BlankValue `json:"blank_res"`
}

// MatchPair links a left item to a right item.
type MatchPair struct {
	LeftID  int `json:"left_id"`
	RightID int `json:"right_id"`
}

// MatchAnswer holds the committed pairs.
type MatchAnswer struct {
	Pairs []MatchPair `json:"matched_pairs"`
}

// Placement puts an item into a zone.
type Placement struct {
	ItemID int `json:"item_id"`
	ZoneID int `json:"zone_id"`
}

// DragDropAnswer holds the committed placements.
type DragDropAnswer struct {
	Placements []Placement `json:"drop_placements"`
}

// DropDownSelection is the chosen option for one sub-dropdown.
type DropDownSelection struct {
	DropDownID string `json:"dropdown_id"`
	Value      int    `json:"value"`
}

// DropDownAnswer holds one selection per chosen sub-dropdown.
type DropDownAnswer struct {
	Selections []DropDownSelection `json:"dropdown_res"`
}

func (MultipleChoiceAnswer) Kind() Kind { return KindMultipleChoice }
func (FillInBlankAnswer) Kind() Kind    { return KindFillInBlank }
func (MatchAnswer) Kind() Kind          { return KindMatch }
func (DragDropAnswer) Kind() Kind       { return KindDragDrop }
func (DropDownAnswer) Kind() Kind       { return KindDropDown }

func (MultipleChoiceAnswer) isAnswer() {}
func (FillInBlankAnswer) isAnswer()    {}
func (MatchAnswer) isAnswer()          {}
func (DragDropAnswer) isAnswer()       {}
func (DropDownAnswer) isAnswer()       {}

// MarshalAnswer writes {"type": <kind>, <shape fields>}.
func MarshalAnswer(a Answer) ([]byte, error) {
	type tag struct {
		Type Kind `json:"type"`
	}
	switch v := a.(type) {
	case MultipleChoiceAnswer:
		return json.Marshal(struct {
			tag
			MultipleChoiceAnswer
		}{tag{v.Kind()}, v})
	case FillInBlankAnswer:
		return json.Marshal(struct {
			tag
			FillInBlankAnswer
		}{tag{v.Kind()}, v})
	case MatchAnswer:
		return json.Marshal(struct {
			tag
			MatchAnswer
		}{tag{v.Kind()}, v})
	case DragDropAnswer:
		return json.Marshal(struct {
			tag
			DragDropAnswer
		}{tag{v.Kind()}, v})
	case DropDownAnswer:
		return json.Marshal(struct {
			tag
			DropDownAnswer
		}{tag{v.Kind()}, v})
	default:
		return nil, ErrUnknownKind
	}
}

// UnmarshalAnswer reads the tagged form produced by MarshalAnswer.
func UnmarshalAnswer(data []byte) (Answer, error) {
	var tag struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}
	switch tag.Type {
	case KindMultipleChoice:
		a := MultipleChoiceAnswer{SelectedOption: NoSelection}
		err := json.Unmarshal(data, &a)
		return a, err
	case KindFillInBlank:
		var a FillInBlankAnswer
		err := json.Unmarshal(data, &a)
		return a, err
	case KindMatch:
		var a MatchAnswer
		err := json.Unmarshal(data, &a)
		return a, err
	case KindDragDrop:
		var a DragDropAnswer
		err := json.Unmarshal(data, &a)
		return a, err
	case KindDropDown:
		var a DropDownAnswer
		err := json.Unmarshal(data, &a)
		return a, err
	default:
		return nil, fmt.Errorf("answer type %q: %w", tag.Type, ErrUnknownKind)
	}
}
