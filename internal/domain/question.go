package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags the closed set of question and answer shapes.
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindFillInBlank    Kind = "fill_in_blank"
	KindMatch          Kind = "match"
	KindDragDrop       Kind = "drag_drop"
	KindDropDown       Kind = "drop_down"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindMultipleChoice, KindFillInBlank, KindMatch, KindDragDrop, KindDropDown}

// Valid reports whether k is one of the five supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMultipleChoice, KindFillInBlank, KindMatch, KindDragDrop, KindDropDown:
		return true
	}
	return false
}

// BlankMarker separates the text around a blank in prompts and drop-down sentences.
const BlankMarker = "___"

// BlankCount returns how many blanks s contains.
func BlankCount(s string) int {
	return strings.Count(s, BlankMarker)
}

// Question is one quiz item. Body holds the kind-specific answer key.
type Question struct {
	ID        string
	Text      string
	TimeLimit int // seconds, 0 means default
	Points    int // 0 means 1
	Body      QuestionBody
}

// QuestionBody is implemented only by the five kind-specific key types.
type QuestionBody interface {
	Kind() Kind
	isQuestionBody()
}

// Kind returns the tag of the question's body, or "" when the body is missing.
func (q Question) Kind() Kind {
	if q.Body == nil {
		return ""
	}
	return q.Body.Kind()
}

// EffectivePoints returns the points awarded for a correct answer.
func (q Question) EffectivePoints() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// EffectiveTimeLimit returns the per-question budget in seconds, falling back
// to def (or DefaultQuestionTime when def is not positive) for an unset limit.
func (q Question) EffectiveTimeLimit(def int) int {
	if q.TimeLimit <= 0 {
		if def <= 0 {
			return DefaultQuestionTime
		}
		return def
	}
	return q.TimeLimit
}

// MultipleChoice keys a single correct option by index.
type MultipleChoice struct {
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// FillInBlank keys the accepted text per blank position.
type FillInBlank struct {
	CorrectAnswers []string `json:"correct_answers"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty"`
}

// MatchKey pairs a left item index with a right item index.
type MatchKey struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Match keys pairs between two columns.
type Match struct {
	LeftItems      []string   `json:"left_items"`
	RightItems     []string   `json:"right_items"`
	CorrectMatches []MatchKey `json:"correct_matches"`
}

// PlacementKey pairs an item index with a zone index.
type PlacementKey struct {
	Item int `json:"item"`
	Zone int `json:"zone"`
}

// DragDrop keys where each item belongs.
type DragDrop struct {
	Items             []string       `json:"items"`
	DropZones         []string       `json:"drop_zones"`
	CorrectPlacements []PlacementKey `json:"correct_placements"`
}

// SubDropDown is one select box embedded in a drop-down sentence.
type SubDropDown struct {
	ID            string   `json:"id"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// DropDown keys one option per embedded select box.
type DropDown struct {
	Sentence  string        `json:"sentence"`
	DropDowns []SubDropDown `json:"dropdowns"`
}

func (MultipleChoice) Kind() Kind { return KindMultipleChoice }
func (FillInBlank) Kind() Kind    { return KindFillInBlank }
func (Match) Kind() Kind          { return KindMatch }
func (DragDrop) Kind() Kind       { return KindDragDrop }
func (DropDown) Kind() Kind       { return KindDropDown }

func (MultipleChoice) isQuestionBody() {}
func (FillInBlank) isQuestionBody()    {}
func (Match) isQuestionBody()          {}
func (DragDrop) isQuestionBody()       {}
func (DropDown) isQuestionBody()       {}

// questionHeader holds the fields every kind shares on the wire.
type questionHeader struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Type      Kind   `json:"type"`
	TimeLimit int    `json:"time_limit,omitempty"`
	Points    int    `json:"points,omitempty"`
}

// MarshalJSON writes the flat, "type"-discriminated form.
func (q Question) MarshalJSON() ([]byte, error) {
	h := questionHeader{ID: q.ID, Text: q.Text, Type: q.Kind(), TimeLimit: q.TimeLimit, Points: q.Points}
	switch b := q.Body.(type) {
	case MultipleChoice:
		return json.Marshal(struct {
			questionHeader
			MultipleChoice
		}{h, b})
	case FillInBlank:
		return json.Marshal(struct {
			questionHeader
			FillInBlank
		}{h, b})
	case Match:
		return json.Marshal(struct {
			questionHeader
			Match
		}{h, b})
	case DragDrop:
		return json.Marshal(struct {
			questionHeader
			DragDrop
		}{h, b})
	case DropDown:
		return json.Marshal(struct {
			questionHeader
			DropDown
		}{h, b})
	default:
		return nil, fmt.Errorf("question %q: %w", q.ID, ErrUnknownKind)
	}
}

// UnmarshalJSON reads the flat form and rejects unknown tags.
func (q *Question) UnmarshalJSON(data []byte) error {
	var h questionHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	var body QuestionBody
	switch h.Type {
	case KindMultipleChoice:
		var b MultipleChoice
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		body = b
	case KindFillInBlank:
		var b FillInBlank
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		body = b
	case KindMatch:
		var b Match
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		body = b
	case KindDragDrop:
		var b DragDrop
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		body = b
	case KindDropDown:
		var b DropDown
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		body = b
	default:
		return fmt.Errorf("question %q type %q: %w", h.ID, h.Type, ErrUnknownKind)
	}
	*q = Question{ID: h.ID, Text: h.Text, TimeLimit: h.TimeLimit, Points: h.Points, Body: body}
	return nil
}
