package plan

import (
	"errors"
	"fmt"
)

// ListField names one of the list-valued sections of a Structure.
type ListField string

const (
	FieldGoals        ListField = "goals"
	FieldRequirements ListField = "requirements"
	FieldSteps        ListField = "steps"
	FieldRisks        ListField = "risks"
)

// ListFields is every list field in render order.
var ListFields = []ListField{FieldGoals, FieldRequirements, FieldSteps, FieldRisks}

// ParseListField maps a field name to its ListField.
func ParseListField(s string) (ListField, error) {
	for _, f := range ListFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Ordered reports whether item order carries meaning for the field.
func (f ListField) Ordered() bool { return f == FieldSteps }

// Direction is the way MoveItem shifts an item.
type Direction int

const (
	Up Direction = iota
	Down
)

var (
	ErrUnknownField       = errors.New("unknown plan field")
	ErrPositionOutOfRange = errors.New("position out of range")
)

// NumberedStep pairs a step with its displayed 1-based position.
type NumberedStep struct {
	Number int
	Text   string
}

func (s *Structure) list(f ListField) *[]string {
	switch f {
	case FieldGoals:
		return &s.Goals
	case FieldRequirements:
		return &s.Requirements
	case FieldSteps:
		return &s.Steps
	case FieldRisks:
		return &s.Risks
	}
	return nil
}

// Items returns the current entries of a list field.
func (s *Structure) Items(f ListField) []string {
	if l := s.list(f); l != nil {
		return *l
	}
	return nil
}

// AppendItem adds an empty entry at the end of the field so the editor can
// fill it in.
func (s *Structure) AppendItem(f ListField) error {
	l := s.list(f)
	if l == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	*l = append(*l, "")
	return nil
}

// SetItem replaces the entry at pos (0-based).
func (s *Structure) SetItem(f ListField, pos int, text string) error {
	l := s.list(f)
	if l == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if pos < 0 || pos >= len(*l) {
		return fmt.Errorf("%s item %d of %d: %w", f, pos+1, len(*l), ErrPositionOutOfRange)
	}
	(*l)[pos] = text
	return nil
}

// RemoveItem deletes the entry at pos (0-based). Later entries shift down,
// so step numbers stay contiguous.
func (s *Structure) RemoveItem(f ListField, pos int) error {
	l := s.list(f)
	if l == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if pos < 0 || pos >= len(*l) {
		return fmt.Errorf("%s item %d of %d: %w", f, pos+1, len(*l), ErrPositionOutOfRange)
	}
	items := *l
	out := make([]string, 0, len(items)-1)
	out = append(out, items[:pos]...)
	*l = append(out, items[pos+1:]...)
	return nil
}

// MoveItem swaps the entry at pos with its neighbour in dir. Moving the
// first entry up or the last entry down does nothing.
func (s *Structure) MoveItem(f ListField, pos int, dir Direction) error {
	l := s.list(f)
	if l == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	items := *l
	if pos < 0 || pos >= len(items) {
		return fmt.Errorf("%s item %d of %d: %w", f, pos+1, len(items), ErrPositionOutOfRange)
	}
	target := pos - 1
	if dir == Down {
		target = pos + 1
	}
	if target < 0 || target >= len(items) {
		return nil
	}
	items[pos], items[target] = items[target], items[pos]
	return nil
}

// NumberedSteps returns the steps with their 1-based display numbers.
func (s Structure) NumberedSteps() []NumberedStep {
	out := make([]NumberedStep, len(s.Steps))
	for i, step := range s.Steps {
		out[i] = NumberedStep{Number: i + 1, Text: step}
	}
	return out
}
