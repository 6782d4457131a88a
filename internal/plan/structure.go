// Package plan converts between the HTML plan document stored on a todo and
// the typed Structure the structured editor works with.
package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Structure is the editable form of a todo's implementation plan. It only
// exists while a plan is being edited; storage always holds HTML.
type Structure struct {
	Title        string     `json:"title"`
	Goals        []string   `json:"goals"`
	Requirements []string   `json:"requirements"`
	Steps        []string   `json:"steps"`
	Risks        []string   `json:"risks"`
	Notes        []string   `json:"notes"`
	Timeline     string     `json:"timeline"`
	UserFeedback string     `json:"user_feedback"`
	ExportedAt   *time.Time `json:"exported_at,omitempty"`
}

// Empty returns a structure whose lists are empty (not nil) and whose text
// fields are empty strings.
func Empty() Structure {
	return Structure{
		Goals:        []string{},
		Requirements: []string{},
		Steps:        []string{},
		Risks:        []string{},
		Notes:        []string{},
	}
}

// IsEmpty reports whether every field is blank.
func (s Structure) IsEmpty() bool {
	return strings.TrimSpace(s.Title) == "" &&
		len(compact(s.Goals)) == 0 &&
		len(compact(s.Requirements)) == 0 &&
		len(compact(s.Steps)) == 0 &&
		len(compact(s.Risks)) == 0 &&
		len(compact(s.Notes)) == 0 &&
		strings.TrimSpace(s.Timeline) == "" &&
		strings.TrimSpace(s.UserFeedback) == ""
}

// Normalize trims every value and drops list entries that are empty after
// trimming. It is applied before a structured plan is saved.
func (s *Structure) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Goals = compact(s.Goals)
	s.Requirements = compact(s.Requirements)
	s.Steps = compact(s.Steps)
	s.Risks = compact(s.Risks)
	s.Notes = compact(s.Notes)
	s.Timeline = strings.TrimSpace(s.Timeline)
	s.UserFeedback = strings.TrimSpace(s.UserFeedback)
}

// NotesText flattens the notes into one block, separated by blank lines.
func (s Structure) NotesText() string {
	return strings.Join(s.Notes, "\n\n")
}

// SetNotesText replaces the notes with the paragraphs of text.
func (s *Structure) SetNotesText(text string) {
	s.Notes = splitParagraphs(text)
}

// Clone returns a deep copy so that edits on the copy leave s untouched.
func (s Structure) Clone() Structure {
	c := s
	c.Goals = append([]string{}, s.Goals...)
	c.Requirements = append([]string{}, s.Requirements...)
	c.Steps = append([]string{}, s.Steps...)
	c.Risks = append([]string{}, s.Risks...)
	c.Notes = append([]string{}, s.Notes...)
	if s.ExportedAt != nil {
		t := *s.ExportedAt
		c.ExportedAt = &t
	}
	return c
}

// UnmarshalJSON accepts notes either as an array of paragraphs or as a single
// blank-line separated string, which is what editor forms post.
func (s *Structure) UnmarshalJSON(data []byte) error {
	type alias Structure
	aux := struct {
		*alias
		Notes json.RawMessage `json:"notes"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.Notes = nil
	raw := strings.TrimSpace(string(aux.Notes))
	if raw == "" || raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal(aux.Notes, &s.Notes); err != nil {
			return fmt.Errorf("decoding notes: %w", err)
		}
		return nil
	}
	var text string
	if err := json.Unmarshal(aux.Notes, &text); err != nil {
		return fmt.Errorf("decoding notes: %w", err)
	}
	s.SetNotesText(text)
	return nil
}

// compact trims every line of each item and drops items left empty.
// Whitespace inside a line is kept.
func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := trimLines(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// splitParagraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paras []string
	var cur []string
	flush := func() {
		if p := strings.TrimSpace(strings.Join(cur, "\n")); p != "" {
			paras = append(paras, p)
		}
		cur = cur[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	if paras == nil {
		return []string{}
	}
	return paras
}

func trimLines(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
