package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdeck/internal/plan"
)

// FormatPlan renders a plan structure for the terminal. List items carry
// their zero-based position so they can be addressed by the item commands.
func FormatPlan(s plan.Structure) string {
	if s.IsEmpty() {
		return Dim("No plan yet.") + "\n"
	}
	var b strings.Builder
	if s.Title != "" {
		b.WriteString(Bold(s.Title) + "\n")
	}
	for _, f := range plan.ListFields {
		items := s.Items(f)
		if len(items) == 0 {
			continue
		}
		b.WriteString("\n" + Header(string(f)) + "\n")
		for i, item := range items {
			marker := "•"
			if f.Ordered() {
				marker = fmt.Sprintf("%d.", i+1)
			}
			fmt.Fprintf(&b, "%s %s %s\n", Dim(fmt.Sprintf("[%d]", i)), marker, item)
		}
	}
	if len(s.Notes) > 0 {
		b.WriteString("\n" + Header("notes") + "\n" + s.NotesText() + "\n")
	}
	if s.Timeline != "" {
		b.WriteString("\n" + Header("timeline") + "\n" + s.Timeline + "\n")
	}
	if s.UserFeedback != "" {
		b.WriteString("\n" + Header("feedback") + "\n" + s.UserFeedback + "\n")
	}
	return b.String()
}
