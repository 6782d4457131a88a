package formatter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
)

// ScopeColors maps a scope to its hex colour; nil uses the default badge.
type ScopeColors map[string]string

func (c ScopeColors) badge(s domain.Scope) string {
	return ScopeBadge(s, c[string(s)])
}

// FormatTodoList renders todos as a table, or a hint when there are none.
func FormatTodoList(todos []*domain.Todo, colors ScopeColors, now time.Time) string {
	if len(todos) == 0 {
		return Dim("No todos found.") + "\n"
	}
	headers := []string{"ID", "TITLE", "STATUS", "PRIORITY", "SCOPE", "DUE", "VERSION"}
	rows := make([][]string, 0, len(todos))
	for _, t := range todos {
		title := Truncate(t.Title, 48)
		if t.HasPlan() {
			title += " " + StyleBlue.Render("[plan]")
		}
		rows = append(rows, []string{
			Dim(fmt.Sprintf("#%d", t.ID)),
			title,
			StatusPill(t.Status),
			PriorityLabel(t.Priority),
			colors.badge(t.Scope),
			DueLabel(t.DueDate, t.Status.IsOpen(), now),
			Dim("v" + t.Version),
		})
	}
	return RenderTable(headers, rows)
}

// FormatTodo renders one todo with its metadata and assistant exchange.
func FormatTodo(t *domain.Todo, colors ScopeColors, now time.Time) string {
	var b strings.Builder
	field := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render(fmt.Sprintf("%-12s", label)), value)
	}

	field("Status", StatusPill(t.Status))
	field("Priority", PriorityLabel(t.Priority))
	field("Scope", colors.badge(t.Scope))
	field("Version", "v"+t.Version)
	if t.ContinuationCount > 0 {
		field("Continued", fmt.Sprintf("%d×", t.ContinuationCount))
	}
	if t.ParentID != nil {
		field("Parent", fmt.Sprintf("#%d", *t.ParentID))
	}
	field("Assigned", t.AssignedTo)
	field("Mode", string(t.AssistantMode))
	field("Directory", t.WorkingDirectory)
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02") + "  " + DueLabel(t.DueDate, t.Status.IsOpen(), now)
		if t.IsOverdue(now) {
			due += " " + StyleRed.Render("overdue")
		}
		field("Due", due)
	}
	if t.EstimatedHours != nil || t.ActualHours != nil {
		field("Hours", FormatHours(t.EstimatedHours)+" est / "+FormatHours(t.ActualHours)+" actual")
	}
	field("Tags", t.Tags)
	if t.HasPlan() {
		plan := "yes"
		if t.PlanningMode {
			plan += " (planning)"
		}
		field("Plan", plan)
	}
	field("Created", HumanTimestamp(t.CreatedAt))
	field("Updated", HumanTimestamp(t.UpdatedAt))
	if t.CompletedAt != nil {
		field("Completed", HumanTimestamp(*t.CompletedAt))
	}

	body := b.String()
	for _, sec := range []struct{ title, text string }{
		{"Description", t.Description},
		{"Notes", t.Notes},
		{"Output", t.Output},
		{"Related files", t.RelatedFiles},
	} {
		if strings.TrimSpace(sec.text) == "" {
			continue
		}
		body += "\n" + Header(sec.title) + "\n" + strings.TrimSpace(sec.text) + "\n"
	}
	if len(t.VersionHistory) > 0 {
		body += "\n" + Header("Versions") + "\n"
		for _, v := range t.VersionHistory {
			body += fmt.Sprintf("%s  %s  %s\n", Bold("v"+v.Version), Truncate(v.Title, 50), StatusPill(v.Status))
		}
	}

	title := fmt.Sprintf("#%d %s", t.ID, t.Title)
	return RenderBox(title, strings.TrimRight(body, "\n")) + "\n"
}

func FormatComments(comments []*domain.Comment) string {
	if len(comments) == 0 {
		return Dim("No comments.") + "\n"
	}
	var b strings.Builder
	for _, c := range comments {
		who := StyleBlue.Render("you")
		if c.IsAssistant {
			who = StylePurple.Render("assistant")
		}
		fmt.Fprintf(&b, "%s %s\n  %s\n", who, Dim(HumanTimestamp(c.CreatedAt)), strings.ReplaceAll(c.Body, "\n", "\n  "))
	}
	return b.String()
}

func FormatHistory(entries []*domain.HistoryEntry) string {
	if len(entries) == 0 {
		return Dim("No changes recorded.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			Dim(e.ChangedAt.Format("2006-01-02 15:04")),
			Bold(e.Field),
			Truncate(e.OldValue, 30),
			Truncate(e.NewValue, 30),
		})
	}
	return RenderTable([]string{"WHEN", "FIELD", "FROM", "TO"}, rows)
}

func FormatContinuations(chain []*domain.Continuation) string {
	if len(chain) == 0 {
		return Dim("Not continued yet.") + "\n"
	}
	rows := make([][]string, 0, len(chain))
	for _, c := range chain {
		rows = append(rows, []string{
			fmt.Sprintf("#%d → #%d", c.OriginalID, c.ContinuedID),
			Truncate(c.Reason, 40),
			Dim(HumanDate(c.CreatedAt)),
		})
	}
	return RenderTable([]string{"LINK", "REASON", "WHEN"}, rows)
}

// FormatStats renders the dashboard counters, statuses in lifecycle order
// and scopes by descending count.
func FormatStats(s *domain.Stats, colors ScopeColors) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", Bold("Total"), s.Total)
	if s.Overdue > 0 {
		fmt.Fprintf(&b, "  %s", StyleRed.Render(fmt.Sprintf("%d overdue", s.Overdue)))
	}
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(domain.Statuses))
	for _, st := range domain.Statuses {
		rows = append(rows, []string{StatusPill(st), fmt.Sprintf("%d", s.ByStatus[st])})
	}
	b.WriteString(RenderTable([]string{"STATUS", "COUNT"}, rows))

	if len(s.ByScope) > 0 {
		scopes := make([]domain.Scope, 0, len(s.ByScope))
		for sc := range s.ByScope {
			scopes = append(scopes, sc)
		}
		sort.Slice(scopes, func(i, j int) bool {
			if s.ByScope[scopes[i]] != s.ByScope[scopes[j]] {
				return s.ByScope[scopes[i]] > s.ByScope[scopes[j]]
			}
			return scopes[i] < scopes[j]
		})
		rows = rows[:0]
		for _, sc := range scopes {
			rows = append(rows, []string{colors.badge(sc), fmt.Sprintf("%d", s.ByScope[sc])})
		}
		b.WriteString("\n" + RenderTable([]string{"SCOPE", "COUNT"}, rows))
	}
	return b.String()
}
