package contract

import (
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
)

type Comment struct {
	ID          int64     `json:"id"`
	TodoID      int64     `json:"todo_id"`
	Body        string    `json:"comment"`
	IsAssistant bool      `json:"is_claude_comment"`
	CreatedAt   time.Time `json:"created_at"`
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	Field     string    `json:"field_name"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedAt time.Time `json:"changed_at"`
}

// Attachment omits the server-side path.
type Attachment struct {
	ID        int64     `json:"id"`
	TodoID    int64     `json:"todo_id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"file_type"`
	Size      int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

type Continuation struct {
	OriginalID  int64     `json:"original_todo_id"`
	ContinuedID int64     `json:"continued_todo_id"`
	Reason      string    `json:"reason"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

type Stats struct {
	Total      int                     `json:"total"`
	Overdue    int                     `json:"overdue"`
	ByStatus   map[domain.Status]int   `json:"by_status"`
	ByScope    map[domain.Scope]int    `json:"by_scope"`
	ByPriority map[domain.Priority]int `json:"by_priority"`
}

func FromComments(cs []*domain.Comment) []Comment {
	out := make([]Comment, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromComment(c))
	}
	return out
}

func FromComment(c *domain.Comment) Comment {
	return Comment{ID: c.ID, TodoID: c.TodoID, Body: c.Body, IsAssistant: c.IsAssistant, CreatedAt: c.CreatedAt}
}

func FromHistory(es []*domain.HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(es))
	for _, e := range es {
		out = append(out, HistoryEntry{ID: e.ID, Field: e.Field, OldValue: e.OldValue, NewValue: e.NewValue, ChangedAt: e.ChangedAt})
	}
	return out
}

func FromAttachment(a *domain.Attachment) Attachment {
	return Attachment{ID: a.ID, TodoID: a.TodoID, FileName: a.FileName, MimeType: a.MimeType, Size: a.Size, CreatedAt: a.CreatedAt}
}

func FromAttachments(as []*domain.Attachment) []Attachment {
	out := make([]Attachment, 0, len(as))
	for _, a := range as {
		out = append(out, FromAttachment(a))
	}
	return out
}

func FromContinuations(cs []*domain.Continuation) []Continuation {
	out := make([]Continuation, 0, len(cs))
	for _, c := range cs {
		out = append(out, Continuation{
			OriginalID:  c.OriginalID,
			ContinuedID: c.ContinuedID,
			Reason:      c.Reason,
			Notes:       c.Notes,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out
}

func FromStats(s *domain.Stats) Stats {
	return Stats{Total: s.Total, Overdue: s.Overdue, ByStatus: s.ByStatus, ByScope: s.ByScope, ByPriority: s.ByPriority}
}
