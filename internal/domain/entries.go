package domain

import "time"

// HistoryEntry records one field change on a todo.
type HistoryEntry struct {
	ID        int64
	TodoID    int64
	Field     string
	OldValue  string
	NewValue  string
	ChangedAt time.Time
}

type Comment struct {
	ID          int64
	TodoID      int64
	Body        string
	IsAssistant bool
	CreatedAt   time.Time
}

// Attachment is a file uploaded to a todo. StoredName is unique within the
// todo's directory; FileName is what the user uploaded.
type Attachment struct {
	ID         int64
	TodoID     int64
	FileName   string
	StoredName string
	Path       string
	MimeType   string
	Size       int64
	CreatedAt  time.Time
}

// Continuation links a todo to the follow-up created from it.
type Continuation struct {
	ID          int64
	OriginalID  int64
	ContinuedID int64
	Reason      string
	Notes       string
	CreatedAt   time.Time
}

type Stats struct {
	Total      int
	Overdue    int
	ByStatus   map[Status]int
	ByScope    map[Scope]int
	ByPriority map[Priority]int
}
