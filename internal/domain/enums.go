package domain

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusBlocked, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsOpen reports whether work on the todo is still expected.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusBlocked
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// Rank orders priorities from 1 (low) to 4 (critical); unknown values rank 0.
func (p Priority) Rank() int {
	for i, v := range Priorities {
		if p == v {
			return i + 1
		}
	}
	return 0
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type Scope string

const (
	ScopeFrontend  Scope = "frontend"
	ScopeBackend   Scope = "backend"
	ScopeDatabase  Scope = "database"
	ScopeN8n       Scope = "n8n"
	ScopeMT5       Scope = "mt5"
	ScopeServer    Scope = "server"
	ScopeContent   Scope = "content"
	ScopeSEO       Scope = "seo"
	ScopeAnalytics Scope = "analytics"
	ScopeOther     Scope = "other"
)

var Scopes = []Scope{
	ScopeFrontend, ScopeBackend, ScopeDatabase, ScopeN8n, ScopeMT5,
	ScopeServer, ScopeContent, ScopeSEO, ScopeAnalytics, ScopeOther,
}

func (s Scope) Valid() bool {
	for _, v := range Scopes {
		if s == v {
			return true
		}
	}
	return false
}

// AssistantMode controls how the coding assistant runs a todo.
type AssistantMode string

const (
	ModeBypass  AssistantMode = "bypass"
	ModePlan    AssistantMode = "plan"
	ModeDefault AssistantMode = "default"
)

func (m AssistantMode) Valid() bool {
	return m == ModeBypass || m == ModePlan || m == ModeDefault
}

// AssigneeAssistant is the assignee that the assistant polls for.
const AssigneeAssistant = "claude"

type BulkAction string

const (
	BulkDelete   BulkAction = "delete"
	BulkComplete BulkAction = "complete"
	BulkReset    BulkAction = "reset"
	BulkBlock    BulkAction = "block"
)

func (a BulkAction) Valid() bool {
	return a == BulkDelete || a == BulkComplete || a == BulkReset || a == BulkBlock
}
