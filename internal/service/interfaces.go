package service

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/plan"
	"github.com/alexanderramin/taskdeck/internal/remote"
	"github.com/alexanderramin/taskdeck/internal/repository"
)

type TodoService interface {
	Create(ctx context.Context, t *domain.Todo) error
	Get(ctx context.Context, id int64) (*domain.Todo, error)
	List(ctx context.Context, f repository.ListFilter) ([]*domain.Todo, error)
	Update(ctx context.Context, t *domain.Todo) error
	QuickEdit(ctx context.Context, id int64, field, value string) (*domain.Todo, error)
	SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.Todo, error)
	Bulk(ctx context.Context, action domain.BulkAction, ids []int64) (*BulkResult, error)
	Delete(ctx context.Context, id int64) error
	NextForAssistant(ctx context.Context) (*domain.Todo, error)
	AppendOutput(ctx context.Context, id int64, output string) error
	Complete(ctx context.Context, id int64, req CompleteRequest) (*domain.Todo, error)
	Comment(ctx context.Context, id int64, body string, fromAssistant bool) (*domain.Comment, error)
	Comments(ctx context.Context, id int64) ([]*domain.Comment, error)
	History(ctx context.Context, id int64) ([]*domain.HistoryEntry, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

// BulkResult reports which todos a bulk action touched. Skipped holds ids
// that do not exist or cannot make the requested transition.
type BulkResult struct {
	Action   domain.BulkAction `json:"action"`
	Affected []int64           `json:"affected"`
	Skipped  []int64           `json:"skipped"`
}

// CompleteRequest is what the assistant reports when it finishes a todo.
type CompleteRequest struct {
	Notes       string   `json:"notes"`
	Output      string   `json:"output"`
	ActualHours *float64 `json:"actual_hours"`
}

type PlanService interface {
	OpenEditor(ctx context.Context, id int64) (*PlanEditor, error)
	Preview(s plan.Structure) string
	Save(ctx context.Context, id int64, p plan.Payload) (*domain.Todo, error)
	Export(ctx context.Context, id int64) (*PlanExport, error)
	Edit(ctx context.Context, id int64, fn func(*plan.Structure) error) (*domain.Todo, error)
	View(ctx context.Context, id int64) (string, error)
}

// PlanEditor is the state an editor starts from.
type PlanEditor struct {
	TodoID       int64          `json:"todo_id"`
	Structure    plan.Structure `json:"structure"`
	HTML         string         `json:"html"`
	PlanningMode bool           `json:"planning_mode"`
	SavedAt      *time.Time     `json:"saved_at,omitempty"`
}

type PlanExport struct {
	Filename string
	Data     []byte
}

type ContinueService interface {
	Continue(ctx context.Context, id int64, req ContinueRequest) (*ContinueResult, error)
	Prompt(ctx context.Context, id int64, req ContinueRequest) (string, error)
	Followup(ctx context.Context, id int64, req FollowupRequest) (*domain.Todo, error)
	Chain(ctx context.Context, id int64) ([]*domain.Continuation, error)
}

// ContinueRequest carries what the operator wants done next with a todo.
type ContinueRequest struct {
	Reason       string               `json:"reason"`
	Notes        string               `json:"notes"`
	Context      string               `json:"context"`
	CreateNew    bool                 `json:"create_new"`
	PlanMode     bool                 `json:"plan_mode"`
	HighPriority bool                 `json:"high_priority"`
	Mode         domain.AssistantMode `json:"mode"`
}

type ContinueResult struct {
	Original  *domain.Todo `json:"original"`
	Continued *domain.Todo `json:"continued,omitempty"`
	Prompt    string       `json:"prompt"`
}

// FollowupRequest starts a new todo that carries a todo's context and plan.
type FollowupRequest struct {
	Title            string `json:"title"`
	Requirements     string `json:"requirements"`
	IncludePlan      bool   `json:"include_plan"`
	ContinuePlanning bool   `json:"continue_planning"`
}

type RemoteService interface {
	Send(ctx context.Context, command string) remote.SendResult
	Trigger(ctx context.Context, id int64) (remote.SendResult, error)
	Status(ctx context.Context) remote.StatusResult
	Test(ctx context.Context) remote.TestResult
}

type AttachmentService interface {
	Upload(ctx context.Context, todoID int64, fileName string, content io.Reader) (*domain.Attachment, error)
	Get(ctx context.Context, id int64) (*domain.Attachment, error)
	List(ctx context.Context, todoID int64) ([]*domain.Attachment, error)
	Delete(ctx context.Context, id int64) error
}

type ScreenshotService interface {
	List(ctx context.Context, dir, search string) ([]Screenshot, error)
	Open(path string) (*Screenshot, error)
	Delete(ctx context.Context, path string) error
}

// Screenshot is an image file found in one of the screenshot directories.
type Screenshot struct {
	Name      string    `json:"filename"`
	Path      string    `json:"filepath"`
	Dir       string    `json:"directory"`
	Size      int64     `json:"size"`
	SizeLabel string    `json:"size_label"`
	Modified  time.Time `json:"modified"`
	Extension string    `json:"extension"`
	MimeType  string    `json:"mime_type"`
}
