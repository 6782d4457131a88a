package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/taskdeck/internal/db"
	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/plan"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/alexanderramin/taskdeck/internal/version"
)

// ContinuedPrefix marks the title of a todo created by continuing another.
const ContinuedPrefix = "[CONTINUED] "

const noteTimeLayout = "2006-01-02 15:04:05"

type continueService struct {
	todos         repository.TodoRepo
	continuations repository.ContinuationRepo
	uow           db.UnitOfWork
	observer      UseCaseObserver
}

func NewContinueService(
	todos repository.TodoRepo,
	continuations repository.ContinuationRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ContinueService {
	return &continueService{
		todos:         todos,
		continuations: continuations,
		uow:           uow,
		observer:      useCaseObserverOrNoop(observers),
	}
}

func (req ContinueRequest) validate() error {
	var problems []string
	if strings.TrimSpace(req.Reason) == "" {
		problems = append(problems, "reason is required")
	}
	if strings.TrimSpace(req.Notes) == "" {
		problems = append(problems, "notes are required")
	}
	if req.Mode != "" && !req.Mode.Valid() {
		problems = append(problems, fmt.Sprintf("invalid assistant mode %q", req.Mode))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (req ContinueRequest) mode() domain.AssistantMode {
	switch {
	case req.Mode != "":
		return req.Mode
	case req.PlanMode:
		return domain.ModePlan
	}
	return domain.ModeBypass
}

// Continue either derives the next version of a todo or reopens it in
// place. Every write happens in one transaction.
func (s *continueService) Continue(ctx context.Context, id int64, req ContinueRequest) (result *ContinueResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"id": id, "create_new": req.CreateNew}
	defer func() {
		if result != nil && result.Continued != nil {
			fields["continued_id"] = result.Continued.ID
			fields["version"] = result.Continued.Version
		}
		report(ctx, s.observer, "continue-todo", startedAt, fields, err)
	}()

	if err = req.validate(); err != nil {
		return nil, err
	}

	res := &ContinueResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTodos := repository.NewSQLiteTodoRepo(tx)
		original, err := txTodos.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req.CreateNew {
			return s.continueAsNew(ctx, tx, original, req, startedAt, res)
		}
		return s.continueInPlace(ctx, tx, original, req, startedAt, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *continueService) continueAsNew(ctx context.Context, tx db.DBTX, original *domain.Todo, req ContinueRequest, now time.Time, res *ContinueResult) error {
	txTodos := repository.NewSQLiteTodoRepo(tx)

	next := successor(original, req, now)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := txTodos.Create(ctx, next); err != nil {
		return err
	}
	if err := repository.NewSQLiteContinuationRepo(tx).Create(ctx, &domain.Continuation{
		OriginalID:  original.ID,
		ContinuedID: next.ID,
		Reason:      strings.TrimSpace(req.Reason),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
	}); err != nil {
		return err
	}
	if err := txTodos.IncrementContinuations(ctx, original.ID); err != nil {
		return err
	}
	if err := recordChange(ctx, repository.NewSQLiteHistoryRepo(tx), original.ID, "continued_as",
		"", fmt.Sprintf("#%d (v%s)", next.ID, next.Version), now); err != nil {
		return err
	}
	original.ContinuationCount++

	res.Original = original
	res.Continued = next
	res.Prompt = BuildPrompt(withHistory(original, next.VersionHistory), req)
	return nil
}

func (s *continueService) continueInPlace(ctx context.Context, tx db.DBTX, original *domain.Todo, req ContinueRequest, now time.Time, res *ContinueResult) error {
	before := *original
	if err := reopen(original, now); err != nil {
		return err
	}
	stamp := now.Format(noteTimeLayout)
	original.Notes = appendLine(original.Notes,
		fmt.Sprintf("[%s] Continued: %s\n%s", stamp, strings.TrimSpace(req.Reason), strings.TrimSpace(req.Notes)))
	if req.HighPriority && original.Priority.Rank() < domain.PriorityHigh.Rank() {
		original.Priority = domain.PriorityHigh
	}
	if req.Mode != "" || req.PlanMode {
		original.AssistantMode = req.mode()
	}
	if req.PlanMode {
		original.PlanningMode = true
	}
	original.UpdatedAt = now

	if err := repository.NewSQLiteTodoRepo(tx).Update(ctx, original); err != nil {
		return err
	}
	if _, err := recordChanges(ctx, repository.NewSQLiteHistoryRepo(tx), &before, original, now); err != nil {
		return err
	}
	res.Original = original
	res.Prompt = BuildPrompt(original, req)
	return nil
}

// reopen moves a todo to in_progress, passing through pending when it was
// already closed.
func reopen(t *domain.Todo, now time.Time) error {
	if domain.Transition(t.Status, domain.StatusInProgress) != nil {
		if err := t.SetStatus(domain.StatusPending, now); err != nil {
			return err
		}
	}
	return t.SetStatus(domain.StatusInProgress, now)
}

// successor builds the next version of original.
func successor(original *domain.Todo, req ContinueRequest, now time.Time) *domain.Todo {
	priority := original.Priority
	if req.HighPriority {
		priority = domain.PriorityHigh
	}
	history := make([]domain.VersionEntry, 0, len(original.VersionHistory)+1)
	history = append(history, original.VersionHistory...)
	history = append(history, original.Snapshot())
	sortVersionHistory(history)

	parentID := original.ID
	current := original.Version
	if strings.TrimSpace(current) == "" {
		current = version.Initial.String()
	}
	return &domain.Todo{
		Title:            ContinuedPrefix + strings.TrimPrefix(original.Title, ContinuedPrefix),
		Description:      continuedDescription(original, req),
		Scope:            original.Scope,
		Status:           domain.StatusPending,
		Priority:         priority,
		WorkingDirectory: original.WorkingDirectory,
		AssignedTo:       domain.AssigneeAssistant,
		AssistantMode:    req.mode(),
		RelatedFiles:     original.RelatedFiles,
		Tags:             original.Tags,
		PlanningMode:     req.PlanMode,
		Version:          version.Next(current),
		VersionHistory:   history,
		ParentID:         &parentID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func continuedDescription(original *domain.Todo, req ContinueRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== CONTINUATION OF TODO #%d ===\n\n", original.ID)
	fmt.Fprintf(&b, "REASON: %s\n\n", strings.TrimSpace(req.Reason))
	fmt.Fprintf(&b, "NEW REQUIREMENTS:\n%s\n\n", strings.TrimSpace(req.Notes))
	if c := strings.TrimSpace(req.Context); c != "" {
		fmt.Fprintf(&b, "ADDITIONAL CONTEXT:\n%s\n\n", c)
	}
	b.WriteString("=== ORIGINAL DESCRIPTION ===\n")
	b.WriteString(original.Description)
	return b.String()
}

// sortVersionHistory orders entries oldest version first. Entries with the
// same version keep their recorded order.
func sortVersionHistory(entries []domain.VersionEntry) {
	slices.SortStableFunc(entries, func(a, b domain.VersionEntry) int {
		va, vb := version.Parse(a.Version), version.Parse(b.Version)
		switch {
		case va.Less(vb):
			return -1
		case vb.Less(va):
			return 1
		}
		return 0
	})
}

func withHistory(t *domain.Todo, history []domain.VersionEntry) *domain.Todo {
	c := *t
	c.VersionHistory = history
	return &c
}

func (s *continueService) Prompt(ctx context.Context, id int64, req ContinueRequest) (string, error) {
	t, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return BuildPrompt(t, req), nil
}

// BuildPrompt renders the instructions handed to the assistant when work on
// t continues.
func BuildPrompt(t *domain.Todo, req ContinueRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Todo #%d: %s\n\n", t.ID, t.Title)

	if req.PlanMode {
		b.WriteString("IMPORTANT: this is a PLANNING session.\n")
		b.WriteString("- Do not change any files\n")
		b.WriteString("- Analyse and plan only\n")
		b.WriteString("- Deliver the result as a structured HTML report\n\n")
	}

	fmt.Fprintf(&b, "CURRENT TASK:\n%s\n\n", strings.TrimSpace(req.Notes))
	if r := strings.TrimSpace(req.Reason); r != "" {
		fmt.Fprintf(&b, "REASON FOR CONTINUING:\n%s\n\n", r)
	}
	if c := strings.TrimSpace(req.Context); c != "" {
		fmt.Fprintf(&b, "ADDITIONAL CONTEXT:\n%s\n\n", c)
	}
	if n := strings.TrimSpace(t.Notes); n != "" {
		fmt.Fprintf(&b, "HISTORY SO FAR:\n%s\n\n", n)
	}
	fmt.Fprintf(&b, "ORIGINAL DESCRIPTION:\n%s\n\n", t.Description)

	fmt.Fprintf(&b, "WORKING DIRECTORY: %s\n", t.WorkingDirectory)
	fmt.Fprintf(&b, "PRIORITY: %s\n", t.Priority)
	fmt.Fprintf(&b, "SCOPE: %s\n", t.Scope)

	if f := strings.TrimSpace(t.RelatedFiles); f != "" {
		fmt.Fprintf(&b, "\nRELATED FILES:\n%s\n", f)
	}
	if len(t.VersionHistory) > 0 {
		b.WriteString("\n--- VERSION HISTORY ---\n")
		for _, v := range t.VersionHistory {
			fmt.Fprintf(&b, "\nVersion %s (%s):\n", v.Version, v.CreatedAt.UTC().Format(noteTimeLayout))
			fmt.Fprintf(&b, "Title: %s\n", v.Title)
			fmt.Fprintf(&b, "Prompt: %s\n", truncate(v.Prompt, 200))
			if out := strings.TrimSpace(v.Output); out != "" {
				fmt.Fprintf(&b, "Result: %s\n", truncate(out, 200))
			}
			fmt.Fprintf(&b, "Status: %s\n", v.Status)
			b.WriteString(strings.Repeat("-", 50))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func appendLine(existing, line string) string {
	if strings.TrimSpace(existing) == "" {
		return line
	}
	return existing + "\n" + line
}

// Followup starts a fresh todo that carries the context, notes and
// optionally the plan of an existing one.
func (s *continueService) Followup(ctx context.Context, id int64, req FollowupRequest) (created *domain.Todo, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"parent_id": id}
	defer func() {
		if created != nil {
			fields["id"] = created.ID
		}
		report(ctx, s.observer, "followup-todo", startedAt, fields, err)
	}()

	parent, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	title := domain.CoalesceStr(strings.TrimSpace(req.Title), "Follow-up: "+parent.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "=== CONTEXT FROM TODO #%d ===\n\n", parent.ID)
	fmt.Fprintf(&b, "Original title: %s\n", parent.Title)
	fmt.Fprintf(&b, "Original description:\n%s\n\n", parent.Description)
	if req.IncludePlan && parent.HasPlan() {
		fmt.Fprintf(&b, "=== PLAN ===\n\n%s\n\n", plan.PlainText(parent.PlanHTML))
	}
	if n := strings.TrimSpace(parent.Notes); n != "" {
		fmt.Fprintf(&b, "=== ASSISTANT NOTES ===\n\n%s\n\n", n)
	}
	fmt.Fprintf(&b, "=== NEW REQUIREMENTS ===\n\n%s", strings.TrimSpace(req.Requirements))

	parentID := parent.ID
	t := &domain.Todo{
		Title:            title,
		Description:      b.String(),
		Scope:            parent.Scope,
		Status:           domain.StatusPending,
		Priority:         parent.Priority,
		WorkingDirectory: parent.WorkingDirectory,
		AssignedTo:       domain.AssigneeAssistant,
		AssistantMode:    parent.AssistantMode,
		PlanningMode:     req.ContinuePlanning,
		Version:          version.Initial.String(),
		ParentID:         &parentID,
		CreatedAt:        startedAt,
		UpdatedAt:        startedAt,
	}
	if t.AssistantMode == "" {
		t.AssistantMode = domain.ModeBypass
	}
	if err = t.Validate(); err != nil {
		return nil, err
	}
	if err = s.todos.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Chain lists the todos continued from id, oldest first.
func (s *continueService) Chain(ctx context.Context, id int64) ([]*domain.Continuation, error) {
	if _, err := s.todos.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.continuations.ListByOriginal(ctx, id)
}
