package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskdeck/internal/config"
	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/remote"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/alexanderramin/taskdeck/internal/service"
	"github.com/alexanderramin/taskdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	commands []string
	fail     error
}

func (e *stubExecutor) Run(_ context.Context, command string) (string, error) {
	e.commands = append(e.commands, command)
	if e.fail != nil {
		return "", e.fail
	}
	if strings.Contains(command, "has-session") {
		return remote.StateRunning, nil
	}
	return "", nil
}

type cliEnv struct {
	app     *App
	todos   *repository.SQLiteTodoRepo
	exec    *stubExecutor
	shotDir string
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *cliEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	todos := repository.NewSQLiteTodoRepo(database)
	attachDir := t.TempDir()
	shotDir := t.TempDir()
	exec := &stubExecutor{}

	app := &App{
		Todos: service.NewTodoService(todos, repository.NewSQLiteCommentRepo(database),
			repository.NewSQLiteHistoryRepo(database), uow, attachDir),
		Plans:       service.NewPlanService(todos, uow),
		Continues:   service.NewContinueService(todos, repository.NewSQLiteContinuationRepo(database), uow),
		Remote:      service.NewRemoteService(remote.NewController(exec, "claude"), todos),
		Attachments: service.NewAttachmentService(repository.NewSQLiteAttachmentRepo(database), todos, attachDir),
		Screenshots: service.NewScreenshotService([]string{shotDir}),
		Now:         func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	return &cliEnv{app: app, todos: todos, exec: exec, shotDir: shotDir}
}

func (e *cliEnv) seed(t *testing.T, title string, opts ...testutil.TodoOption) *domain.Todo {
	t.Helper()
	todo := testutil.NewTestTodo(title, opts...)
	require.NoError(t, e.todos.Create(context.Background(), todo))
	return todo
}

func (e *cliEnv) get(t *testing.T, id int64) *domain.Todo {
	t.Helper()
	todo, err := e.todos.GetByID(context.Background(), id)
	require.NoError(t, err)
	return todo
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestTodoAdd_FlagsAndDefaults(t *testing.T) {
	env := testApp(t)

	out, err := executeCmd(t, env.app, "todo", "add", "Fix", "login", "--scope", "backend", "-p", "high", "--due", "2026-03-05", "--estimate", "1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Created todo #1 Fix login (v1.00)")

	todo := env.get(t, 1)
	assert.Equal(t, domain.ScopeBackend, todo.Scope)
	assert.Equal(t, domain.PriorityHigh, todo.Priority)
	assert.Equal(t, domain.StatusPending, todo.Status)
	require.NotNil(t, todo.DueDate)
	require.NotNil(t, todo.EstimatedHours)
	assert.Equal(t, 1.5, *todo.EstimatedHours)
}

func TestTodoAdd_RequiresTitleWhenNotInteractive(t *testing.T) {
	env := testApp(t)
	_, err := executeCmd(t, env.app, "todo", "add")
	assert.EqualError(t, err, "title is required")

	_, err = executeCmd(t, env.app, "todo", "add", "x", "--due", "tomorrow")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTodoListAndShow(t *testing.T) {
	env := testApp(t)
	a := env.seed(t, "Write docs", testutil.WithScope(domain.ScopeContent))
	env.seed(t, "Tune queries", testutil.WithScope(domain.ScopeDatabase))

	out, err := executeCmd(t, env.app, "todo", "list", "--scope", "content")
	require.NoError(t, err)
	assert.Contains(t, out, "Write docs")
	assert.NotContains(t, out, "Tune queries")

	out, err = executeCmd(t, env.app, "todo", "list", "--json", "--search", "tune")
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Tune queries"`)

	out, err = executeCmd(t, env.app, "todo", "show", "#"+itoa(a.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "WRITE DOCS")

	_, err = executeCmd(t, env.app, "todo", "show", "999")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = executeCmd(t, env.app, "todo", "show", "abc")
	assert.EqualError(t, err, `invalid id "abc"`)
}

func TestTodoUpdate_OnlyChangedFlags(t *testing.T) {
	env := testApp(t)
	todo := env.seed(t, "Old", testutil.WithDescription("keep me"), testutil.WithPriority(domain.PriorityLow))

	_, err := executeCmd(t, env.app, "todo", "update", itoa(todo.ID), "--title", "New", "--dir", "/srv/app")
	require.NoError(t, err)

	got := env.get(t, todo.ID)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "/srv/app", got.WorkingDirectory)
	assert.Equal(t, "keep me", got.Description)
	assert.Equal(t, domain.PriorityLow, got.Priority)

	out, err := executeCmd(t, env.app, "todo", "history", itoa(todo.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "title")
}

func TestTodoSetStatusAndBulk(t *testing.T) {
	env := testApp(t)
	a := env.seed(t, "A")
	b := env.seed(t, "B")

	_, err := executeCmd(t, env.app, "todo", "set", itoa(a.ID), "priority", "critical")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityCritical, env.get(t, a.ID).Priority)

	_, err = executeCmd(t, env.app, "todo", "set", itoa(a.ID), "tags", "x")
	assert.ErrorIs(t, err, domain.ErrValidation)

	out, err := executeCmd(t, env.app, "todo", "status", itoa(a.ID), "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed")

	_, err = executeCmd(t, env.app, "todo", "status", itoa(a.ID), "blocked")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	out, err = executeCmd(t, env.app, "todo", "bulk", "block", itoa(a.ID)+","+itoa(b.ID), "404")
	require.NoError(t, err)
	assert.Contains(t, out, "block: 1 affected")
	assert.Equal(t, domain.StatusBlocked, env.get(t, b.ID).Status)
}

func TestTodoRemove(t *testing.T) {
	env := testApp(t)
	todo := env.seed(t, "Gone")

	out, err := executeCmd(t, env.app, "todo", "rm", itoa(todo.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted todo")

	_, err = env.todos.GetByID(context.Background(), todo.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTodoNextOutputComplete(t *testing.T) {
	env := testApp(t)

	out, err := executeCmd(t, env.app, "todo", "next")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing pending")

	todo := env.seed(t, "Assistant work", testutil.WithAssignee(domain.AssigneeAssistant))
	out, err = executeCmd(t, env.app, "todo", "next", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "in_progress"`)

	_, err = executeCmd(t, env.app, "todo", "output", itoa(todo.ID), "step", "one")
	require.NoError(t, err)
	assert.Contains(t, env.get(t, todo.ID).Output, "step one")

	_, err = executeCmd(t, env.app, "todo", "complete", itoa(todo.ID), "--hours", "-1")
	assert.Error(t, err)

	_, err = executeCmd(t, env.app, "todo", "complete", itoa(todo.ID), "--notes", "done", "--hours", "2")
	require.NoError(t, err)
	got := env.get(t, todo.ID)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.ActualHours)
	assert.Equal(t, 2.0, *got.ActualHours)
}

func TestTodoComments(t *testing.T) {
	env := testApp(t)
	todo := env.seed(t, "Talk")

	_, err := executeCmd(t, env.app, "todo", "comment", itoa(todo.ID), "looks", "good", "--assistant")
	require.NoError(t, err)

	out, err := executeCmd(t, env.app, "todo", "comments", itoa(todo.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "assistant")
	assert.Contains(t, out, "looks good")
}

func TestTodoStats(t *testing.T) {
	env := testApp(t)
	env.seed(t, "a")
	env.seed(t, "b", testutil.WithStatus(domain.StatusCompleted))

	out, err := executeCmd(t, env.app, "todo", "stats", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 2`)
}

func TestPlanCommands(t *testing.T) {
	env := testApp(t)
	todo := env.seed(t, "Plan me")
	id := itoa(todo.ID)

	_, err := executeCmd(t, env.app, "plan", "set", id, "--title", "Rollout", "--timeline", "Q2")
	require.NoError(t, err)

	for _, step := range []string{"first", "second", "third"} {
		_, err = executeCmd(t, env.app, "plan", "item", "add", id, "steps", step)
		require.NoError(t, err)
	}
	out, err := executeCmd(t, env.app, "plan", "item", "move", id, "steps", "2", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "2. third")

	_, err = executeCmd(t, env.app, "plan", "item", "rm", id, "steps", "0")
	require.NoError(t, err)

	out, err = executeCmd(t, env.app, "plan", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Rollout")
	assert.Contains(t, out, "1. third")
	assert.Contains(t, out, "2. second")
	assert.NotContains(t, out, "first")

	_, err = executeCmd(t, env.app, "plan", "item", "rm", id, "steps", "9")
	assert.Error(t, err)
	_, err = executeCmd(t, env.app, "plan", "item", "add", id, "timeline", "x")
	assert.Error(t, err)

	out, err = executeCmd(t, env.app, "plan", "view", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Rollout")
	assert.NotContains(t, out, "<h1")
}

func TestPlanExportImport(t *testing.T) {
	env := testApp(t)
	src := env.seed(t, "Source")
	dst := env.seed(t, "Target")

	_, err := executeCmd(t, env.app, "plan", "item", "add", itoa(src.ID), "goals", "ship")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "plan.json")
	_, err = executeCmd(t, env.app, "plan", "export", itoa(src.ID), "-o", file)
	require.NoError(t, err)

	_, err = executeCmd(t, env.app, "plan", "import", itoa(dst.ID), file)
	require.NoError(t, err)
	assert.Contains(t, env.get(t, dst.ID).PlanHTML, "ship")

	html := filepath.Join(t.TempDir(), "plan.html")
	require.NoError(t, os.WriteFile(html, []byte("<p>custom <b>markup</b></p>"), 0o644))
	_, err = executeCmd(t, env.app, "plan", "import", itoa(dst.ID), html, "--html")
	require.NoError(t, err)
	assert.Equal(t, "<p>custom <b>markup</b></p>", env.get(t, dst.ID).PlanHTML)

	out, err := executeCmd(t, env.app, "plan", "export", itoa(dst.ID), "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"exported_at"`)
}

func TestContinueCommands(t *testing.T) {
	env := testApp(t)
	todo := env.seed(t, "Build API", testutil.WithStatus(domain.StatusCompleted), testutil.WithVersion("1.99"))

	out, err := executeCmd(t, env.app, "continue", itoa(todo.ID), "--prompt-only", "--reason", "tests fail")
	require.NoError(t, err)
	assert.Contains(t, out, "tests fail")
	assert.Equal(t, domain.StatusCompleted, env.get(t, todo.ID).Status)

	out, err = executeCmd(t, env.app, "continue", itoa(todo.ID), "--new", "--reason", "tests fail")
	require.NoError(t, err)
	assert.Contains(t, out, "(v2.00)")

	out, err = executeCmd(t, env.app, "chain", itoa(todo.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "tests fail")

	out, err = executeCmd(t, env.app, "followup", itoa(todo.ID), "--requirements", "add paging")
	require.NoError(t, err)
	assert.Contains(t, out, "Follow-up: Build API")
}

func TestRemoteCommands(t *testing.T) {
	env := testApp(t)
	todo := env.seed(t, "Remote")

	out, err := executeCmd(t, env.app, "remote", "send")
	require.NoError(t, err)
	assert.Contains(t, out, remote.DefaultCommand)

	_, err = executeCmd(t, env.app, "remote", "trigger", itoa(todo.ID))
	require.NoError(t, err)

	_, err = executeCmd(t, env.app, "remote", "trigger", "999")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	env.exec.fail = assert.AnError
	out, err = executeCmd(t, env.app, "remote", "status")
	assert.ErrorIs(t, err, errRemoteFailed)
	assert.Contains(t, out, assert.AnError.Error())
}

func TestAttachAndScreenshots(t *testing.T) {
	env := testApp(t)
	todo := env.seed(t, "Files")

	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	out, err := executeCmd(t, env.app, "attach", "add", itoa(todo.ID), file)
	require.NoError(t, err)
	assert.Contains(t, out, "Attached notes.txt")

	out, err = executeCmd(t, env.app, "attach", "list", itoa(todo.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "5 B")

	shot := filepath.Join(env.shotDir, "screen.png")
	require.NoError(t, os.WriteFile(shot, []byte("png"), 0o644))

	out, err = executeCmd(t, env.app, "screenshots", "list", "-s", "SCREEN")
	require.NoError(t, err)
	assert.Contains(t, out, "screen.png")

	_, err = executeCmd(t, env.app, "screenshots", "rm", shot)
	require.NoError(t, err)
	_, statErr := os.Stat(shot)
	assert.True(t, os.IsNotExist(statErr))

	_, err = executeCmd(t, env.app, "screenshots", "rm", file)
	assert.ErrorIs(t, err, service.ErrForbiddenPath)
}

func TestNextVersionAndServe(t *testing.T) {
	env := testApp(t)

	out, err := executeCmd(t, env.app, "next-version", "1.99")
	require.NoError(t, err)
	assert.Equal(t, "2.00\n", out)

	_, err = executeCmd(t, env.app, "serve")
	assert.EqualError(t, err, "serving is not configured")

	var gotAddr string
	env.app.ListenAddr = ":9000"
	env.app.Serve = func(_ context.Context, addr string) error {
		gotAddr = addr
		return nil
	}
	_, err = executeCmd(t, env.app, "serve")
	require.NoError(t, err)
	assert.Equal(t, ":9000", gotAddr)
}

func TestSettingsInit(t *testing.T) {
	env := testApp(t)
	path := filepath.Join(t.TempDir(), "conf", "settings.yaml")
	env.app.SettingsPath = path
	env.app.Settings = config.Settings{
		DirectoryPresets: []config.DirectoryPreset{{Name: "shop", Path: "/var/www/shop"}},
		ScreenshotDirs:   []string{"/tmp/shots"},
		ScopeColors:      map[string]string{"other": "#7f8c8d"},
	}

	out, err := executeCmd(t, env.app, "settings", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	loaded, err := config.LoadSettings(path, config.Settings{})
	require.NoError(t, err)
	assert.Equal(t, env.app.Settings.DirectoryPresets, loaded.DirectoryPresets)
	assert.Equal(t, []string{"/tmp/shots"}, loaded.ScreenshotDirs)

	_, err = executeCmd(t, env.app, "settings", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = executeCmd(t, env.app, "settings", "init", "--force")
	assert.NoError(t, err)

	out, err = executeCmd(t, env.app, "settings", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}
