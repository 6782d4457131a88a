package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/remote"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/alexanderramin/taskdeck/internal/service"
	"github.com/alexanderramin/taskdeck/internal/testutil"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okExecutor struct {
	commands []string
}

func (e *okExecutor) Run(_ context.Context, command string) (string, error) {
	e.commands = append(e.commands, command)
	if strings.Contains(command, "has-session") {
		return remote.StateRunning, nil
	}
	return "", nil
}

type testServer struct {
	handler        http.Handler
	todos          *repository.SQLiteTodoRepo
	exec           *okExecutor
	screenshotDir  string
	attachmentsDir string
}

func newTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	todos := repository.NewSQLiteTodoRepo(database)
	attachDir := t.TempDir()
	shotDir := t.TempDir()
	exec := &okExecutor{}

	svc := Services{
		Todos: service.NewTodoService(todos, repository.NewSQLiteCommentRepo(database),
			repository.NewSQLiteHistoryRepo(database), uow, attachDir),
		Plans:       service.NewPlanService(todos, uow),
		Continues:   service.NewContinueService(todos, repository.NewSQLiteContinuationRepo(database), uow),
		Remote:      service.NewRemoteService(remote.NewController(exec, "claude"), todos),
		Attachments: service.NewAttachmentService(repository.NewSQLiteAttachmentRepo(database), todos, attachDir),
		Screenshots: service.NewScreenshotService([]string{shotDir}),
	}
	return &testServer{
		handler:        NewServer(svc, apiKey, nil).Handler(),
		todos:          todos,
		exec:           exec,
		screenshotDir:  shotDir,
		attachmentsDir: attachDir,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func (ts *testServer) seed(t *testing.T, title string, opts ...testutil.TodoOption) *domain.Todo {
	t.Helper()
	todo := testutil.NewTestTodo(title, opts...)
	require.NoError(t, ts.todos.Create(context.Background(), todo))
	return todo
}

// decode unwraps the response envelope into data.
func decode(t *testing.T, w *httptest.ResponseRecorder, data any) bool {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Success
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	assert.False(t, decode(t, w, &body))
	return body.Message
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "secret")
	w := ts.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	ts := newTestServer(t, "secret")

	w := ts.do(t, "GET", "/api/todos", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("GET", "/api/todos", nil)
	req.Header.Set(APIKeyHeader, "secret")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTodoCRUD(t *testing.T) {
	ts := newTestServer(t, "")

	w := ts.do(t, "POST", "/api/todos", map[string]any{
		"title":    "Write docs",
		"scope":    "content",
		"priority": "high",
		"due_date": "2030-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID       int64  `json:"id"`
		Status   string `json:"status"`
		Version  string `json:"version"`
		DueDate  string `json:"due_date"`
		Priority string `json:"priority"`
	}
	assert.True(t, decode(t, w, &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "1.00", created.Version)
	assert.Equal(t, "2030-01-15", created.DueDate)

	path := "/api/todos/" + itoa(created.ID)
	w = ts.do(t, "PUT", path, map[string]any{"title": "Write better docs"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated struct {
		Title    string `json:"title"`
		Priority string `json:"priority"`
		DueDate  string `json:"due_date"`
	}
	decode(t, w, &updated)
	assert.Equal(t, "Write better docs", updated.Title)
	assert.Equal(t, "high", updated.Priority, "fields missing from the body are kept")
	assert.Equal(t, "2030-01-15", updated.DueDate)

	w = ts.do(t, "GET", "/api/todos?scope=content", nil)
	var list []map[string]any
	decode(t, w, &list)
	assert.Len(t, list, 1)

	w = ts.do(t, "GET", path+"/history", nil)
	var history []map[string]any
	decode(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "title", history[0]["field_name"])

	w = ts.do(t, "DELETE", path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, "GET", path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t, "")
	done := ts.seed(t, "Done", testutil.WithStatus(domain.StatusCompleted))
	path := "/api/todos/" + itoa(done.ID)

	w := ts.do(t, "POST", "/api/todos", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "title is required")

	w = ts.do(t, "POST", "/api/todos", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "POST", path+"/status", map[string]string{"status": "blocked"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, "GET", "/api/todos?order=random", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "GET", "/api/todos?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "GET", "/api/todos/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, body := range []string{
		`{"mode":`,
		`{"mode":"structured","structure":{"goals":"notalist"}}`,
		`{"mode":"bogus"}`,
	} {
		w = ts.do(t, "POST", path+"/plan", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.NotEqual(t, "internal error", errorMessage(t, w), body)
	}
}

func TestQuickEditBulkAndNext(t *testing.T) {
	ts := newTestServer(t, "")
	a := ts.seed(t, "a", testutil.WithPriority(domain.PriorityLow))
	b := ts.seed(t, "b")

	w := ts.do(t, "POST", "/api/todos/"+itoa(a.ID)+"/quick-edit", map[string]string{"field": "priority", "value": "critical"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, "GET", "/api/todos/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var next struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	decode(t, w, &next)
	assert.Equal(t, a.ID, next.ID)
	assert.Equal(t, "in_progress", next.Status)

	w = ts.do(t, "POST", "/api/todos/bulk", map[string]any{"action": "complete", "ids": []int64{a.ID, b.ID, 404}})
	require.Equal(t, http.StatusOK, w.Code)
	var res service.BulkResult
	decode(t, w, &res)
	assert.Equal(t, []int64{a.ID, b.ID}, res.Affected)
	assert.Equal(t, []int64{404}, res.Skipped)

	w = ts.do(t, "GET", "/api/stats", nil)
	var stats struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	decode(t, w, &stats)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.ByStatus["completed"])
}

func TestCommentsOutputAndComplete(t *testing.T) {
	ts := newTestServer(t, "")
	todo := ts.seed(t, "Chat", testutil.WithStatus(domain.StatusInProgress))
	path := "/api/todos/" + itoa(todo.ID)

	w := ts.do(t, "POST", path+"/comments", map[string]any{"comment": "on it", "from_assistant": true})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, "GET", path+"/comments", nil)
	var comments []map[string]any
	decode(t, w, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, true, comments[0]["is_claude_comment"])

	w = ts.do(t, "POST", path+"/output", map[string]string{"output": "step 1 done"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "POST", path+"/complete", map[string]any{"notes": "shipped", "actual_hours": 1.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var done struct {
		Status string `json:"status"`
		Output string `json:"assistant_output"`
	}
	decode(t, w, &done)
	assert.Equal(t, "completed", done.Status)
	assert.Equal(t, "step 1 done", done.Output)
}

func TestPlanEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	todo := ts.seed(t, "Planned")
	path := "/api/todos/" + itoa(todo.ID) + "/plan"

	w := ts.do(t, "POST", path, map[string]any{
		"mode":      "structured",
		"structure": map[string]any{"title": "Rollout", "steps": []string{"one", "", "two"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var editor service.PlanEditor
	decode(t, w, &editor)
	assert.Equal(t, []string{"one", "two"}, editor.Structure.Steps)
	assert.True(t, editor.PlanningMode)

	w = ts.do(t, "POST", path, map[string]any{"mode": "markdown"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "POST", path, map[string]any{"mode": "html", "html": "<h2>Goals</h2><ul><li>g</li></ul>"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &editor)
	assert.Equal(t, []string{"g"}, editor.Structure.Goals)

	w = ts.do(t, "GET", path+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "plan_planned_")
	assert.Contains(t, w.Body.String(), `"goals"`)

	w = ts.do(t, "GET", path+"/view", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<li>g</li>")

	w = ts.do(t, "POST", "/api/plan/preview", map[string]any{"title": "Draft", "goals": []string{"x"}})
	require.Equal(t, http.StatusOK, w.Code)
	var preview struct {
		HTML string `json:"html"`
	}
	decode(t, w, &preview)
	assert.Contains(t, preview.HTML, "<title>Draft</title>")
}

func TestContinueEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	todo := ts.seed(t, "Feature", testutil.WithVersion("1.99"))
	path := "/api/todos/" + itoa(todo.ID)

	w := ts.do(t, "POST", path+"/continue", map[string]any{"reason": "bug", "notes": "fix it", "create_new": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Continued struct {
			ID      int64  `json:"id"`
			Version string `json:"version"`
			Parent  *int64 `json:"parent_todo_id"`
		} `json:"continued"`
		Prompt string `json:"prompt"`
	}
	decode(t, w, &res)
	assert.Equal(t, "2.00", res.Continued.Version)
	require.NotNil(t, res.Continued.Parent)
	assert.Equal(t, todo.ID, *res.Continued.Parent)
	assert.Contains(t, res.Prompt, "--- VERSION HISTORY ---")

	w = ts.do(t, "GET", path+"/continuations", nil)
	var chain []map[string]any
	decode(t, w, &chain)
	assert.Len(t, chain, 1)

	w = ts.do(t, "POST", path+"/continue", map[string]any{"reason": "", "notes": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "POST", path+"/continue/prompt", map[string]any{"notes": "look again", "plan_mode": true})
	require.Equal(t, http.StatusOK, w.Code)
	var prompt struct {
		Prompt string `json:"prompt"`
	}
	decode(t, w, &prompt)
	assert.Contains(t, prompt.Prompt, "PLANNING session")

	w = ts.do(t, "POST", path+"/followup", map[string]any{"requirements": "next part"})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAttachmentEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	todo := ts.seed(t, "Files")
	path := "/api/todos/" + itoa(todo.ID) + "/attachments"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "report.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("a,b\n1,2\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var att struct {
		ID       int64  `json:"id"`
		FileName string `json:"file_name"`
		Size     int64  `json:"file_size"`
	}
	decode(t, w, &att)
	assert.Equal(t, "report.csv", att.FileName)
	assert.Equal(t, int64(8), att.Size)

	w = ts.do(t, "GET", "/api/attachments/"+itoa(att.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a,b\n1,2\n", w.Body.String())

	w = ts.do(t, "POST", path, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, "DELETE", "/api/attachments/"+itoa(att.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, "GET", path, nil)
	var list []map[string]any
	decode(t, w, &list)
	assert.Empty(t, list)
}

func TestScreenshotEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	shot := filepath.Join(ts.screenshotDir, "error.png")
	require.NoError(t, os.WriteFile(shot, []byte("png"), 0o644))

	w := ts.do(t, "GET", "/api/screenshots?search=ERR", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var shots []service.Screenshot
	decode(t, w, &shots)
	require.Len(t, shots, 1)
	assert.Equal(t, shot, shots[0].Path)

	w = ts.do(t, "GET", "/api/screenshots/file?path="+shot, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())

	outside := filepath.Join(t.TempDir(), "x.png")
	require.NoError(t, os.WriteFile(outside, []byte("png"), 0o644))
	w = ts.do(t, "DELETE", "/api/screenshots", map[string]string{"filepath": outside})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.FileExists(t, outside)

	w = ts.do(t, "DELETE", "/api/screenshots", map[string]string{"filepath": shot})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NoFileExists(t, shot)
}

func TestRemoteEndpoints(t *testing.T) {
	ts := newTestServer(t, "")
	todo := ts.seed(t, "Remote")

	w := ts.do(t, "POST", "/api/todos/"+itoa(todo.ID)+"/trigger", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res remote.SendResult
	decode(t, w, &res)
	assert.Equal(t, remote.TriggerCommand(todo.ID), res.Command)

	w = ts.do(t, "POST", "/api/todos/404/trigger", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, "GET", "/api/remote/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, "POST", "/api/remote/send", map[string]string{"command": "ls"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, ts.exec.commands, `tmux send-keys -t "claude:0" "ls" Enter`)
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/todos/7", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "7"})
	id, err := pathID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	req = mux.SetURLVars(req, map[string]string{"id": "0"})
	_, err = pathID(req, "id")
	assert.ErrorIs(t, err, errBadRequest)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
