package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskdeck/internal/contract"
	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/alexanderramin/taskdeck/internal/service"
)

// listFilter reads the todo list query string.
func listFilter(r *http.Request) (repository.ListFilter, error) {
	q := r.URL.Query()
	f := repository.ListFilter{
		Status:           domain.Status(q.Get("status")),
		Scope:            domain.Scope(q.Get("scope")),
		Priority:         domain.Priority(q.Get("priority")),
		AssignedTo:       q.Get("assigned_to"),
		WorkingDirectory: q.Get("working_directory"),
		Search:           strings.TrimSpace(q.Get("search")),
		OrderBy:          q.Get("order"),
		Ascending:        strings.EqualFold(q.Get("dir"), "asc"),
	}
	ints := []struct {
		key string
		dst *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}}
	for _, it := range ints {
		raw := q.Get(it.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, fmt.Errorf("%w: invalid %s %q", errBadRequest, it.key, raw)
		}
		*it.dst = n
	}
	if raw := q.Get("parent"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("%w: invalid parent %q", errBadRequest, raw)
		}
		f.ParentID = &id
	}
	return f, nil
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	f, err := listFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	todos, err := s.svc.Todos.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromTodos(todos, s.now()))
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var in contract.TodoInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	t := &domain.Todo{}
	if err := in.Apply(t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Todos.Create(r.Context(), t); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.FromTodo(t, s.now()))
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Todos.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromTodo(t, s.now()))
}

// handleUpdateTodo replaces the editable fields. Fields missing from the
// body keep their stored value.
func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	current, err := s.svc.Todos.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in := contract.FromTodoInput(current)
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := in.Apply(current); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Todos.Update(r.Context(), current); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondTodo(w, r, id)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Todos.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (s *Server) handleQuickEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req contract.QuickEditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Todos.QuickEdit(r.Context(), id, req.Field, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromTodo(t, s.now()))
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req contract.StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Todos.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromTodo(t, s.now()))
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req contract.BulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Todos.Bulk(r.Context(), req.Action, req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Todos.NextForAssistant(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromTodo(t, s.now()))
}

func (s *Server) handleAppendOutput(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req contract.OutputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Todos.AppendOutput(r.Context(), id, req.Output); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondTodo(w, r, id)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req service.CompleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Todos.Complete(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromTodo(t, s.now()))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cs, err := s.svc.Todos.Comments(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromComments(cs))
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req contract.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.svc.Todos.Comment(r.Context(), id, req.Body, req.FromAssistant)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.FromComment(c))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.svc.Todos.History(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromHistory(entries))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Todos.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromStats(stats))
}

func (s *Server) respondTodo(w http.ResponseWriter, r *http.Request, id int64) {
	t, err := s.svc.Todos.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromTodo(t, s.now()))
}
