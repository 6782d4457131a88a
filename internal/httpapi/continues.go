package httpapi

import (
	"net/http"

	"github.com/alexanderramin/taskdeck/internal/contract"
	"github.com/alexanderramin/taskdeck/internal/service"
)

type continueResponse struct {
	Original  contract.Todo  `json:"original"`
	Continued *contract.Todo `json:"continued,omitempty"`
	Prompt    string         `json:"prompt"`
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req service.ContinueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Continues.Continue(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := s.now()
	out := continueResponse{Original: contract.FromTodo(res.Original, now), Prompt: res.Prompt}
	status := http.StatusOK
	if res.Continued != nil {
		c := contract.FromTodo(res.Continued, now)
		out.Continued = &c
		status = http.StatusCreated
	}
	writeJSON(w, status, out)
}

func (s *Server) handleContinuePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req service.ContinueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	prompt, err := s.svc.Continues.Prompt(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Prompt: prompt})
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	chain, err := s.svc.Continues.Chain(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromContinuations(chain))
}

func (s *Server) handleFollowup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req service.FollowupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.Continues.Followup(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.FromTodo(t, s.now()))
}
