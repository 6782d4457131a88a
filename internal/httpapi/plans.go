package httpapi

import (
	"net/http"
	"strconv"

	"github.com/alexanderramin/taskdeck/internal/plan"
)

type previewResponse struct {
	HTML string `json:"html"`
}

func (s *Server) handleOpenPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	editor, err := s.svc.Plans.OpenEditor(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editor)
}

func (s *Server) handlePlanPreview(w http.ResponseWriter, r *http.Request) {
	st := plan.Empty()
	if err := decodeJSON(w, r, &st); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{HTML: s.svc.Plans.Preview(st)})
}

// handleSavePlan accepts {"mode":"structured","structure":{...}} or
// {"mode":"html","html":"..."}.
func (s *Server) handleSavePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := plan.DecodePayload(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.svc.Plans.Save(r.Context(), id, p); err != nil {
		s.writeError(w, r, err)
		return
	}
	editor, err := s.svc.Plans.OpenEditor(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editor)
}

func (s *Server) handleExportPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	exp, err := s.svc.Plans.Export(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(exp.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}

func (s *Server) handleViewPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.svc.Plans.View(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}
