package httpapi

import (
	"net/http"

	"github.com/alexanderramin/taskdeck/internal/contract"
)

// Remote results carry their own success flag; the envelope mirrors it.

func (s *Server) handleRemoteStatus(w http.ResponseWriter, r *http.Request) {
	res := s.svc.Remote.Status(r.Context())
	writeRemote(w, res.Success, res)
}

func (s *Server) handleRemoteSend(w http.ResponseWriter, r *http.Request) {
	var req contract.SendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res := s.svc.Remote.Send(r.Context(), req.Command)
	writeRemote(w, res.Success, res)
}

func (s *Server) handleRemoteTest(w http.ResponseWriter, r *http.Request) {
	res := s.svc.Remote.Test(r.Context())
	writeRemote(w, res.Success, res)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Remote.Trigger(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRemote(w, res.Success, res)
}

func writeRemote(w http.ResponseWriter, ok bool, data any) {
	status := http.StatusOK
	if !ok {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, data)
}
