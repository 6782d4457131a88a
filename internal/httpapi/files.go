package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexanderramin/taskdeck/internal/contract"
	"github.com/alexanderramin/taskdeck/internal/service"
)

// uploadField is the multipart field carrying an attachment.
const uploadField = "file"

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Attachments.List(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromAttachments(list))
}

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxAttachmentSize+1<<20)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: file exceeds %d MB", errBadRequest, service.MaxAttachmentSize>>20)
		} else {
			err = fmt.Errorf("%w: missing %q upload: %v", errBadRequest, uploadField, err)
		}
		s.writeError(w, r, err)
		return
	}
	defer file.Close()

	a, err := s.svc.Attachments.Upload(r.Context(), id, header.Filename, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.FromAttachment(a))
}

func (s *Server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	aid, err := pathID(r, "aid")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.svc.Attachments.Get(r.Context(), aid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", a.MimeType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(a.FileName))
	http.ServeFile(w, r, a.Path)
}

func (s *Server) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	aid, err := pathID(r, "aid")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Attachments.Delete(r.Context(), aid); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": aid})
}

func (s *Server) handleListScreenshots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	shots, err := s.svc.Screenshots.List(r.Context(), q.Get("dir"), q.Get("search"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if shots == nil {
		shots = []service.Screenshot{}
	}
	writeJSON(w, http.StatusOK, shots)
}

func (s *Server) handleDeleteScreenshot(w http.ResponseWriter, r *http.Request) {
	var req contract.DeleteScreenshotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Path == "" {
		req.Path = r.URL.Query().Get("path")
	}
	if err := s.svc.Screenshots.Delete(r.Context(), req.Path); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": req.Path})
}

func (s *Server) handleScreenshotFile(w http.ResponseWriter, r *http.Request) {
	shot, err := s.svc.Screenshots.Open(r.URL.Query().Get("path"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", shot.MimeType)
	http.ServeFile(w, r, shot.Path)
}
