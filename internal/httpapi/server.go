// Package httpapi serves the todo board's JSON actions.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alexanderramin/taskdeck/internal/service"
	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// Services are the use cases the API exposes.
type Services struct {
	Todos       service.TodoService
	Plans       service.PlanService
	Continues   service.ContinueService
	Remote      service.RemoteService
	Attachments service.AttachmentService
	Screenshots service.ScreenshotService
}

type Server struct {
	svc    Services
	apiKey string
	logger *log.Logger
	now    func() time.Time
}

func NewServer(svc Services, apiKey string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		svc:    svc,
		apiKey: apiKey,
		logger: logger.WithPrefix("http"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Handler returns the router with logging and API key middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	r.Use(s.logRequests, s.requireAPIKey)
	return r
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/todos", s.handleListTodos).Methods("GET")
	api.HandleFunc("/todos", s.handleCreateTodo).Methods("POST")
	api.HandleFunc("/todos/bulk", s.handleBulk).Methods("POST")
	api.HandleFunc("/todos/next", s.handleNext).Methods("GET")
	api.HandleFunc("/todos/{id:[0-9]+}", s.handleGetTodo).Methods("GET")
	api.HandleFunc("/todos/{id:[0-9]+}", s.handleUpdateTodo).Methods("PUT")
	api.HandleFunc("/todos/{id:[0-9]+}", s.handleDeleteTodo).Methods("DELETE")
	api.HandleFunc("/todos/{id:[0-9]+}/quick-edit", s.handleQuickEdit).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/status", s.handleSetStatus).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/output", s.handleAppendOutput).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/complete", s.handleComplete).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/comments", s.handleListComments).Methods("GET")
	api.HandleFunc("/todos/{id:[0-9]+}/comments", s.handleAddComment).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/history", s.handleHistory).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	api.HandleFunc("/plan/preview", s.handlePlanPreview).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/plan", s.handleOpenPlan).Methods("GET")
	api.HandleFunc("/todos/{id:[0-9]+}/plan", s.handleSavePlan).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/plan/export", s.handleExportPlan).Methods("GET")
	api.HandleFunc("/todos/{id:[0-9]+}/plan/view", s.handleViewPlan).Methods("GET")

	api.HandleFunc("/todos/{id:[0-9]+}/continue", s.handleContinue).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/continue/prompt", s.handleContinuePrompt).Methods("POST")
	api.HandleFunc("/todos/{id:[0-9]+}/continuations", s.handleChain).Methods("GET")
	api.HandleFunc("/todos/{id:[0-9]+}/followup", s.handleFollowup).Methods("POST")

	api.HandleFunc("/todos/{id:[0-9]+}/attachments", s.handleListAttachments).Methods("GET")
	api.HandleFunc("/todos/{id:[0-9]+}/attachments", s.handleUploadAttachment).Methods("POST")
	api.HandleFunc("/attachments/{aid:[0-9]+}", s.handleDownloadAttachment).Methods("GET")
	api.HandleFunc("/attachments/{aid:[0-9]+}", s.handleDeleteAttachment).Methods("DELETE")
	api.HandleFunc("/screenshots", s.handleListScreenshots).Methods("GET")
	api.HandleFunc("/screenshots", s.handleDeleteScreenshot).Methods("DELETE")
	api.HandleFunc("/screenshots/file", s.handleScreenshotFile).Methods("GET")

	api.HandleFunc("/remote/status", s.handleRemoteStatus).Methods("GET")
	api.HandleFunc("/remote/send", s.handleRemoteSend).Methods("POST")
	api.HandleFunc("/remote/test", s.handleRemoteTest).Methods("GET")
	api.HandleFunc("/todos/{id:[0-9]+}/trigger", s.handleTrigger).Methods("POST")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	}
}
