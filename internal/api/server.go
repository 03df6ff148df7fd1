package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AhmadChX/notifybuddy/internal/metrics"
	"github.com/AhmadChX/notifybuddy/internal/models"
	"github.com/AhmadChX/notifybuddy/internal/service"
	"github.com/AhmadChX/notifybuddy/internal/timeutil"
)

// Server provides the HTTP API for the management dashboard.
type Server struct {
	svc     *service.Service
	metrics *metrics.Metrics
	logger  *logrus.Logger
	mux     *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, metrics: m, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/reminders", s.handleListReminders)
	s.mux.HandleFunc("POST /api/reminders", s.handleCreateReminder)
	s.mux.HandleFunc("PUT /api/reminders/{id}", s.handleEditReminder)
	s.mux.HandleFunc("POST /api/reminders/{id}/dismiss", s.handleDismissReminder)
	s.mux.HandleFunc("POST /api/reminders/undo", s.handleUndo)
	s.mux.HandleFunc("DELETE /api/reminders/{id}", s.handleDeleteReminder)

	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps lifecycle errors to HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		s.respondError(w, http.StatusBadRequest, validationErr.Reason)
		return
	}
	var schedulingErr *models.SchedulingError
	if errors.As(err, &schedulingErr) {
		s.respondError(w, http.StatusBadRequest, schedulingErr.Reason)
		return
	}
	if errors.Is(err, models.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "reminder not found")
		return
	}
	if errors.Is(err, models.ErrNothingToUndo) {
		s.respondError(w, http.StatusConflict, "nothing to undo")
		return
	}
	s.logger.WithError(err).Error("request failed")
	s.respondError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// ---------------------------------------------------------------------------
// Reminders
// ---------------------------------------------------------------------------

type reminderRequest struct {
	Text          string `json:"text"`
	ScheduledTime string `json:"scheduled_time"` // RFC 3339
}

func (req *reminderRequest) scheduledMillis() (int64, string) {
	if req.ScheduledTime == "" {
		return 0, "scheduled_time is required"
	}
	t, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		return 0, "scheduled_time must be RFC 3339 format"
	}
	return timeutil.Millis(t), ""
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := service.ListOptions{
		Query:  q.Get("q"),
		SortBy: q.Get("sort"),
		Desc:   strings.EqualFold(q.Get("order"), "desc"),
	}
	if status := q.Get("status"); status != "" {
		st := models.ReminderStatus(status)
		if !st.Valid() {
			s.respondError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		opts.Status = st
	}

	reminders, err := s.svc.List(r.Context(), opts)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, reminders)
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	ms, errMsg := req.scheduledMillis()
	if errMsg != "" {
		s.respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	created, err := s.svc.Create(r.Context(), req.Text, ms)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleEditReminder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req reminderRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	ms, errMsg := req.scheduledMillis()
	if errMsg != "" {
		s.respondError(w, http.StatusBadRequest, errMsg)
		return
	}

	updated, err := s.svc.Edit(r.Context(), id, req.Text, ms)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDismissReminder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Dismiss(r.Context(), r.PathValue("id")); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	restored, err := s.svc.Undo(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, restored)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
