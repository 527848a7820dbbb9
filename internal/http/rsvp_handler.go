package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/event-attendance/internal/application"
)

type attendanceService interface {
	Join(ctx context.Context, params application.JoinEventParams) (application.JoinEventResult, error)
	LeaveSelf(ctx context.Context, principal application.Principal, eventID string) error
	Remove(ctx context.Context, params application.RemoveAttendanceParams) error
}

// RSVPHandler serves joining and leaving events.
type RSVPHandler struct {
	service   attendanceService
	responder responder
	logger    *slog.Logger
}

func NewRSVPHandler(service attendanceService, logger *slog.Logger) *RSVPHandler {
	base := defaultLogger(logger)
	return &RSVPHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RSVPHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RSVPHandler", operation, attrs...)
}

func (h *RSVPHandler) Join(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	principal := PrincipalFromContext(r.Context())

	// The body is optional: authenticated callers may send nothing.
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log(r.Context(), "Join", "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode join request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Join", "event_id", eventID, "authenticated", principal.Authenticated)

	result, err := h.service.Join(r.Context(), application.JoinEventParams{
		Principal: principal,
		EventID:   eventID,
		GuestName: req.Name,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "join failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("attendance_id", result.Attendance.ID).InfoContext(r.Context(), "joined event")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, joinResponse{
		AttendanceID: result.Attendance.ID,
		PersonID:     result.Person.ID,
		Name:         result.Person.DisplayName,
		Guest:        result.Person.Guest,
		JoinedAt:     result.Attendance.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (h *RSVPHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	principal := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Leave", "event_id", eventID, "principal_id", principal.PersonID)

	if err := h.service.LeaveSelf(r.Context(), principal, eventID); err != nil {
		logger.ErrorContext(r.Context(), "leave failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "left event")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RSVPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	rsvpID := chi.URLParam(r, "rsvpID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}
	if strings.TrimSpace(rsvpID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAttendanceID)
		return
	}

	principal := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Remove", "event_id", eventID, "attendance_id", rsvpID, "authenticated", principal.Authenticated)

	err := h.service.Remove(r.Context(), application.RemoveAttendanceParams{
		Principal:    principal,
		EventID:      eventID,
		AttendanceID: rsvpID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "remove failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "attendance removed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type joinRequest struct {
	Name string `json:"name"`
}

type joinResponse struct {
	AttendanceID string `json:"attendance_id"`
	PersonID     string `json:"person_id"`
	Name         string `json:"name"`
	Guest        bool   `json:"guest"`
	JoinedAt     string `json:"joined_at"`
}
