package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/event-attendance/internal/application"
)

type eventService interface {
	Create(ctx context.Context, params application.CreateEventParams) (application.Event, error)
	Update(ctx context.Context, params application.UpdateEventParams) (application.Event, error)
	Delete(ctx context.Context, principal application.Principal, eventID string) error
	GetDetails(ctx context.Context, eventID string) (application.EventDetails, error)
	Browse(ctx context.Context, principal application.Principal, mine bool) ([]application.Event, error)
}

// EventHandler serves event publishing and browsing.
type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.PersonID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.PersonID)

	input, vErr := req.toInput()
	if vErr != nil {
		logger.ErrorContext(r.Context(), "event request invalid", "error", vErr, "error_kind", application.ErrorKind(vErr))
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	event, err := h.service.Create(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.PersonID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.PersonID, "event_id", eventID)

	input, vErr := req.toInput()
	if vErr != nil {
		logger.ErrorContext(r.Context(), "event request invalid", "error", vErr, "error_kind", application.ErrorKind(vErr))
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	event, err := h.service.Update(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   eventID,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	logger := h.log(r.Context(), "Delete", "principal_id", principal.PersonID, "event_id", eventID)

	if err := h.service.Delete(r.Context(), principal, eventID); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Get", "event_id", eventID)

	details, err := h.service.GetDetails(r.Context(), eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "event detail failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventDetailResponse{
		Event:     toEventDTO(details.Event),
		Creator:   details.CreatorName,
		Attendees: toAttendeeDTOs(details.Attendees),
	})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal := PrincipalFromContext(r.Context())
	mine := r.URL.Query().Get("mine") == "true"
	logger := h.log(r.Context(), "List", "principal_id", principal.PersonID, "mine", mine)

	events, err := h.service.Browse(r.Context(), principal, mine)
	if err != nil {
		logger.ErrorContext(r.Context(), "event list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(events)).InfoContext(r.Context(), "events listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

type eventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Category    *string `json:"category"`
	TicketURL   *string `json:"ticket_url"`
	Visibility  string  `json:"visibility"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
}

func (r eventRequest) toInput() (application.EventInput, *application.ValidationError) {
	fieldErrors := map[string]string{}

	start, err := parseEventTime(r.Start)
	if err != nil {
		fieldErrors["start"] = "start must be an RFC 3339 timestamp"
	}
	end, err := parseEventTime(r.End)
	if err != nil {
		fieldErrors["end"] = "end must be an RFC 3339 timestamp"
	}

	if len(fieldErrors) > 0 {
		return application.EventInput{}, &application.ValidationError{FieldErrors: fieldErrors}
	}

	return application.EventInput{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		ImageURL:    r.ImageURL,
		Address:     r.Address,
		City:        r.City,
		Category:    r.Category,
		TicketURL:   r.TicketURL,
		Visibility:  application.Visibility(strings.TrimSpace(r.Visibility)),
		Start:       start,
		End:         end,
	}, nil
}

func parseEventTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, trimmed)
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type eventDetailResponse struct {
	Event     eventDTO      `json:"event"`
	Creator   string        `json:"creator"`
	Attendees []attendeeDTO `json:"attendees"`
}

type eventDTO struct {
	ID          string  `json:"id"`
	CreatorID   string  `json:"creator_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	Category    *string `json:"category,omitempty"`
	TicketURL   *string `json:"ticket_url,omitempty"`
	Visibility  string  `json:"visibility"`
	Start       string  `json:"start"`
	End         string  `json:"end,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type attendeeDTO struct {
	AttendanceID string `json:"attendance_id"`
	PersonID     string `json:"person_id"`
	Name         string `json:"name"`
	Guest        bool   `json:"guest"`
	JoinedAt     string `json:"joined_at"`
}

func toEventDTO(event application.Event) eventDTO {
	dto := eventDTO{
		ID:          event.ID,
		CreatorID:   event.CreatorID,
		Title:       event.Title,
		Description: event.Description,
		ImageURL:    event.ImageURL,
		Address:     event.Address,
		City:        event.City,
		Category:    event.Category,
		TicketURL:   event.TicketURL,
		Visibility:  string(event.Visibility),
		Start:       event.Start.UTC().Format(time.RFC3339Nano),
		CreatedAt:   event.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   event.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !event.End.IsZero() {
		dto.End = event.End.UTC().Format(time.RFC3339Nano)
	}
	return dto
}

func toEventDTOs(events []application.Event) []eventDTO {
	if len(events) == 0 {
		return nil
	}
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}

func toAttendeeDTOs(attendees []application.Attendee) []attendeeDTO {
	if len(attendees) == 0 {
		return nil
	}
	out := make([]attendeeDTO, 0, len(attendees))
	for _, attendee := range attendees {
		out = append(out, attendeeDTO{
			AttendanceID: attendee.Attendance.ID,
			PersonID:     attendee.Attendance.PersonID,
			Name:         attendee.PersonName,
			Guest:        attendee.Guest,
			JoinedAt:     attendee.Attendance.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}
