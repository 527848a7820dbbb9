package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/event-attendance/internal/application"
	"github.com/example/event-attendance/internal/invite"
)

type eventGetter interface {
	Get(ctx context.Context, eventID string) (application.Event, error)
}

// InviteHandler serves personalized invite link generation for event
// creators. A single name or a newline separated block of names is accepted.
type InviteHandler struct {
	events    eventGetter
	baseURL   string
	responder responder
	logger    *slog.Logger
}

func NewInviteHandler(events eventGetter, baseURL string, logger *slog.Logger) *InviteHandler {
	base := defaultLogger(logger)
	return &InviteHandler{events: events, baseURL: baseURL, responder: newResponder(base), logger: base}
}

func (h *InviteHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "InviteHandler", operation, attrs...)
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.events == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	principal := PrincipalFromContext(r.Context())

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.PersonID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode invite request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.PersonID, "event_id", eventID)

	event, err := h.events.Get(r.Context(), eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "invite link generation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if !application.IsEventCreator(principal.PersonID, event) {
		logger.ErrorContext(r.Context(), "invite link generation failed", "error", application.ErrUnauthorized, "error_kind", application.ErrorKind(application.ErrUnauthorized))
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
		return
	}

	block := req.Names
	if strings.TrimSpace(block) == "" {
		block = req.Name
	}

	links, err := invite.EncodeBulk(h.baseURL, event.ID, block)
	if err != nil {
		logger.ErrorContext(r.Context(), "invite link generation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	if len(links) == 0 {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"name": "at least one name is required"}}
		logger.ErrorContext(r.Context(), "invite link generation failed", "error", vErr, "error_kind", application.ErrorKind(vErr))
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	body := inviteResponse{Links: make([]inviteLink, 0, len(links))}
	for _, link := range links {
		body.Links = append(body.Links, inviteLink{Name: link.Name, URL: link.URL})
	}

	logger.With("link_count", len(links)).InfoContext(r.Context(), "invite links generated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, body)
}

type inviteRequest struct {
	Name  string `json:"name"`
	Names string `json:"names"`
}

type inviteLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type inviteResponse struct {
	Links []inviteLink `json:"links"`
}
