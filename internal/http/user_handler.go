package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/event-attendance/internal/application"
)

type userService interface {
	Rename(ctx context.Context, principal application.Principal, name string) (application.Person, error)
	List(ctx context.Context, principal application.Principal) ([]application.Person, error)
	SetCreatePermission(ctx context.Context, params application.SetCreatePermissionParams) (application.Person, error)
}

type guestRenamer interface {
	RenameGuest(ctx context.Context, params application.RenameGuestParams) (application.Person, error)
}

// UserHandler serves person profile updates and the admin operations.
type UserHandler struct {
	users     userService
	guests    guestRenamer
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(users userService, guests guestRenamer, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{users: users, guests: guests, responder: newResponder(base), logger: base}
}

func (h *UserHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "UserHandler", operation, attrs...)
}

// Rename renames a person. With an event id in the body the caller acts as
// that event's creator renaming an attendee; without one, only a self rename
// is possible.
func (h *UserHandler) Rename(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.users == nil || h.guests == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	personID := chi.URLParam(r, "personID")
	if strings.TrimSpace(personID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPersonID)
		return
	}

	principal := PrincipalFromContext(r.Context())

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Rename", "principal_id", principal.PersonID, "person_id", personID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rename request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Rename", "principal_id", principal.PersonID, "person_id", personID)

	var (
		person application.Person
		err    error
	)
	switch {
	case strings.TrimSpace(req.EventID) != "":
		person, err = h.guests.RenameGuest(r.Context(), application.RenameGuestParams{
			Principal:      principal,
			EventID:        req.EventID,
			TargetPersonID: personID,
			Name:           req.Name,
		})
	case personID == principal.PersonID:
		person, err = h.users.Rename(r.Context(), principal, req.Name)
	default:
		err = application.ErrUnauthorized
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "rename failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "person renamed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, personResponse{Person: toPersonDTO(person)})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.PersonID)

	people, err := h.users.List(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "user list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(people)).InfoContext(r.Context(), "users listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPeopleResponse{People: toPersonDTOs(people)})
}

func (h *UserHandler) SetCreatePermission(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.users == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	personID := chi.URLParam(r, "personID")
	if strings.TrimSpace(personID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPersonID)
		return
	}

	principal := PrincipalFromContext(r.Context())

	var req createPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetCreatePermission", "principal_id", principal.PersonID, "person_id", personID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode permission request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetCreatePermission", "principal_id", principal.PersonID, "person_id", personID)

	person, err := h.users.SetCreatePermission(r.Context(), application.SetCreatePermissionParams{
		Principal:       principal,
		TargetPersonID:  personID,
		CanCreateEvents: req.CanCreateEvents,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "permission toggle failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("can_create_events", person.CanCreateEvents).InfoContext(r.Context(), "create permission toggled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, personResponse{Person: toPersonDTO(person)})
}

type renameRequest struct {
	Name    string `json:"name"`
	EventID string `json:"event_id"`
}

type createPermissionRequest struct {
	CanCreateEvents bool `json:"can_create_events"`
}

type listPeopleResponse struct {
	People []personDTO `json:"people"`
}

func toPersonDTOs(people []application.Person) []personDTO {
	if len(people) == 0 {
		return nil
	}
	out := make([]personDTO, 0, len(people))
	for _, person := range people {
		out = append(out, toPersonDTO(person))
	}
	return out
}
