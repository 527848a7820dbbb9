package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/event-attendance/internal/application"
)

type attendanceServiceStub struct {
	joinResult application.JoinEventResult
	joinErr    error
	leaveErr   error
	removeErr  error

	lastJoin   application.JoinEventParams
	lastRemove application.RemoveAttendanceParams
}

func (s *attendanceServiceStub) Join(_ context.Context, params application.JoinEventParams) (application.JoinEventResult, error) {
	s.lastJoin = params
	if s.joinErr != nil {
		return application.JoinEventResult{}, s.joinErr
	}
	return s.joinResult, nil
}

func (s *attendanceServiceStub) LeaveSelf(_ context.Context, _ application.Principal, _ string) error {
	return s.leaveErr
}

func (s *attendanceServiceStub) Remove(_ context.Context, params application.RemoveAttendanceParams) error {
	s.lastRemove = params
	if s.removeErr != nil {
		return s.removeErr
	}
	return nil
}

func newRSVPTestRouter(service *attendanceServiceStub, sessions SessionValidator) http.Handler {
	return NewRouter(RouterConfig{
		RSVPs:    NewRSVPHandler(service, nil),
		Sessions: sessions,
	})
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestRSVPHandler_Join(t *testing.T) {
	t.Parallel()

	joinedAt := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	sessions := &sessionValidatorStub{people: map[string]application.Person{
		"tok-1": {ID: "alice"},
	}}

	t.Run("joins with a guest name", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{joinResult: application.JoinEventResult{
			Attendance: application.Attendance{ID: "att-1", PersonID: "guest-1", EventID: "evt-1", CreatedAt: joinedAt},
			Person:     application.Person{ID: "guest-1", DisplayName: "Jonas", Guest: true},
		}}
		router := newRSVPTestRouter(service, sessions)

		req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rsvps", strings.NewReader(`{"name":"Jonas"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			AttendanceID string `json:"attendance_id"`
			PersonID     string `json:"person_id"`
			Name         string `json:"name"`
			Guest        bool   `json:"guest"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.AttendanceID != "att-1" || resp.PersonID != "guest-1" || !resp.Guest {
			t.Fatalf("unexpected response %+v", resp)
		}
		if service.lastJoin.GuestName != "Jonas" || service.lastJoin.EventID != "evt-1" {
			t.Fatalf("unexpected params %+v", service.lastJoin)
		}
		if service.lastJoin.Principal.Authenticated {
			t.Fatal("expected an anonymous principal")
		}
	})

	t.Run("passes the session principal through", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{joinResult: application.JoinEventResult{
			Attendance: application.Attendance{ID: "att-1", PersonID: "alice", EventID: "evt-1", CreatedAt: joinedAt},
			Person:     application.Person{ID: "alice", DisplayName: "Alice"},
		}}
		router := newRSVPTestRouter(service, sessions)

		req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rsvps", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !service.lastJoin.Principal.Authenticated || service.lastJoin.Principal.PersonID != "alice" {
			t.Fatalf("unexpected principal %+v", service.lastJoin.Principal)
		}
	})

	t.Run("asks anonymous callers for a name", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{joinErr: application.ErrGuestNameRequired}
		router := newRSVPTestRouter(service, sessions)

		req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rsvps", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.ErrorCode != "GUEST_NAME_REQUIRED" {
			t.Fatalf("expected GUEST_NAME_REQUIRED, got %q", resp.ErrorCode)
		}
	})

	t.Run("reports started events", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{joinErr: application.ErrEventEnded}
		router := newRSVPTestRouter(service, sessions)

		req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rsvps", strings.NewReader(`{"name":"Jonas"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.ErrorCode != "EVENT_ENDED" {
			t.Fatalf("expected EVENT_ENDED, got %q", resp.ErrorCode)
		}
	})

	t.Run("reports duplicate joins", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{joinErr: application.ErrAlreadyAttending}
		router := newRSVPTestRouter(service, sessions)

		req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rsvps", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{}
		router := newRSVPTestRouter(service, sessions)

		req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rsvps", strings.NewReader(`{"name":`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRSVPHandler_Leave(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorStub{people: map[string]application.Person{
		"tok-1": {ID: "alice"},
	}}

	t.Run("requires a session", func(t *testing.T) {
		t.Parallel()

		router := newRSVPTestRouter(&attendanceServiceStub{}, sessions)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/events/evt-1/rsvps", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("leaves with a session", func(t *testing.T) {
		t.Parallel()

		router := newRSVPTestRouter(&attendanceServiceStub{}, sessions)

		req := httptest.NewRequest(http.MethodDelete, "/events/evt-1/rsvps", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestRSVPHandler_Remove(t *testing.T) {
	t.Parallel()

	sessions := &sessionValidatorStub{people: map[string]application.Person{
		"tok-1": {ID: "alice"},
	}}

	t.Run("removes anonymously by attendance id", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{}
		router := newRSVPTestRouter(service, sessions)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/events/evt-1/rsvps/att-1", nil))

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}
		if service.lastRemove.EventID != "evt-1" || service.lastRemove.AttendanceID != "att-1" {
			t.Fatalf("unexpected params %+v", service.lastRemove)
		}
	})

	t.Run("reports unknown attendances", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{removeErr: application.ErrNotFound}
		router := newRSVPTestRouter(service, sessions)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/events/evt-1/rsvps/att-ghost", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("reports forbidden removals", func(t *testing.T) {
		t.Parallel()

		service := &attendanceServiceStub{removeErr: application.ErrUnauthorized}
		router := newRSVPTestRouter(service, sessions)

		req := httptest.NewRequest(http.MethodDelete, "/events/evt-1/rsvps/att-1", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}
