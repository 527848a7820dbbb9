package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/event-attendance/internal/application"
)

// SessionValidator resolves a bearer token to the person it belongs to.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (application.Person, application.Session, error)
}

// WithSession resolves an optional bearer token and attaches the resulting
// principal to the request context. Requests without a token proceed as
// anonymous; requests with a token that no longer resolves are rejected so
// callers never silently degrade to a guest identity.
func WithSession(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			person, _, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				if isAuthError(err) {
					responder.handleServiceError(r.Context(), w, err)
					return
				}
				responder.writeError(r.Context(), w, http.StatusInternalServerError, nil)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), application.Principal{
				PersonID:      person.ID,
				Authenticated: true,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests whose context carries no authenticated
// principal. It must run after WithSession.
func RequireSession(logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !PrincipalFromContext(r.Context()).Authenticated {
				responder.handleServiceError(r.Context(), w, application.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger attaches a per-request logger with a request id to the
// context and logs start and completion of every request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func isAuthError(err error) bool {
	return errors.Is(err, application.ErrUnauthenticated) ||
		errors.Is(err, application.ErrSessionExpired) ||
		errors.Is(err, application.ErrSessionRevoked)
}
