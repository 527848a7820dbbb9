package http

import (
	"context"

	"github.com/example/event-attendance/internal/application"
	"github.com/example/event-attendance/internal/logging"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal returns a derived context containing the resolved principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the principal from context. Requests that
// never passed the session middleware yield the anonymous zero value.
func PrincipalFromContext(ctx context.Context) application.Principal {
	principal, _ := ctx.Value(principalContextKey).(application.Principal)
	return principal
}

// ContextWithLogger attaches a request scoped logger to the context.
var ContextWithLogger = logging.ContextWithLogger

// LoggerFromContext extracts a request scoped logger if one is attached.
var LoggerFromContext = logging.FromContext
