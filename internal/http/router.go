package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterConfig collects the handlers and middleware dependencies for the
// service router.
type RouterConfig struct {
	Auth     *AuthHandler
	Events   *EventHandler
	RSVPs    *RSVPHandler
	Users    *UserHandler
	Invites  *InviteHandler
	Sessions SessionValidator
	Logger   *slog.Logger
}

// NewRouter assembles the full route table. Session resolution runs on every
// request; routes that need an authenticated caller add RequireSession on
// top. Join and targeted RSVP removal stay open to anonymous callers.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(cfg.Logger))
	if cfg.Sessions != nil {
		r.Use(WithSession(cfg.Sessions, cfg.Logger))
	}

	requireSession := RequireSession(cfg.Logger)

	if cfg.Auth != nil {
		r.Post("/signup", cfg.Auth.Signup)
		r.Post("/login", cfg.Auth.Login)
		r.Post("/logout", cfg.Auth.Logout)
	}

	r.Route("/events", func(r chi.Router) {
		if cfg.Events != nil {
			r.Get("/", cfg.Events.List)
			r.With(requireSession).Post("/", cfg.Events.Create)
		}

		r.Route("/{eventID}", func(r chi.Router) {
			if cfg.Events != nil {
				r.Get("/", cfg.Events.Get)
				r.With(requireSession).Put("/", cfg.Events.Update)
				r.With(requireSession).Delete("/", cfg.Events.Delete)
			}

			if cfg.RSVPs != nil {
				r.Post("/rsvps", cfg.RSVPs.Join)
				r.With(requireSession).Delete("/rsvps", cfg.RSVPs.Leave)
				r.Delete("/rsvps/{rsvpID}", cfg.RSVPs.Remove)
			}

			if cfg.Invites != nil {
				r.With(requireSession).Post("/invite-links", cfg.Invites.Create)
			}
		})
	})

	if cfg.Users != nil {
		r.With(requireSession).Patch("/users/{personID}", cfg.Users.Rename)

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/", cfg.Users.List)
			r.Patch("/{personID}", cfg.Users.SetCreatePermission)
		})
	}

	return r
}
