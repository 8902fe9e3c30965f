// internal/app/features/invitations/routes.go
package invitations

import (
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// InviteRoutes returns the owner-facing invite form, mounted under a
// renovation ({id} comes from the parent router).
func InviteRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.ServeInviteForm)
		r.Post("/", h.HandleInvitePost)
	})
	return r
}

// TokenRoutes registers the emailed accept and decline links at the site
// root. Both work for anonymous callers.
func TokenRoutes(r chi.Router, h *Handler) {
	r.Get("/invitation", h.ServeAccept)
	r.Get("/decline-invitation", h.ServeDecline)
}
