// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /renovations/{id}/members. The list
// follows per-renovation visibility; mutations require sign-in (ownership is
// checked in the handlers).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/remove", h.HandleRemove)
		pr.Post("/revoke", h.HandleRevoke)
		pr.Post("/leave", h.HandleLeave)
	})

	return r
}
