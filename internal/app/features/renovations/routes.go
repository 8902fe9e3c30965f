// internal/app/features/renovations/routes.go
package renovations

import (
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /renovations. Viewing is public
// (visibility is enforced per renovation); everything else requires sign-in.
// The member roster and invite form live in their own features and are
// mounted under the renovation's path so they share the {id} param.
func Routes(h *Handler, membersRouter, inviteRouter chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.ServeView)
	r.Mount("/{id}/members", membersRouter)
	r.Mount("/{id}/invite", inviteRouter)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/new", h.ServeNew)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}/edit", h.ServeEdit)
		pr.Post("/{id}/edit", h.HandleEdit)
		pr.Post("/{id}/visibility", h.HandleVisibility)
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}

// BrowseRoutes returns the router mounted at /browse.
func BrowseRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeBrowse)
	return r
}
