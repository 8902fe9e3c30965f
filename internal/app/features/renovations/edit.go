// internal/app/features/renovations/edit.go
package renovations

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/renohub/internal/app/system/gates"
	"github.com/dalemusser/renohub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/renohub/internal/app/system/limits"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /renovations/{id}/edit                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	res := gates.RequireOwner(w, r, ren, "Only the owner can edit this renovation.", "/renovations/"+ren.ID.Hex())
	if !res.OK {
		return
	}

	templates.Render(w, r, "renovation_edit", renovationFormData{
		BaseVM:      viewdata.NewBaseVM(r, "Edit "+ren.Name, "/renovations/"+ren.ID.Hex()),
		Name:        ren.Name,
		Description: ren.Description,
		IsPublic:    ren.IsPublic,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /renovations/{id}/edit                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	res := gates.RequireOwner(w, r, ren, "Only the owner can edit this renovation.", "/renovations/"+ren.ID.Hex())
	if !res.OK {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxRenovationFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse renovation edit form failed", err, "Invalid form data.", "/renovations/"+ren.ID.Hex())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := htmlsanitize.Sanitize(r.FormValue("description"))

	if name == "" {
		templates.Render(w, r, "renovation_edit", renovationFormData{
			BaseVM:      viewdata.NewBaseVM(r, "Edit "+ren.Name, "/renovations/"+ren.ID.Hex()),
			Error:       "Please give the renovation a name.",
			Description: description,
			IsPublic:    ren.IsPublic,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Renovations.Update(ctx, ren.ID, name, description); err != nil {
		h.ErrLog.LogServerError(w, r, "DB update renovation", err, "Could not save the renovation.", "/renovations/"+ren.ID.Hex())
		return
	}

	h.AuditLog.RenovationUpdated(ctx, r, res.UserID, ren.ID, "name,description")

	http.Redirect(w, r, "/renovations/"+ren.ID.Hex(), http.StatusSeeOther)
}
