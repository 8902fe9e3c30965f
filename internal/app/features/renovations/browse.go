// internal/app/features/renovations/browse.go
package renovations

import (
	"context"
	"net/http"

	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// BrowseLimit caps how many public renovations the browse page lists.
const BrowseLimit = 100

type browseData struct {
	viewdata.BaseVM
	Renovations []models.Renovation
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /browse                                                                  |
| Public renovation directory, newest first. No sign-in required.              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeBrowse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	renos, err := h.Renovations.ListPublic(ctx, BrowseLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list public renovations", err, "Could not load public renovations.", "/")
		return
	}

	templates.Render(w, r, "renovation_browse", browseData{
		BaseVM:      viewdata.NewBaseVM(r, "Browse renovations", "/"),
		Renovations: renos,
	})
}
