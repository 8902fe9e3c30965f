// internal/app/features/renovations/new.go
package renovations

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/renohub/internal/app/system/gates"
	"github.com/dalemusser/renohub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/renohub/internal/app/system/limits"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/txn"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	renostore "github.com/dalemusser/renohub/internal/app/store/renovations"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type renovationFormData struct {
	viewdata.BaseVM
	Error       string
	Name        string
	Description string
	IsPublic    bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /renovations/new                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

	templates.Render(w, r, "renovation_form", renovationFormData{
		BaseVM: viewdata.NewBaseVM(r, "New renovation", "/dashboard"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /renovations                                                            |
| Creates the renovation and its owner membership atomically.                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxRenovationFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse renovation form failed", err, "Invalid form data.", "/renovations/new")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	description := htmlsanitize.Sanitize(r.FormValue("description"))
	isPublic := r.FormValue("is_public") == "on"

	if name == "" {
		templates.Render(w, r, "renovation_form", renovationFormData{
			BaseVM:      viewdata.NewBaseVM(r, "New renovation", "/dashboard"),
			Error:       "Please give the renovation a name.",
			Description: description,
			IsPublic:    isPublic,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ren := renostore.NewRenovation(name, description, res.UserID, isPublic)
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Renovations.Insert(ctx, ren); err != nil {
			return err
		}
		_, err := h.Memberships.Add(ctx, ren.ID, res.UserID, models.RoleOwner)
		return err
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB create renovation", err, "Could not create the renovation.", "/renovations/new")
		return
	}

	h.AuditLog.RenovationCreated(ctx, r, res.UserID, ren.ID, ren.Name)
	h.Log.Info("renovation created",
		zap.String("renovation_id", ren.ID.Hex()),
		zap.String("owner_id", res.UserID.Hex()))

	http.Redirect(w, r, "/renovations/"+ren.ID.Hex(), http.StatusSeeOther)
}
