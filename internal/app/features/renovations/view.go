// internal/app/features/renovations/view.go
package renovations

import (
	"context"
	"html/template"
	"net/http"

	"github.com/dalemusser/renohub/internal/app/system/authz"
	"github.com/dalemusser/renohub/internal/app/system/gates"
	"github.com/dalemusser/renohub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type renovationViewData struct {
	viewdata.BaseVM
	Renovation  models.Renovation
	Description template.HTML
	IsOwner     bool
	IsMember    bool
	MemberCount int64
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /renovations/{id}                                                        |
| Public renovations are viewable by anyone; private ones only by members.     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, userID, signedIn := authz.UserCtx(r)
	member := false
	if signedIn {
		var err error
		member, err = h.isMember(ctx, ren.ID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB check membership", err, "A database error occurred.", "/dashboard")
			return
		}
	}

	res := gates.RequireViewer(w, r, ren, member)
	if !res.OK {
		return
	}

	// Any signed-in viewer of a public renovation and every member of a
	// private one leaves an access trace for the dashboard's recent list.
	if signedIn {
		if err := h.RecentAccess.Record(ctx, ren.ID, userID); err != nil {
			h.Log.Warn("record recent access failed",
				zap.Error(err),
				zap.String("renovation_id", ren.ID.Hex()))
		}
	}

	count, err := h.Memberships.CountByRenovation(ctx, ren.ID, "")
	if err != nil {
		h.Log.Warn("count members failed", zap.Error(err), zap.String("renovation_id", ren.ID.Hex()))
	}

	templates.Render(w, r, "renovation_view", renovationViewData{
		BaseVM:      viewdata.NewBaseVM(r, ren.Name, "/dashboard"),
		Renovation:  *ren,
		Description: htmlsanitize.PrepareForDisplay(ren.Description),
		IsOwner:     signedIn && authz.IsOwner(ren, userID),
		IsMember:    member,
		MemberCount: count,
	})
}
