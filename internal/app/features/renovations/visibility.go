// internal/app/features/renovations/visibility.go
package renovations

import (
	"context"
	"net/http"

	"github.com/dalemusser/renohub/internal/app/system/gates"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/txn"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /renovations/{id}/visibility                                            |
| Toggles is_public. Going private purges non-member access history in the     |
| same transaction as the flip.                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleVisibility(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	res := gates.RequireOwner(w, r, ren, "Only the owner can change visibility.", "/renovations/"+ren.ID.Hex())
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse visibility form failed", err, "Invalid form data.", "/renovations/"+ren.ID.Hex())
		return
	}
	makePublic := r.FormValue("is_public") == "on"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		wasPublic, err := h.Renovations.SetVisibility(ctx, ren.ID, makePublic)
		if err != nil {
			return err
		}
		if wasPublic == makePublic {
			return nil
		}
		return h.Cleanup.OnVisibilityChanged(ctx, ren.ID, makePublic)
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB change visibility", err, "Could not change visibility.", "/renovations/"+ren.ID.Hex())
		return
	}

	h.AuditLog.VisibilityChanged(ctx, r, res.UserID, ren.ID, makePublic)
	h.Log.Info("renovation visibility changed",
		zap.String("renovation_id", ren.ID.Hex()),
		zap.Bool("is_public", makePublic))

	http.Redirect(w, r, "/renovations/"+ren.ID.Hex(), http.StatusSeeOther)
}
