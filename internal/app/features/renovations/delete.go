// internal/app/features/renovations/delete.go
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
| POST /renovations/{id}/delete                                                |
| Deletes the renovation and cascades to memberships, invitations, and         |
| access history in one transaction.                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	res := gates.RequireOwner(w, r, ren, "Only the owner can delete this renovation.", "/renovations/"+ren.ID.Hex())
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Renovations.Delete(ctx, ren.ID); err != nil {
			return err
		}
		return h.Cleanup.OnRenovationDeleted(ctx, ren.ID)
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB delete renovation", err, "Could not delete the renovation.", "/renovations/"+ren.ID.Hex())
		return
	}

	h.AuditLog.RenovationDeleted(ctx, r, res.UserID, ren.ID, ren.Name)
	h.Log.Info("renovation deleted",
		zap.String("renovation_id", ren.ID.Hex()),
		zap.String("owner_id", res.UserID.Hex()))

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/dashboard")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
