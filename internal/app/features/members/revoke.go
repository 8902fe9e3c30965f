// internal/app/features/members/revoke.go
package members

import (
	"context"
	"net/http"

	"github.com/dalemusser/renohub/internal/app/system/gates"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /renovations/{id}/members/revoke                                        |
| Owner revokes a pending invitation by expiring it. Expire is idempotent,    |
| so racing an accept or a second revoke is harmless: whoever transitions     |
| first wins and the loser sees no error.                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	membersURL := "/renovations/" + ren.ID.Hex() + "/members"

	res := gates.RequireOwner(w, r, ren, "Only the owner can revoke invitations.", membersURL)
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse revoke form failed", err, "Invalid form data.", membersURL)
		return
	}

	invID, err := primitive.ObjectIDFromHex(r.FormValue("invitation_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse invitation id failed", err, "Invalid invitation.", membersURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.Invitations.GetByID(ctx, invID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "load invitation failed", err, "Invalid invitation.", membersURL)
		return
	}
	if inv.RenovationID != ren.ID {
		h.ErrLog.LogForbidden(w, r, "revoke foreign invitation refused", nil, "That invitation does not belong to this renovation.", membersURL)
		return
	}

	if err := h.Invitations.Expire(ctx, invID); err != nil {
		h.ErrLog.LogServerError(w, r, "DB expire invitation", err, "Could not revoke the invitation.", membersURL)
		return
	}

	h.AuditLog.InvitationRevoked(ctx, r, res.UserID, ren.ID, inv.Email)
	h.Log.Info("invitation revoked",
		zap.String("renovation_id", ren.ID.Hex()),
		zap.String("invitation_id", invID.Hex()))

	http.Redirect(w, r, membersURL, http.StatusSeeOther)
}
