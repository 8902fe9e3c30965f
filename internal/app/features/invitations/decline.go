// internal/app/features/invitations/decline.go
package invitations

import (
	"context"
	"net/http"

	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /decline-invitation?token=                                               |
| The emailed decline link. No sign-in required and no membership side         |
| effects; the invitation just moves to declined and the owner's pending      |
| list reflects it.                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDecline(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.Invitations.ResolveToken(ctx, token)
	if !h.renderResolveFailure(w, r, inv, err) {
		return
	}

	switch err := h.Invitations.Decline(ctx, inv.ID); err {
	case nil:
		// declined
	case invitationstore.ErrAlreadyResolved:
		h.renderInvalid(w, r)
		return
	default:
		h.ErrLog.LogServerError(w, r, "DB decline invitation", err, "Could not decline the invitation.", "/")
		return
	}

	h.AuditLog.InvitationDeclined(ctx, r, inv.RenovationID, inv.Email)
	h.Log.Info("invitation declined",
		zap.String("invitation_id", inv.ID.Hex()),
		zap.String("renovation_id", inv.RenovationID.Hex()))

	h.renderResult(w, r, http.StatusOK, "Invitation declined",
		"You have declined this invitation. No access was granted, and the renovation owner's pending list has been updated.")
}
