// internal/app/features/members/leave.go
package members

import (
	"context"
	"net/http"

	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	"github.com/dalemusser/renohub/internal/app/system/authz"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/txn"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /renovations/{id}/members/leave                                         |
| A member removes their own membership. The owner cannot leave their own     |
| renovation; the store's owner guard refuses the row. Cleanup runs in the    |
| same transaction as the delete, like an owner-initiated removal.            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	membersURL := "/renovations/" + ren.ID.Hex() + "/members"

	_, userID, signedIn := authz.UserCtx(r)
	if !signedIn {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load leaving user", err, "Could not leave the renovation.", membersURL)
		return
	}

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Memberships.Remove(ctx, ren.ID, userID); err != nil {
			return err
		}
		return h.Cleanup.OnMemberRemoved(ctx, ren.ID, userID, u.Email, ren.IsPublic)
	})
	switch err {
	case nil:
		// left
	case membershipstore.ErrCannotRemoveOwner:
		h.ErrLog.LogForbidden(w, r, "owner leave refused", err, "The owner cannot leave their own renovation.", membersURL)
		return
	case membershipstore.ErrNotAMember:
		h.ErrLog.LogBadRequest(w, r, "non-member leave refused", err, "You are not a member of this renovation.", membersURL)
		return
	default:
		h.ErrLog.LogServerError(w, r, "DB leave renovation", err, "Could not leave the renovation.", membersURL)
		return
	}

	h.AuditLog.MemberLeft(ctx, r, userID, ren.ID)
	h.Log.Info("member left",
		zap.String("renovation_id", ren.ID.Hex()),
		zap.String("user_id", userID.Hex()))

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
