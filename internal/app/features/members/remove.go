// internal/app/features/members/remove.go
package members

import (
	"context"
	"net/http"

	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	"github.com/dalemusser/renohub/internal/app/system/gates"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /renovations/{id}/members/remove                                        |
| Owner removes a member. The membership delete and the access cleanup run    |
| in one transaction; the owner row itself is never removable.                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	membersURL := "/renovations/" + ren.ID.Hex() + "/members"

	res := gates.RequireOwner(w, r, ren, "Only the owner can remove members.", membersURL)
	if !res.OK {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse remove form failed", err, "Invalid form data.", membersURL)
		return
	}

	targetID, err := primitive.ObjectIDFromHex(r.FormValue("user_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse target user id failed", err, "Invalid member.", membersURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "load target user failed", err, "Invalid member.", membersURL)
		return
	}

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Memberships.Remove(ctx, ren.ID, targetID); err != nil {
			return err
		}
		return h.Cleanup.OnMemberRemoved(ctx, ren.ID, targetID, target.Email, ren.IsPublic)
	})
	switch err {
	case nil:
		// removed
	case membershipstore.ErrCannotRemoveOwner:
		h.ErrLog.LogForbidden(w, r, "remove owner refused", err, "The owner cannot be removed from their own renovation.", membersURL)
		return
	case membershipstore.ErrNotAMember:
		h.ErrLog.LogBadRequest(w, r, "remove non-member refused", err, "That user is not a member.", membersURL)
		return
	default:
		h.ErrLog.LogServerError(w, r, "DB remove member", err, "Could not remove the member.", membersURL)
		return
	}

	h.AuditLog.MemberRemoved(ctx, r, res.UserID, targetID, ren.ID)
	h.Log.Info("member removed",
		zap.String("renovation_id", ren.ID.Hex()),
		zap.String("target_user_id", targetID.Hex()))

	if r.Header.Get("HX-Request") == "true" {
		// hx-swap removes the row client-side
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, membersURL, http.StatusSeeOther)
}
