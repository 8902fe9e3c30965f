// internal/app/features/invitations/accept.go
package invitations

import (
	"context"
	"net/http"
	"net/url"

	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/app/system/normalize"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/txn"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /invitation?token=                                                       |
| The emailed accept link. Resolution order: token shape, existence, lazy      |
| expiry, terminal state. A valid pending invitation then branches on the      |
| caller's identity:                                                           |
|   - anonymous, email has an account  → login, preserving the accept URL      |
|   - anonymous, email unknown         → flag accepted-pending-registration    |
|                                        and send them to registration         |
|   - signed in, email mismatch        → rendered invalid, nothing revealed    |
|   - signed in, email match           → accept + membership, atomically       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeAccept(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.Invitations.ResolveToken(ctx, token)
	if !h.renderResolveFailure(w, r, inv, err) {
		return
	}

	acceptURL := "/invitation?token=" + url.QueryEscape(token)

	u, signedIn := auth.CurrentUser(r)
	if !signedIn {
		// Account existence is checked now, not at issuance: the invitee may
		// have registered independently since the invitation was created.
		switch _, lookupErr := h.Users.GetByEmail(ctx, inv.Email); lookupErr {
		case nil:
			http.Redirect(w, r, "/login?return="+url.QueryEscape(acceptURL), http.StatusSeeOther)
			return
		case mongo.ErrNoDocuments:
			// no account yet
		default:
			h.ErrLog.LogServerError(w, r, "DB look up invitee account", lookupErr, "Could not process the invitation.", "/")
			return
		}

		// Record the accept intent so registration with the matching email
		// completes it, then send them to register.
		if err := h.Invitations.MarkAcceptedPendingRegistration(ctx, inv.ID); err != nil {
			h.ErrLog.LogServerError(w, r, "DB flag pending registration", err, "Could not process the invitation.", "/")
			return
		}
		dest := "/register?return=" + url.QueryEscape("/dashboard") + "&email=" + url.QueryEscape(inv.Email)
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	if normalize.Email(u.Email) != inv.Email {
		// Wrong account. Render the same invalid page as a dead token so the
		// invitee's address is not confirmed to a third party.
		h.renderInvalid(w, r)
		return
	}

	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "parse session user id", err, "Could not process the invitation.", "/")
		return
	}

	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if err := h.Invitations.Accept(ctx, inv.ID); err != nil {
			return err
		}
		_, err := h.Memberships.Add(ctx, inv.RenovationID, userID, models.RoleMember)
		if err == membershipstore.ErrAlreadyMember {
			// Accept stands; the membership was already there.
			return nil
		}
		return err
	})
	switch err {
	case nil:
		// accepted
	case invitationstore.ErrAlreadyResolved:
		// A concurrent resolver won. Rendered the same as an unknown token.
		h.renderInvalid(w, r)
		return
	default:
		h.ErrLog.LogServerError(w, r, "DB accept invitation", err, "Could not accept the invitation.", "/")
		return
	}

	h.AuditLog.InvitationAccepted(ctx, r, userID, inv.RenovationID, inv.Email)
	h.AuditLog.MemberJoined(ctx, r, userID, inv.RenovationID)
	h.Log.Info("invitation accepted",
		zap.String("invitation_id", inv.ID.Hex()),
		zap.String("renovation_id", inv.RenovationID.Hex()))

	http.Redirect(w, r, "/renovations/"+inv.RenovationID.Hex(), http.StatusSeeOther)
}

// renderResolveFailure maps ResolveToken errors to outcome pages. Returns
// true when resolution succeeded and the flow should continue. Malformed,
// unknown, and already-resolved tokens render the same page so neither token
// guessing nor probing a used link learns anything; only a lapsed expiry is
// shown distinctly, with its renovation named, since that invitation
// verifiably reached its recipient.
func (h *Handler) renderResolveFailure(w http.ResponseWriter, r *http.Request, inv *models.Invitation, err error) bool {
	switch err {
	case nil:
		return true
	case invitationstore.ErrTokenMalformed, invitationstore.ErrTokenNotFound, invitationstore.ErrAlreadyResolved:
		h.renderInvalid(w, r)
	case invitationstore.ErrTokenExpired:
		msg := "This invitation has expired. Ask the renovation owner to send a new one."
		if ren, lookupErr := h.Renovations.GetByID(r.Context(), inv.RenovationID); lookupErr == nil {
			msg = "Your invitation to \"" + ren.Name + "\" has expired. Ask the owner to send a new one."
		}
		h.renderResult(w, r, http.StatusGone, "Invitation expired", msg)
	default:
		h.ErrLog.LogServerError(w, r, "DB resolve invitation token", err, "Could not look up the invitation.", "/")
	}
	return false
}

func (h *Handler) renderInvalid(w http.ResponseWriter, r *http.Request) {
	h.renderResult(w, r, http.StatusNotFound, "Invitation not valid",
		"This invitation link is not valid. Check that the full link was copied from the email.")
}
