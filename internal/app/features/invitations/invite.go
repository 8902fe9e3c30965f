// internal/app/features/invitations/invite.go
package invitations

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	"github.com/dalemusser/renohub/internal/app/system/gates"
	"github.com/dalemusser/renohub/internal/app/system/inviteval"
	"github.com/dalemusser/renohub/internal/app/system/limits"
	"github.com/dalemusser/renohub/internal/app/system/mailer"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type inviteFormData struct {
	viewdata.BaseVM
	Renovation models.Renovation
	Emails     string
	Errors     []string
	Sent       int
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /renovations/{id}/invite                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeInviteForm(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	res := gates.RequireOwner(w, r, ren, "Only the owner can send invitations.", "/renovations/"+ren.ID.Hex())
	if !res.OK {
		return
	}

	templates.Render(w, r, "invite_form", inviteFormData{
		BaseVM:     viewdata.NewBaseVM(r, "Invite people", "/renovations/"+ren.ID.Hex()+"/members"),
		Renovation: *ren,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /renovations/{id}/invite                                                |
| Validates the whole batch first; any violation blocks every invitation in   |
| it. On success each invitee gets a pending invitation and a fire-and-forget |
| email. A failed send is logged; the invitation stands.                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleInvitePost(w http.ResponseWriter, r *http.Request) {
	ren, ok := h.loadRenovation(w, r)
	if !ok {
		return
	}
	res := gates.RequireOwner(w, r, ren, "Only the owner can send invitations.", "/renovations/"+ren.ID.Hex())
	if !res.OK {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxInviteFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse invite form failed", err, "Invalid form data.", "/renovations/"+ren.ID.Hex()+"/members")
		return
	}

	rawEmails := r.FormValue("emails")
	candidates := splitEmails(rawEmails)

	if allowed, msg := h.Limiter.Check(res.UserID.Hex()); !allowed {
		h.renderInviteForm(w, r, ren, rawEmails, []string{msg}, 0)
		return
	}

	if len(candidates) > limits.MaxInviteBatch {
		h.renderInviteForm(w, r, ren, rawEmails,
			[]string{fmt.Sprintf("You can invite at most %d people at once.", limits.MaxInviteBatch)}, 0)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	input, err := h.buildValidationInput(ctx, ren, candidates)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB gather invite validation input", err, "Could not validate the invitations.", "/renovations/"+ren.ID.Hex()+"/members")
		return
	}

	if violations := inviteval.Validate(input); len(violations) > 0 {
		msgs := make([]string, 0, len(violations))
		for _, v := range violations {
			if v.Email == "" {
				msgs = append(msgs, v.Message)
			} else {
				msgs = append(msgs, v.Email+": "+v.Message)
			}
		}
		h.renderInviteForm(w, r, ren, rawEmails, msgs, 0)
		return
	}

	sent := 0
	for _, email := range candidates {
		inv, err := h.Invitations.Create(ctx, ren.ID, email)
		if err == invitationstore.ErrDuplicatePending {
			// Concurrent invite for the same address won between validation
			// and commit; skip quietly.
			continue
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB create invitation", err, "Could not create all invitations.", "/renovations/"+ren.ID.Hex()+"/members")
			return
		}

		h.sendInvitationEmail(res.Name, ren.Name, inv)
		h.AuditLog.InvitationSent(ctx, r, res.UserID, ren.ID, inv.Email)
		sent++
	}

	h.Log.Info("invitations sent",
		zap.String("renovation_id", ren.ID.Hex()),
		zap.Int("count", sent))

	h.renderInviteForm(w, r, ren, "", nil, sent)
}

func (h *Handler) renderInviteForm(w http.ResponseWriter, r *http.Request, ren *models.Renovation, emails string, errs []string, sent int) {
	templates.Render(w, r, "invite_form", inviteFormData{
		BaseVM:     viewdata.NewBaseVM(r, "Invite people", "/renovations/"+ren.ID.Hex()+"/members"),
		Renovation: *ren,
		Emails:     emails,
		Errors:     errs,
		Sent:       sent,
	})
}

// buildValidationInput gathers the owner, member, and pending-invite emails
// the validator compares the batch against.
func (h *Handler) buildValidationInput(ctx context.Context, ren *models.Renovation, candidates []string) (inviteval.Input, error) {
	owner, err := h.Users.GetByID(ctx, ren.OwnerID)
	if err != nil {
		return inviteval.Input{}, fmt.Errorf("load owner: %w", err)
	}

	memberIDs, err := h.Memberships.MemberUserIDs(ctx, ren.ID)
	if err != nil {
		return inviteval.Input{}, fmt.Errorf("list member ids: %w", err)
	}
	emailsByID, err := h.Users.EmailsByIDs(ctx, memberIDs)
	if err != nil {
		return inviteval.Input{}, fmt.Errorf("resolve member emails: %w", err)
	}
	memberEmails := make([]string, 0, len(emailsByID))
	for _, e := range emailsByID {
		memberEmails = append(memberEmails, e)
	}

	pendingEmails, err := h.Invitations.PendingEmails(ctx, ren.ID)
	if err != nil {
		return inviteval.Input{}, fmt.Errorf("list pending emails: %w", err)
	}

	return inviteval.Input{
		Candidates:    candidates,
		OwnerEmail:    owner.Email,
		MemberEmails:  memberEmails,
		PendingEmails: pendingEmails,
	}, nil
}

// sendInvitationEmail submits the invitation email in the background. Mail
// failure never fails the invitation.
func (h *Handler) sendInvitationEmail(inviterName, renovationName string, inv models.Invitation) {
	if h.Mailer == nil {
		return
	}

	email := mailer.BuildInvitationEmail(mailer.InvitationEmailData{
		SiteName:       viewdata.SiteName(),
		InviterName:    inviterName,
		RenovationName: renovationName,
		AcceptLink:     h.BaseURL + "/invitation?token=" + inv.Token,
		DeclineLink:    h.BaseURL + "/decline-invitation?token=" + inv.Token,
		ExpiresIn:      formatExpiry(h.Invitations.Expiry()),
	})
	email.To = inv.Email

	go func() {
		if err := h.Mailer.Send(email); err != nil {
			h.Log.Error("invitation email send failed",
				zap.Error(err),
				zap.String("to", inv.Email),
				zap.String("invitation_id", inv.ID.Hex()))
		}
	}()
}

func formatExpiry(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days <= 0 {
		return d.String()
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// splitEmails accepts comma, semicolon, whitespace, and newline separated
// addresses.
func splitEmails(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\r' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
