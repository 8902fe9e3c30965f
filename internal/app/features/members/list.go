// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"
	"sort"

	uierrors "github.com/dalemusser/renohub/internal/app/features/errors"
	"github.com/dalemusser/renohub/internal/app/system/authz"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memberItem struct {
	UserID   primitive.ObjectID
	FullName string
	Email    string
	Role     string
}

type pendingItem struct {
	InvitationID primitive.ObjectID
	Email        string
	ExpiresAt    string
}

type memberListData struct {
	viewdata.BaseVM
	Renovation models.Renovation
	Members    []memberItem
	Pending    []pendingItem
	IsOwner    bool
	IsMember   bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /renovations/{id}/members                                                |
| Members see the roster; the owner additionally sees pending invitations      |
| with revoke controls.                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
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
		member, err = h.Memberships.Exists(ctx, ren.ID, userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB check membership", err, "A database error occurred.", "/dashboard")
			return
		}
	}

	// The roster follows the renovation's visibility rules, same as viewing.
	if !authz.CanView(ren, member) {
		uierrors.RenderNotFound(w, r)
		return
	}

	rows, err := h.Memberships.ListByRenovation(ctx, ren.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list members", err, "Could not load members.", "/renovations/"+ren.ID.Hex())
		return
	}

	items, err := h.resolveMembers(ctx, rows)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB resolve member users", err, "Could not load members.", "/renovations/"+ren.ID.Hex())
		return
	}

	isOwner := signedIn && authz.IsOwner(ren, userID)

	var pending []pendingItem
	if isOwner {
		invs, err := h.Invitations.ListByRenovation(ctx, ren.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB list invitations", err, "Could not load invitations.", "/renovations/"+ren.ID.Hex())
			return
		}
		for _, inv := range invs {
			if inv.Status != models.InviteStatusPending {
				continue
			}
			pending = append(pending, pendingItem{
				InvitationID: inv.ID,
				Email:        inv.Email,
				ExpiresAt:    inv.ExpiresAt.Format("Jan 2, 2006"),
			})
		}
	}

	templates.Render(w, r, "member_list", memberListData{
		BaseVM:     viewdata.NewBaseVM(r, ren.Name+" members", "/renovations/"+ren.ID.Hex()),
		Renovation: *ren,
		Members:    items,
		Pending:    pending,
		IsOwner:    isOwner,
		IsMember:   member,
	})
}

// resolveMembers joins membership rows with user documents, owner first,
// then members by name.
func (h *Handler) resolveMembers(ctx context.Context, rows []models.Membership) ([]memberItem, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UserID)
	}
	users, err := h.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	items := make([]memberItem, 0, len(rows))
	for _, m := range rows {
		u, found := byID[m.UserID]
		if !found {
			continue
		}
		items = append(items, memberItem{
			UserID:   m.UserID,
			FullName: u.FullName,
			Email:    u.Email,
			Role:     m.Role,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Role != items[j].Role {
			return items[i].Role == models.RoleOwner
		}
		return items[i].FullName < items[j].FullName
	})
	return items, nil
}
