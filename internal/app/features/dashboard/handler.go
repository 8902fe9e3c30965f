// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/renohub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	recentstore "github.com/dalemusser/renohub/internal/app/store/recentaccess"
	renostore "github.com/dalemusser/renohub/internal/app/store/renovations"
	"github.com/dalemusser/renohub/internal/app/system/authz"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RecentLimit is how many recently viewed renovations the dashboard shows.
const RecentLimit = 3

type Handler struct {
	Log          *zap.Logger
	Renovations  *renostore.Store
	Memberships  *membershipstore.Store
	RecentAccess *recentstore.Store
	ErrLog       *uierrors.ErrorLogger
}

func NewHandler(
	renovations *renostore.Store,
	memberships *membershipstore.Store,
	recent *recentstore.Store,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		Renovations:  renovations,
		Memberships:  memberships,
		RecentAccess: recent,
		ErrLog:       errLog,
	}
}

type dashboardData struct {
	viewdata.BaseVM
	Owned  []models.Renovation
	Joined []models.Renovation
	Recent []models.Renovation
}

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	owned, joined, err := h.loadRenovations(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load dashboard renovations", err, "Could not load your renovations.", "/")
		return
	}

	recent, err := h.loadRecent(ctx, userID)
	if err != nil {
		// Recent list is best-effort; the dashboard still renders without it.
		h.Log.Warn("load recent renovations failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		recent = nil
	}

	templates.Render(w, r, "dashboard", dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/"),
		Owned:  owned,
		Joined: joined,
		Recent: recent,
	})
}

// loadRenovations resolves the user's memberships into owned and joined
// renovation lists, preserving the stores' name ordering within each list.
func (h *Handler) loadRenovations(ctx context.Context, userID primitive.ObjectID) (owned, joined []models.Renovation, err error) {
	memberships, err := h.Memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(memberships) == 0 {
		return nil, nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	roleByReno := make(map[primitive.ObjectID]string, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.RenovationID)
		roleByReno[m.RenovationID] = m.Role
	}

	renos, err := h.Renovations.ListByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	for _, ren := range renos {
		if roleByReno[ren.ID] == models.RoleOwner {
			owned = append(owned, ren)
		} else {
			joined = append(joined, ren)
		}
	}
	return owned, joined, nil
}

// loadRecent returns renovations in most-recently-accessed order. Entries
// whose renovation has since been deleted are dropped.
func (h *Handler) loadRecent(ctx context.Context, userID primitive.ObjectID) ([]models.Renovation, error) {
	accesses, err := h.RecentAccess.RecentForUser(ctx, userID, RecentLimit)
	if err != nil {
		return nil, err
	}
	if len(accesses) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(accesses))
	for _, a := range accesses {
		ids = append(ids, a.RenovationID)
	}

	renos, err := h.Renovations.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Renovation, len(renos))
	for _, ren := range renos {
		byID[ren.ID] = ren
	}

	ordered := make([]models.Renovation, 0, len(accesses))
	for _, a := range accesses {
		if ren, found := byID[a.RenovationID]; found {
			ordered = append(ordered, ren)
		}
	}
	return ordered, nil
}
