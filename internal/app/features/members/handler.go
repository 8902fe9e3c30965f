// internal/app/features/members/handler.go
package members

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/renohub/internal/app/features/errors"
	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	renostore "github.com/dalemusser/renohub/internal/app/store/renovations"
	userstore "github.com/dalemusser/renohub/internal/app/store/users"
	"github.com/dalemusser/renohub/internal/app/system/accesscleanup"
	"github.com/dalemusser/renohub/internal/app/system/auditlog"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the member list and owner member-management actions for a
// single renovation.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Renovations *renostore.Store
	Memberships *membershipstore.Store
	Invitations *invitationstore.Store
	Users       *userstore.Store
	Cleanup     *accesscleanup.Coordinator
	ErrLog      *uierrors.ErrorLogger
	AuditLog    *auditlog.Logger
}

func NewHandler(
	db *mongo.Database,
	renovations *renostore.Store,
	memberships *membershipstore.Store,
	invitations *invitationstore.Store,
	users *userstore.Store,
	cleanup *accesscleanup.Coordinator,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Renovations: renovations,
		Memberships: memberships,
		Invitations: invitations,
		Users:       users,
		Cleanup:     cleanup,
		ErrLog:      errLog,
		AuditLog:    audit,
	}
}

// loadRenovation resolves the {id} route param. Bad hex and missing
// documents both render 404.
func (h *Handler) loadRenovation(w http.ResponseWriter, r *http.Request) (*models.Renovation, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ren, err := h.Renovations.GetByID(ctx, id)
	if err == mongo.ErrNoDocuments {
		uierrors.RenderNotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load renovation", err, "A database error occurred.", "/dashboard")
		return nil, false
	}
	return ren, true
}
