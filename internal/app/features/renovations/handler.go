// internal/app/features/renovations/handler.go
package renovations

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/renohub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	recentstore "github.com/dalemusser/renohub/internal/app/store/recentaccess"
	renostore "github.com/dalemusser/renohub/internal/app/store/renovations"
	"github.com/dalemusser/renohub/internal/app/system/accesscleanup"
	"github.com/dalemusser/renohub/internal/app/system/auditlog"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the renovations feature.
type Handler struct {
	DB           *mongo.Database
	Log          *zap.Logger
	Renovations  *renostore.Store
	Memberships  *membershipstore.Store
	RecentAccess *recentstore.Store
	Cleanup      *accesscleanup.Coordinator
	ErrLog       *uierrors.ErrorLogger
	AuditLog     *auditlog.Logger
}

func NewHandler(
	db *mongo.Database,
	renovations *renostore.Store,
	memberships *membershipstore.Store,
	recent *recentstore.Store,
	cleanup *accesscleanup.Coordinator,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:           db,
		Log:          logger,
		Renovations:  renovations,
		Memberships:  memberships,
		RecentAccess: recent,
		Cleanup:      cleanup,
		ErrLog:       errLog,
		AuditLog:     audit,
	}
}

// loadRenovation resolves the {id} route param to a renovation. A bad hex
// string and a missing document both render 404, so URLs cannot be probed
// for existence.
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

// isMember reports whether the user holds any membership row on the
// renovation. A zero userID (anonymous) is never a member.
func (h *Handler) isMember(ctx context.Context, renovationID, userID primitive.ObjectID) (bool, error) {
	if userID.IsZero() {
		return false, nil
	}
	return h.Memberships.Exists(ctx, renovationID, userID)
}
