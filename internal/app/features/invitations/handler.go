// internal/app/features/invitations/handler.go
package invitations

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/renohub/internal/app/features/errors"
	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	renostore "github.com/dalemusser/renohub/internal/app/store/renovations"
	userstore "github.com/dalemusser/renohub/internal/app/store/users"
	"github.com/dalemusser/renohub/internal/app/system/auditlog"
	"github.com/dalemusser/renohub/internal/app/system/mailer"
	"github.com/dalemusser/renohub/internal/app/system/ratelimit"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler covers the full invitation lifecycle: the owner's invite form,
// the emailed accept and decline links, and the deferral dance for
// recipients without an account.
type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Renovations *renostore.Store
	Memberships *membershipstore.Store
	Invitations *invitationstore.Store
	Users       *userstore.Store
	Mailer      *mailer.Mailer
	ErrLog      *uierrors.ErrorLogger
	AuditLog    *auditlog.Logger
	Limiter     *ratelimit.InviteLimiter

	// BaseURL is the externally reachable origin used in emailed links,
	// e.g. "https://renohub.example.com".
	BaseURL string
}

func NewHandler(
	db *mongo.Database,
	renovations *renostore.Store,
	memberships *membershipstore.Store,
	invitations *invitationstore.Store,
	users *userstore.Store,
	m *mailer.Mailer,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	limiter *ratelimit.InviteLimiter,
	baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Renovations: renovations,
		Memberships: memberships,
		Invitations: invitations,
		Users:       users,
		Mailer:      m,
		ErrLog:      errLog,
		AuditLog:    audit,
		Limiter:     limiter,
		BaseURL:     baseURL,
	}
}

// resultData backs the shared outcome page for accept/decline flows.
type resultData struct {
	viewdata.BaseVM
	Heading string
	Message string
}

func (h *Handler) renderResult(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	w.WriteHeader(status)
	templates.Render(w, r, "invitation_result", resultData{
		BaseVM:  viewdata.NewBaseVM(r, heading, "/"),
		Heading: heading,
		Message: message,
	})
}

// loadRenovation resolves the {id} route param for the invite form.
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
