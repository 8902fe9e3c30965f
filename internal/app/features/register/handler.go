// internal/app/features/register/handler.go
package register

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	uierrors "github.com/dalemusser/renohub/internal/app/features/errors"
	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	userstore "github.com/dalemusser/renohub/internal/app/store/users"
	"github.com/dalemusser/renohub/internal/app/system/auditlog"
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/app/system/inputval"
	"github.com/dalemusser/renohub/internal/app/system/normalize"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/app/system/txn"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Users       *userstore.Store
	Invitations *invitationstore.Store
	Memberships *membershipstore.Store
	ErrLog      *uierrors.ErrorLogger
	AuditLog    *auditlog.Logger
}

func NewHandler(
	db *mongo.Database,
	users *userstore.Store,
	invitations *invitationstore.Store,
	memberships *membershipstore.Store,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Users:       users,
		Invitations: invitations,
		Memberships: memberships,
		ErrLog:      errLog,
		AuditLog:    audit,
	}
}

type registerFormData struct {
	viewdata.BaseVM
	Error     string
	FullName  string
	Email     string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Create account", "/"),
		Email:     query.Get(r, "email"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse register form failed", err, "Invalid form data.", "/register")
		return
	}

	fullName := normalize.Name(r.FormValue("full_name"))
	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")

	switch {
	case fullName == "":
		h.renderFormWithError(w, r, "Please enter your name.", fullName, email)
		return
	case email == "" || !inputval.IsValidEmail(email):
		h.renderFormWithError(w, r, "Please enter a valid email address.", fullName, email)
		return
	case utf8.RuneCountInString(password) < MinPasswordLength:
		h.renderFormWithError(w, r, "Password must be at least 8 characters.", fullName, email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "A server error occurred.", "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName:   fullName,
		Email:      email,
		AuthMethod: models.AuthMethodInternal,
		PassHash:   string(hash),
	})
	switch err {
	case nil:
		// created – continue
	case userstore.ErrDuplicateEmail:
		h.renderFormWithError(w, r, "An account with that email already exists. Try signing in.", fullName, email)
		return
	default:
		h.ErrLog.LogServerError(w, r, "DB create user", err, "A server error occurred.", "/register")
		return
	}

	h.AuditLog.UserRegistered(ctx, r, u.ID, u.AuthMethod, u.Email)

	// Accepts that were waiting on this email now complete.
	h.resumePendingAccepts(ctx, r, &u)

	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.Log.Error("save session after register failed", zap.Error(err), zap.String("email", u.Email))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	dest := urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// resumePendingAccepts completes invitation accepts that were recorded before
// the recipient had an account. Lapsed invitations are not resumed (the
// store's listing excludes them). Each accept and its membership run in one
// transaction; failures are logged and skipped so registration itself never
// fails.
func (h *Handler) resumePendingAccepts(ctx context.Context, r *http.Request, u *models.User) {
	pending, err := h.Invitations.ListAcceptedPendingRegistration(ctx, u.Email)
	if err != nil {
		h.Log.Error("list pending accepts failed", zap.Error(err), zap.String("email", u.Email))
		return
	}

	for _, inv := range pending {
		err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
			if err := h.Invitations.Accept(ctx, inv.ID); err != nil {
				return err
			}
			_, err := h.Memberships.Add(ctx, inv.RenovationID, u.ID, models.RoleMember)
			if err == membershipstore.ErrAlreadyMember {
				return nil
			}
			return err
		})
		if err != nil {
			h.Log.Warn("resume accept failed",
				zap.Error(err),
				zap.String("invitation_id", inv.ID.Hex()),
				zap.String("renovation_id", inv.RenovationID.Hex()))
			continue
		}
		h.AuditLog.InvitationAccepted(ctx, r, u.ID, inv.RenovationID, u.Email)
		h.AuditLog.MemberJoined(ctx, r, u.ID, inv.RenovationID)
	}
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, fullName, email string) {
	templates.Render(w, r, "register", registerFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Create account", "/"),
		Error:     msg,
		FullName:  fullName,
		Email:     email,
		ReturnURL: strings.TrimSpace(r.FormValue("return")),
	})
}
