// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	"github.com/dalemusser/renohub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/renohub/internal/app/store/users"
	"github.com/dalemusser/renohub/internal/app/system/auditlog"
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/app/system/normalize"
	"github.com/dalemusser/renohub/internal/app/system/timeouts"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateTTL bounds how long a consent round-trip may take.
const stateTTL = 10 * time.Minute

// Handler handles Google OAuth sign-in. Accounts are created on first
// sign-in; an email already registered with a password stays internal-auth
// and cannot be signed into via Google.
type Handler struct {
	Log         *zap.Logger
	Users       *userstore.Store
	Invitations *invitationstore.Store
	Memberships *membershipstore.Store
	AuditLog    *auditlog.Logger
	StateStore  *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://renohub.example.com/auth/google/callback"
}

func NewHandler(
	users *userstore.Store,
	invitations *invitationstore.Store,
	memberships *membershipstore.Store,
	audit *auditlog.Logger,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		Users:        users,
		Invitations:  invitations,
		Memberships:  memberships,
		AuditLog:     audit,
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured reports whether both OAuth credentials are set.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the flow by redirecting to Google's consent screen.                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("generate OAuth state failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(stateTTL)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("save OAuth state failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, fetches user info, finds or creates the account, and     |
| signs the user in.                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state)
	if err != nil {
		h.Log.Error("validate OAuth state failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("exchange OAuth code failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("fetch Google user info failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	u, created, err := h.findOrCreateUser(ctx, googleUser)
	if err != nil {
		if err == errWrongAuthMethod {
			h.Log.Info("Google sign-in refused for internal-auth account",
				zap.String("email", googleUser.Email))
			http.Redirect(w, r, "/login?error=use_password", http.StatusSeeOther)
			return
		}
		h.Log.Error("find or create user failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if created {
		h.AuditLog.UserRegistered(ctx, r, u.ID, u.AuthMethod, u.Email)
		h.resumePendingAccepts(ctx, r, u)
	}

	h.signInAndRedirect(w, r, u, returnURL)
}

/*─────────────────────────────────────────────────────────────────────────────*
| User lookup                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

var errWrongAuthMethod = fmt.Errorf("account uses password sign-in")

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

// findOrCreateUser looks up the account by email, creating one on first
// Google sign-in. Returns errWrongAuthMethod when the email belongs to a
// password account.
func (h *Handler) findOrCreateUser(ctx context.Context, googleUser *googleUserInfo) (*models.User, bool, error) {
	email := normalize.Email(googleUser.Email)

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByEmail(ctxTimeout, email)
	switch err {
	case nil:
		if u.AuthMethod != models.AuthMethodGoogle {
			return nil, false, errWrongAuthMethod
		}
		return u, false, nil
	case mongo.ErrNoDocuments:
		// first sign-in, fall through to create
	default:
		return nil, false, err
	}

	name := normalize.Name(googleUser.Name)
	if name == "" {
		name = email
	}

	nu, err := h.Users.Create(ctxTimeout, models.User{
		FullName:   name,
		Email:      email,
		AuthMethod: models.AuthMethodGoogle,
	})
	if err == userstore.ErrDuplicateEmail {
		// lost a concurrent first-sign-in race; re-read
		u, err = h.Users.GetByEmail(ctxTimeout, email)
		if err != nil {
			return nil, false, err
		}
		if u.AuthMethod != models.AuthMethodGoogle {
			return nil, false, errWrongAuthMethod
		}
		return u, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &nu, true, nil
}

// resumePendingAccepts completes invitation accepts recorded before this
// email had an account.
func (h *Handler) resumePendingAccepts(ctx context.Context, r *http.Request, u *models.User) {
	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	pending, err := h.Invitations.ListAcceptedPendingRegistration(ctxTimeout, u.Email)
	if err != nil {
		h.Log.Error("list pending accepts failed", zap.Error(err), zap.String("email", u.Email))
		return
	}

	for _, inv := range pending {
		if err := h.Invitations.Accept(ctxTimeout, inv.ID); err != nil {
			h.Log.Warn("resume accept failed",
				zap.Error(err),
				zap.String("invitation_id", inv.ID.Hex()))
			continue
		}
		if _, err := h.Memberships.Add(ctxTimeout, inv.RenovationID, u.ID, models.RoleMember); err != nil {
			h.Log.Error("add membership for resumed accept failed",
				zap.Error(err),
				zap.String("invitation_id", inv.ID.Hex()),
				zap.String("renovation_id", inv.RenovationID.Hex()))
			continue
		}
		h.AuditLog.InvitationAccepted(ctxTimeout, r, u.ID, inv.RenovationID, u.Email)
		h.AuditLog.MemberJoined(ctxTimeout, r, u.ID, inv.RenovationID)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session creation                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) signInAndRedirect(w http.ResponseWriter, r *http.Request, u *models.User, returnURL string) {
	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", u.Email))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}

	h.AuditLog.GoogleSignIn(r.Context(), r, u.ID, u.Email)

	h.Log.Info("user signed in via Google",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email))

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
