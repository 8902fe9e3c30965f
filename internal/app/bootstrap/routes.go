// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/renohub/internal/app/features/authgoogle"
	dashboardfeature "github.com/dalemusser/renohub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/renohub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/renohub/internal/app/features/health"
	homefeature "github.com/dalemusser/renohub/internal/app/features/home"
	invitationsfeature "github.com/dalemusser/renohub/internal/app/features/invitations"
	loginfeature "github.com/dalemusser/renohub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/renohub/internal/app/features/logout"
	membersfeature "github.com/dalemusser/renohub/internal/app/features/members"
	registerfeature "github.com/dalemusser/renohub/internal/app/features/register"
	renovationsfeature "github.com/dalemusser/renohub/internal/app/features/renovations"
	auditstore "github.com/dalemusser/renohub/internal/app/store/audit"
	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	"github.com/dalemusser/renohub/internal/app/store/oauthstate"
	recentstore "github.com/dalemusser/renohub/internal/app/store/recentaccess"
	renostore "github.com/dalemusser/renohub/internal/app/store/renovations"
	userstore "github.com/dalemusser/renohub/internal/app/store/users"
	"github.com/dalemusser/renohub/internal/app/system/accesscleanup"
	"github.com/dalemusser/renohub/internal/app/system/auditlog"
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/app/system/mailer"
	"github.com/dalemusser/renohub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	_ "github.com/dalemusser/renohub/internal/app/features/dashboard/views"
	_ "github.com/dalemusser/renohub/internal/app/features/home/views"
	_ "github.com/dalemusser/renohub/internal/app/features/invitations/views"
	_ "github.com/dalemusser/renohub/internal/app/features/login/views"
	_ "github.com/dalemusser/renohub/internal/app/features/members/views"
	_ "github.com/dalemusser/renohub/internal/app/features/register/views"
	_ "github.com/dalemusser/renohub/internal/app/features/renovations/views"
)

// BuildHandler constructs the root HTTP handler for the app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It builds the stores, the cleanup
// coordinator, and the audit logger, then mounts one feature router per
// application area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	// Boot the template engine once at startup. Dev mode enables template
	// reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	db := deps.MongoDatabase
	users := userstore.New(db)
	renovations := renostore.New(db)
	memberships := membershipstore.New(db)
	invitations := invitationstore.New(db, appCfg.InviteExpiry)
	recent := recentstore.New(db)
	states := oauthstate.New(db)

	cleanup := accesscleanup.New(memberships, invitations, recent, logger)
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Activity: appCfg.AuditLogActivity,
	})
	mail := mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, appCfg.MailFrom, logger)
	errLog := errorsfeature.NewErrorLogger(logger)

	googleHandler := authgooglefeature.NewHandler(
		users, invitations, memberships, audit, states,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)

	r := chi.NewRouter()

	// Loads SessionUser into context when signed in; CSRF tokens protect
	// every mutating form.
	r.Use(auth.LoadSessionUser)
	r.Use(csrf.Protect([]byte(appCfg.CSRFKey), csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, errLog, audit,
		ratelimit.NewLoginLimiter(), googleHandler.IsConfigured(), logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	registerHandler := registerfeature.NewHandler(db, users, invitations, memberships, errLog, audit, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.NotFound(errorsHandler.NotFound)

	// Signed-in home
	dashboardHandler := dashboardfeature.NewHandler(renovations, memberships, recent, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	// Renovations, with member management and invitations nested under each
	renovationsHandler := renovationsfeature.NewHandler(
		db, renovations, memberships, recent, cleanup, errLog, audit, logger)
	membersHandler := membersfeature.NewHandler(
		db, renovations, memberships, invitations, users, cleanup, errLog, audit, logger)
	invitationsHandler := invitationsfeature.NewHandler(
		db, renovations, memberships, invitations, users, mail, errLog, audit,
		ratelimit.NewInviteLimiter(), appCfg.BaseURL, logger)

	r.Mount("/renovations", renovationsfeature.Routes(
		renovationsHandler,
		membersfeature.Routes(membersHandler),
		invitationsfeature.InviteRoutes(invitationsHandler)))
	r.Mount("/browse", renovationsfeature.BrowseRoutes(renovationsHandler))

	// Emailed accept/decline links live at the site root
	invitationsfeature.TokenRoutes(r, invitationsHandler)

	return r, nil
}
