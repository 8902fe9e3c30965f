// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/app/system/viewdata"
	"github.com/dalemusser/renohub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// inviteSweep runs for the lifetime of the process; Shutdown stops it.
var inviteSweep *workers.InviteSweep

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	viewdata.Init(appCfg.SiteName)

	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		return err
	}

	// Expiry is enforced lazily at token resolution; the sweep keeps the
	// owner-facing pending lists tidy between visits.
	invites := invitationstore.New(deps.MongoDatabase, appCfg.InviteExpiry)
	inviteSweep = workers.NewInviteSweep(invites, logger, appCfg.InviteSweepInterval)
	inviteSweep.Start()

	return nil
}
