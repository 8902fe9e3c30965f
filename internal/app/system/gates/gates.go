// Package gates provides authorization gate functions for HTTP handlers.
// Gates check authentication and authorization, rendering appropriate error
// pages when checks fail.
//
// # Authorization Tiers
//
// RenoHub uses a three-tier authorization approach:
//
//  1. Route-Level Middleware (auth.RequireSignedIn)
//     Applied in routes.go files for coarse-grained access control.
//     Routes behind RequireSignedIn never see anonymous requests.
//
//  2. Handler-Level Gates (this package)
//     Used in handlers whose authorization depends on the renovation being
//     accessed: only the owner may manage members or edit, and private
//     renovations are visible only to members. Gates render error pages and
//     return the user context so handlers can bail out with a single check.
//
//  3. Pure Checks (internal/app/system/authz)
//     DB-free predicates (IsOwner, CanView, CanManageMembers) for call sites
//     that render their own errors.
//
// Don't use gates in handlers that only need authentication; routes.go
// middleware already covers that. Use authz.UserCtx(r) there instead.
package gates

import (
	"net/http"

	uierrors "github.com/dalemusser/renohub/internal/app/features/errors"
	"github.com/dalemusser/renohub/internal/app/system/authz"
	"github.com/dalemusser/renohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result contains the result of an authorization gate check.
type Result struct {
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is authenticated.
// If not authenticated, it renders an unauthorized error and returns OK=false.
// The loginURL parameter specifies where to redirect for login.
func RequireAuth(w http.ResponseWriter, r *http.Request, loginURL string) Result {
	name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, loginURL)
		return Result{OK: false}
	}
	return Result{Name: name, UserID: uid, OK: true}
}

// RequireOwner ensures the user is authenticated and owns the renovation.
// If not authenticated, renders unauthorized error.
// If authenticated but not the owner, renders forbidden error with the
// provided message and fallback URL.
func RequireOwner(w http.ResponseWriter, r *http.Request, reno *models.Renovation, forbiddenMsg, fallbackURL string) Result {
	name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return Result{OK: false}
	}
	if !authz.IsOwner(reno, uid) {
		uierrors.RenderForbidden(w, r, forbiddenMsg, fallbackURL)
		return Result{OK: false}
	}
	return Result{Name: name, UserID: uid, OK: true}
}

// RequireViewer ensures the requester may view the renovation: public
// renovations are open to everyone, private ones to members only.
// Anonymous viewers of public renovations get Result{OK: true} with a zero
// UserID. Private renovations render not-found rather than forbidden so their
// existence is not revealed.
func RequireViewer(w http.ResponseWriter, r *http.Request, reno *models.Renovation, isMember bool) Result {
	name, uid, _ := authz.UserCtx(r)
	if !authz.CanView(reno, isMember) {
		uierrors.RenderNotFound(w, r)
		return Result{OK: false}
	}
	return Result{Name: name, UserID: uid, OK: true}
}
