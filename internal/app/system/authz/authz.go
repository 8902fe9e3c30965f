// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "", NilObjectID, false. This ensures callers can trust that ok=true means a
// valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed for security.
		// This should not happen in normal operation; indicates session corruption.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}

// IsOwner reports whether userID owns the renovation.
func IsOwner(reno *models.Renovation, userID primitive.ObjectID) bool {
	return reno != nil && reno.OwnerID == userID
}

// CanView reports whether a user may view the renovation. Public renovations
// are visible to everyone, including anonymous visitors; private ones only to
// members (which always includes the owner).
func CanView(reno *models.Renovation, isMember bool) bool {
	if reno == nil {
		return false
	}
	return reno.IsPublic || isMember
}

// CanManageMembers reports whether userID may invite to or remove members
// from the renovation. Only the owner can.
func CanManageMembers(reno *models.Renovation, userID primitive.ObjectID) bool {
	return IsOwner(reno, userID)
}
