// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses. Pending is the only non-terminal status; once an
// invitation is accepted, declined, or expired it never changes again.
const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusDeclined = "declined"
	InviteStatusExpired  = "expired"
)

// InviteStatuses is the canonical list of invitation statuses, used to build
// schema enums.
var InviteStatuses = []string{
	InviteStatusPending,
	InviteStatusAccepted,
	InviteStatusDeclined,
	InviteStatusExpired,
}

// Invitation records a token-bearing proposal that an email address become a
// member of a renovation. The token is the sole credential proving possession
// of the invitation; the record is never hard-deleted so resolved invitations
// remain for history.
type Invitation struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Token        string              `bson:"token" json:"token"` // UUID string, unique
	RenovationID primitive.ObjectID  `bson:"renovation_id" json:"renovation_id"`
	Email        string              `bson:"email" json:"email"`               // always stored lowercase
	UserID       *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id"` // set when the email matched an account at creation
	Status       string              `bson:"status" json:"status"`
	ExpiresAt    time.Time           `bson:"expires_at" json:"expires_at"`

	// AcceptedPendingRegistration is set when an unregistered recipient
	// followed the accept link and was routed to registration; the accept
	// resumes once they register with the matching email.
	AcceptedPendingRegistration bool `bson:"accepted_pending_registration" json:"accepted_pending_registration"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Resolved reports whether the invitation has reached a terminal status.
func (i *Invitation) Resolved() bool {
	return i.Status != InviteStatusPending
}
