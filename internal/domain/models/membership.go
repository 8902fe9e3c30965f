// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Membership is the authoritative join between users and renovations.
// Exactly one document per (renovation_id, user_id); role is a scalar
// ("owner"|"member"), and exactly one owner document exists per renovation.
type Membership struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RenovationID primitive.ObjectID `bson:"renovation_id" json:"renovation_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role         string             `bson:"role" json:"role"` // "owner" | "member"
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}
