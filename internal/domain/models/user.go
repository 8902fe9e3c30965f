// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AuthMethodInternal = "internal"
	AuthMethodGoogle   = "google"
)

// User represents an account that can own renovations and hold memberships.
//
// NOTE:
//   - Renovation membership is not embedded on User.
//     Use the renovation_members collection to discover a user's renovations.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`               // always stored lowercase
	AuthMethod string             `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // "internal" | "google"
	PassHash   string             `bson:"pass_hash,omitempty" json:"-"`     // bcrypt; empty for google accounts
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
