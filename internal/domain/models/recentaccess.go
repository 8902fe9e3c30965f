// internal/domain/models/recentaccess.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecentAccess marks that a user viewed a renovation. One document per
// (renovation_id, user_id); the timestamp is refreshed on each view.
//
// Cleanup rules (enforced by accesscleanup, never at call sites):
//   - a non-member's document may exist only while the renovation is public
//   - a removed member's document is purged if the renovation is private
//   - deleting a renovation purges every document for it
type RecentAccess struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RenovationID primitive.ObjectID `bson:"renovation_id" json:"renovation_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	AccessedAt   time.Time          `bson:"accessed_at" json:"accessed_at"`
}
