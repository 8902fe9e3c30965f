// internal/domain/models/renovation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Renovation is a shared renovation project users collaborate on.
//
// NOTE:
//   - Member lists are not embedded on Renovation.
//     All membership is stored in the renovation_members collection.
//   - IsPublic controls whether non-members may browse and view the
//     renovation; flipping it to false triggers recent-access cleanup.
type Renovation struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"` // sanitized HTML
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	IsPublic    bool               `bson:"is_public" json:"is_public"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
