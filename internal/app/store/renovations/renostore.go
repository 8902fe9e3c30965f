// internal/app/store/renovations/renostore.go
package renostore

import (
	"context"
	"time"

	"github.com/dalemusser/renohub/internal/app/system/normalize"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("renovations")}
}

// GetByID loads a renovation by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Renovation, error) {
	var ren models.Renovation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ren); err != nil {
		return nil, err
	}
	return &ren, nil
}

// Insert writes a renovation document. The caller is responsible for pairing
// this with the owner membership inside a transaction; see the renovations
// feature's create handler.
func (s *Store) Insert(ctx context.Context, ren models.Renovation) error {
	_, err := s.c.InsertOne(ctx, ren)
	return err
}

// NewRenovation builds a renovation document with normalized fields and
// timestamps set, without persisting it.
func NewRenovation(name, description string, ownerID primitive.ObjectID, isPublic bool) models.Renovation {
	now := time.Now()
	name = normalize.Name(name)
	return models.Renovation{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: description,
		OwnerID:     ownerID,
		IsPublic:    isPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Update sets the mutable fields of a renovation.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description string) error {
	name = normalize.Name(name)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": description,
		"updated_at":  time.Now(),
	}})
	return err
}

// SetVisibility flips the is_public flag. Returns the previous value so the
// caller can decide whether cleanup is needed.
func (s *Store) SetVisibility(ctx context.Context, id primitive.ObjectID, isPublic bool) (wasPublic bool, err error) {
	var prev struct {
		IsPublic bool `bson:"is_public"`
	}
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_public": isPublic, "updated_at": time.Now()}},
	).Decode(&prev)
	if err != nil {
		return false, err
	}
	return prev.IsPublic, nil
}

// Delete removes the renovation document. Membership, invitation, and
// recent-access cleanup are the caller's responsibility (inside one
// transaction).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ListPublic returns public renovations, newest first.
func (s *Store) ListPublic(ctx context.Context, limit int64) ([]models.Renovation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"is_public": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rens []models.Renovation
	if err := cur.All(ctx, &rens); err != nil {
		return nil, err
	}
	return rens, nil
}

// ListByIDs loads renovations for the given IDs.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Renovation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rens []models.Renovation
	if err := cur.All(ctx, &rens); err != nil {
		return nil, err
	}
	return rens, nil
}
