// internal/app/store/recentaccess/recentaccessstore.go
package recentaccessstore

import (
	"context"
	"time"

	"github.com/dalemusser/renohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages recent-access rows, one per (renovation, user), used for the
// dashboard's recently-viewed list.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("recent_access")}
}

// Record upserts the access row for (renovationID, userID), refreshing its
// timestamp. The unique index on the pair keeps it one row per viewer.
func (s *Store) Record(ctx context.Context, renovationID, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"renovation_id": renovationID, "user_id": userID},
		bson.M{
			"$set": bson.M{"accessed_at": now},
			"$setOnInsert": bson.M{
				"_id":           primitive.NewObjectID(),
				"renovation_id": renovationID,
				"user_id":       userID,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// DeleteForUser removes the access row a single user holds for a renovation.
func (s *Store) DeleteForUser(ctx context.Context, renovationID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"renovation_id": renovationID, "user_id": userID})
	return err
}

// DeleteNonMembers removes access rows for a renovation held by anyone not in
// keepUserIDs. Used when a renovation goes private: public browsers lose
// their history, members keep theirs.
func (s *Store) DeleteNonMembers(ctx context.Context, renovationID primitive.ObjectID, keepUserIDs []primitive.ObjectID) error {
	if keepUserIDs == nil {
		keepUserIDs = []primitive.ObjectID{}
	}
	_, err := s.c.DeleteMany(ctx, bson.M{
		"renovation_id": renovationID,
		"user_id":       bson.M{"$nin": keepUserIDs},
	})
	return err
}

// DeleteByRenovation removes every access row for a renovation.
func (s *Store) DeleteByRenovation(ctx context.Context, renovationID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"renovation_id": renovationID})
	return err
}

// RecentForUser returns the user's most recently accessed renovation rows,
// newest first, capped at limit.
func (s *Store) RecentForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.RecentAccess, error) {
	opts := options.Find().SetSort(bson.D{{Key: "accessed_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.RecentAccess
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
