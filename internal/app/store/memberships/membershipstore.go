// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/renohub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("renovation_members")}
}

var (
	errBadRole = errors.New(`role must be "owner" or "member"`)

	// ErrAlreadyMember is returned when a membership already exists for the
	// (renovation, user) pair. Add re-checks this at commit time even though
	// invite validation should have caught it, to close the race between
	// validation and commit.
	ErrAlreadyMember = errors.New("user is already a member of this renovation")
	// ErrNotAMember is returned by Remove when no membership exists.
	ErrNotAMember = errors.New("user is not a member of this renovation")
	// ErrCannotRemoveOwner is returned by Remove when the target membership
	// holds the owner role. The owner can only disappear with the renovation.
	ErrCannotRemoveOwner = errors.New("the renovation owner cannot be removed")
)

// Add creates a membership for (renovationID, userID) with the given role.
// The unique index on (renovation_id, user_id) makes the duplicate check
// race-free: a concurrent insert surfaces as ErrAlreadyMember.
func (s *Store) Add(ctx context.Context, renovationID, userID primitive.ObjectID, role string) (models.Membership, error) {
	if role != models.RoleOwner && role != models.RoleMember {
		return models.Membership{}, errBadRole
	}

	m := models.Membership{
		ID:           primitive.NewObjectID(),
		RenovationID: renovationID,
		UserID:       userID,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Membership{}, ErrAlreadyMember
		}
		return models.Membership{}, err
	}
	return m, nil
}

// Remove deletes the membership for (renovationID, userID). It fails closed:
// a missing membership is ErrNotAMember and the owner row is never deleted
// through this path.
func (s *Store) Remove(ctx context.Context, renovationID, userID primitive.ObjectID) error {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"renovation_id": renovationID, "user_id": userID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return ErrNotAMember
	}
	if err != nil {
		return err
	}
	if m.Role == models.RoleOwner {
		return ErrCannotRemoveOwner
	}

	// Role guard repeated in the filter so a concurrent role change cannot
	// slip an owner deletion between the read and the delete.
	res, err := s.c.DeleteOne(ctx, bson.M{
		"renovation_id": renovationID,
		"user_id":       userID,
		"role":          bson.M{"$ne": models.RoleOwner},
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotAMember
	}
	return nil
}

// Get loads the membership for (renovationID, userID), if any.
func (s *Store) Get(ctx context.Context, renovationID, userID primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	if err := s.c.FindOne(ctx, bson.M{"renovation_id": renovationID, "user_id": userID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists checks if a membership exists for the given renovation and user.
func (s *Store) Exists(ctx context.Context, renovationID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"renovation_id": renovationID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByRenovation returns all memberships for a renovation, optionally
// filtered by role. If role is empty, returns all memberships.
func (s *Store) ListByRenovation(ctx context.Context, renovationID primitive.ObjectID, role string) ([]models.Membership, error) {
	filter := bson.M{"renovation_id": renovationID}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUser returns all memberships held by a user.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// MemberUserIDs returns the user IDs of every member of a renovation.
func (s *Store) MemberUserIDs(ctx context.Context, renovationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"renovation_id": renovationID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			UserID primitive.ObjectID `bson:"user_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.UserID)
	}
	return ids, cur.Err()
}

// CountByRenovation returns the count of memberships for a renovation,
// optionally filtered by role.
func (s *Store) CountByRenovation(ctx context.Context, renovationID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"renovation_id": renovationID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}

// DeleteByRenovation removes all memberships for a renovation. Used only by
// renovation deletion, which is allowed to take the owner row with it.
// Returns the number of documents deleted.
func (s *Store) DeleteByRenovation(ctx context.Context, renovationID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"renovation_id": renovationID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
