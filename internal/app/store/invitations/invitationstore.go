// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/renohub/internal/app/system/normalize"
	"github.com/dalemusser/renohub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// DefaultExpiry is how long an invitation stays open.
	DefaultExpiry = 7 * 24 * time.Hour
)

var (
	// ErrTokenMalformed is returned when a presented token does not parse as
	// a UUID. Checked before any lookup so probing with garbage never
	// touches the collection.
	ErrTokenMalformed = errors.New("invitation token is malformed")
	// ErrTokenNotFound is returned when no invitation carries the token.
	ErrTokenNotFound = errors.New("invitation not found")
	// ErrTokenExpired is returned when the invitation exists but its expiry
	// timestamp has passed. Expiry is evaluated lazily here; the background
	// sweep is cosmetic.
	ErrTokenExpired = errors.New("invitation has expired")
	// ErrAlreadyResolved is returned when a transition is attempted on an
	// invitation that is no longer pending. A losing concurrent accept sees
	// this rather than double-applying.
	ErrAlreadyResolved = errors.New("invitation has already been resolved")
	// ErrDuplicatePending is returned when a pending invitation already
	// exists for the (renovation, email) pair.
	ErrDuplicatePending = errors.New("a pending invitation already exists for this email")
)

// Store manages invitation records.
type Store struct {
	c      *mongo.Collection
	users  *mongo.Collection
	expiry time.Duration
}

// New creates a Store with the specified expiry window.
// If expiry is 0 or negative, DefaultExpiry (7 days) is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{
		c:      db.Collection("invitations"),
		users:  db.Collection("users"),
		expiry: expiry,
	}
}

// Expiry returns the expiry window for new invitations.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// Create issues a new pending invitation for (renovationID, email).
//
// The email is normalized to lowercase. If it matches an existing account the
// invitation carries a back-reference to that user, which later lets the
// accept path skip registration. The token is a freshly generated UUID; the
// space is large enough that a collision is treated as a hard error, not a
// retried case.
func (s *Store) Create(ctx context.Context, renovationID primitive.ObjectID, email string) (models.Invitation, error) {
	email = normalize.Email(email)

	var userID *primitive.ObjectID
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	switch {
	case err == nil:
		userID = &u.ID
	case err == mongo.ErrNoDocuments:
		// unregistered invitee; email-only invitation
	default:
		return models.Invitation{}, fmt.Errorf("resolve invitee account: %w", err)
	}

	now := time.Now().UTC()
	inv := models.Invitation{
		ID:           primitive.NewObjectID(),
		Token:        uuid.NewString(),
		RenovationID: renovationID,
		Email:        email,
		UserID:       userID,
		Status:       models.InviteStatusPending,
		ExpiresAt:    now.Add(s.expiry),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			// The partial unique index on (renovation_id, email, pending)
			// also covers the token index, but a UUID collision is
			// effectively impossible; a duplicate here means a concurrent
			// invite for the same address won the race.
			return models.Invitation{}, ErrDuplicatePending
		}
		return models.Invitation{}, fmt.Errorf("insert invitation: %w", err)
	}
	return inv, nil
}

// ResolveToken looks up an invitation by token for the accept/decline flow.
//
// It distinguishes, in order: a malformed token (never hits the database), a
// token with no record, a lapsed invitation (pending but past its expiry,
// flipped to expired on the spot), and an invitation already in a terminal
// state. The invitation is returned alongside ErrTokenExpired and
// ErrAlreadyResolved so callers can render context for records that do exist.
func (s *Store) ResolveToken(ctx context.Context, token string) (*models.Invitation, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrTokenMalformed
	}

	var inv models.Invitation
	err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&inv)
	if err == mongo.ErrNoDocuments {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	if inv.Status == models.InviteStatusPending && time.Now().After(inv.ExpiresAt) {
		// Lazy expiry: authoritative regardless of whether the sweep ran.
		if err := s.Expire(ctx, inv.ID); err != nil {
			return nil, err
		}
		inv.Status = models.InviteStatusExpired
		return &inv, ErrTokenExpired
	}

	if inv.Status == models.InviteStatusExpired {
		return &inv, ErrTokenExpired
	}
	if inv.Status != models.InviteStatusPending {
		return &inv, ErrAlreadyResolved
	}
	return &inv, nil
}

// GetByID loads an invitation by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// transition performs the one legal status move, pending → to, as a single
// conditional update. A concurrent resolver that loses the race observes
// ErrAlreadyResolved deterministically.
func (s *Store) transition(ctx context.Context, id primitive.ObjectID, to string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InviteStatusPending},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

// Accept moves a pending invitation to accepted.
// Returns ErrAlreadyResolved for any other current status.
func (s *Store) Accept(ctx context.Context, id primitive.ObjectID) error {
	return s.transition(ctx, id, models.InviteStatusAccepted)
}

// Decline moves a pending invitation to declined.
// Returns ErrAlreadyResolved for any other current status.
func (s *Store) Decline(ctx context.Context, id primitive.ObjectID) error {
	return s.transition(ctx, id, models.InviteStatusDeclined)
}

// Expire moves a pending invitation to expired. Unlike Accept and Decline it
// is idempotent: expiring an invitation that is already terminal is a no-op,
// not an error, because both the sweep and the member-removal path may race
// with resolution.
func (s *Store) Expire(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InviteStatusPending},
		bson.M{"$set": bson.M{"status": models.InviteStatusExpired, "updated_at": time.Now().UTC()}},
	)
	return err
}

// ExpirePendingByEmail expires any pending invitation for (renovationID,
// email). Used when a member is removed so a dangling invite cannot re-admit
// them. Idempotent.
func (s *Store) ExpirePendingByEmail(ctx context.Context, renovationID primitive.ObjectID, email string) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{
			"renovation_id": renovationID,
			"email":         normalize.Email(email),
			"status":        models.InviteStatusPending,
		},
		bson.M{"$set": bson.M{"status": models.InviteStatusExpired, "updated_at": time.Now().UTC()}},
	)
	return err
}

// MarkAcceptedPendingRegistration flags a pending invitation whose recipient
// followed the accept link without an account. Status is left untouched; the
// accept resumes after registration.
func (s *Store) MarkAcceptedPendingRegistration(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InviteStatusPending},
		bson.M{"$set": bson.M{"accepted_pending_registration": true, "updated_at": time.Now().UTC()}},
	)
	return err
}

// ListAcceptedPendingRegistration returns the pending invitations for an
// email that were flagged during an anonymous accept. Invitations past
// their expiry are excluded: lapsing between the flag and the registration
// forfeits the accept, the same as lapsing before the link was opened.
func (s *Store) ListAcceptedPendingRegistration(ctx context.Context, email string) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"email":                         normalize.Email(email),
		"status":                        models.InviteStatusPending,
		"accepted_pending_registration": true,
		"expires_at":                    bson.M{"$gt": time.Now().UTC()},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var invs []models.Invitation
	if err := cur.All(ctx, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// PendingEmails returns the emails holding a pending invitation for the
// renovation. Feeds invite validation.
func (s *Store) PendingEmails(ctx context.Context, renovationID primitive.ObjectID) ([]string, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"renovation_id": renovationID,
		"status":        models.InviteStatusPending,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var emails []string
	for cur.Next(ctx) {
		var row struct {
			Email string `bson:"email"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		emails = append(emails, row.Email)
	}
	return emails, cur.Err()
}

// ListByRenovation returns every invitation for a renovation, newest first.
func (s *Store) ListByRenovation(ctx context.Context, renovationID primitive.ObjectID) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx, bson.M{"renovation_id": renovationID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var invs []models.Invitation
	if err := cur.All(ctx, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// DeleteByRenovation removes every invitation for a renovation. Part of the
// renovation delete cascade.
func (s *Store) DeleteByRenovation(ctx context.Context, renovationID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"renovation_id": renovationID})
	return err
}

// ExpireLapsed flips every pending invitation whose expiry has passed to
// expired and returns how many were flipped. This is the sweep operation; it
// is safe to run at any cadence (or never) since ResolveToken applies the
// same check lazily.
func (s *Store) ExpireLapsed(ctx context.Context) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":     models.InviteStatusPending,
			"expires_at": bson.M{"$lt": time.Now().UTC()},
		},
		bson.M{"$set": bson.M{"status": models.InviteStatusExpired, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
