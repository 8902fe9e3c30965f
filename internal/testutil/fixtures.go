// internal/testutil/fixtures.go
package testutil

import (
	"testing"

	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	renostore "github.com/dalemusser/renohub/internal/app/store/renovations"
	userstore "github.com/dalemusser/renohub/internal/app/store/users"
	"github.com/dalemusser/renohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser inserts an internal-auth user with a bcrypt hash of "password".
func CreateUser(t *testing.T, users *userstore.Store, fullName, email string) models.User {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	u, err := users.Create(ctx, models.User{
		FullName:   fullName,
		Email:      email,
		AuthMethod: models.AuthMethodInternal,
		PassHash:   string(hash),
	})
	if err != nil {
		t.Fatalf("create user %q failed: %v", email, err)
	}
	return u
}

// CreateGoogleUser inserts a user with no password hash.
func CreateGoogleUser(t *testing.T, users *userstore.Store, fullName, email string) models.User {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	u, err := users.Create(ctx, models.User{
		FullName:   fullName,
		Email:      email,
		AuthMethod: models.AuthMethodGoogle,
	})
	if err != nil {
		t.Fatalf("create google user %q failed: %v", email, err)
	}
	return u
}

// CreateRenovation inserts a renovation plus its owner membership, the same
// pair the create flow writes.
func CreateRenovation(t *testing.T, renos *renostore.Store, members *membershipstore.Store, name string, ownerID primitive.ObjectID, isPublic bool) models.Renovation {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	ren := renostore.NewRenovation(name, "", ownerID, isPublic)
	if err := renos.Insert(ctx, ren); err != nil {
		t.Fatalf("insert renovation %q failed: %v", name, err)
	}
	if _, err := members.Add(ctx, ren.ID, ownerID, models.RoleOwner); err != nil {
		t.Fatalf("add owner membership failed: %v", err)
	}
	return ren
}

// CreateMembership adds a plain member to a renovation.
func CreateMembership(t *testing.T, members *membershipstore.Store, renovationID, userID primitive.ObjectID) models.Membership {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	m, err := members.Add(ctx, renovationID, userID, models.RoleMember)
	if err != nil {
		t.Fatalf("add membership failed: %v", err)
	}
	return m
}

// CreateInvitation issues a pending invitation for the given email.
func CreateInvitation(t *testing.T, invitations *invitationstore.Store, renovationID primitive.ObjectID, email string) models.Invitation {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	inv, err := invitations.Create(ctx, renovationID, email)
	if err != nil {
		t.Fatalf("create invitation for %q failed: %v", email, err)
	}
	return inv
}
