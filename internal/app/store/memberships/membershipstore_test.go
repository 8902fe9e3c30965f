package membershipstore_test

import (
	"testing"

	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/renohub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdd_DuplicateMembershipRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	renID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if _, err := store.Add(ctx, renID, userID, models.RoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, renID, userID, models.RoleMember); err != membershipstore.ErrAlreadyMember {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}

	// Same user in another renovation is a separate row.
	if _, err := store.Add(ctx, primitive.NewObjectID(), userID, models.RoleMember); err != nil {
		t.Fatalf("Add to other renovation failed: %v", err)
	}
}

func TestRemove_OwnerRowRefused(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	renID := primitive.NewObjectID()
	ownerID := primitive.NewObjectID()
	if _, err := store.Add(ctx, renID, ownerID, models.RoleOwner); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := store.Remove(ctx, renID, ownerID); err != membershipstore.ErrCannotRemoveOwner {
		t.Fatalf("expected ErrCannotRemoveOwner, got %v", err)
	}
	exists, err := store.Exists(ctx, renID, ownerID)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Fatal("owner membership must survive")
	}
}

func TestRemove_MissingMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Remove(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != membershipstore.ErrNotAMember {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}
}

func TestListByUser_SpansRenovations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	owned := primitive.NewObjectID()
	joined := primitive.NewObjectID()
	if _, err := store.Add(ctx, owned, userID, models.RoleOwner); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, joined, userID, models.RoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	rows, err := store.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(rows))
	}
	roles := map[primitive.ObjectID]string{}
	for _, m := range rows {
		roles[m.RenovationID] = m.Role
	}
	if roles[owned] != models.RoleOwner || roles[joined] != models.RoleMember {
		t.Fatalf("unexpected roles: %v", roles)
	}
}

func TestDeleteByRenovation_RemovesAllRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	renID := primitive.NewObjectID()
	if _, err := store.Add(ctx, renID, primitive.NewObjectID(), models.RoleOwner); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, renID, primitive.NewObjectID(), models.RoleMember); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	removed, err := store.DeleteByRenovation(ctx, renID)
	if err != nil {
		t.Fatalf("DeleteByRenovation failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	count, err := store.CountByRenovation(ctx, renID, "")
	if err != nil {
		t.Fatalf("CountByRenovation failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 remaining, got %d", count)
	}
}
