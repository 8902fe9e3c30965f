package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/app/system/authz"
	"github.com/dalemusser/renohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

func TestUserCtx_ReturnsUser(t *testing.T) {
	userID := testUserID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:    userID,
		Name:  "Alice Smith",
		Email: "alice@example.com",
	})

	name, actorID, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected UserCtx to return ok=true")
	}
	if name != "Alice Smith" {
		t.Errorf("expected name 'Alice Smith', got %q", name)
	}
	if actorID.Hex() != userID {
		t.Errorf("expected actorID %s, got %s", userID, actorID.Hex())
	}
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	_, actorID, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected UserCtx to return ok=false when no user")
	}
	if !actorID.IsZero() {
		t.Error("expected NilObjectID when no user")
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:   "not-a-valid-objectid",
		Name: "Broken",
	})

	_, _, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected UserCtx to fail closed on malformed user ID")
	}
}

func TestIsOwner(t *testing.T) {
	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()
	reno := &models.Renovation{ID: primitive.NewObjectID(), OwnerID: owner}

	if !authz.IsOwner(reno, owner) {
		t.Error("expected owner to be recognized")
	}
	if authz.IsOwner(reno, other) {
		t.Error("expected non-owner to be rejected")
	}
	if authz.IsOwner(nil, owner) {
		t.Error("expected nil renovation to be rejected")
	}
}

func TestCanView(t *testing.T) {
	public := &models.Renovation{ID: primitive.NewObjectID(), IsPublic: true}
	private := &models.Renovation{ID: primitive.NewObjectID(), IsPublic: false}

	if !authz.CanView(public, false) {
		t.Error("expected public renovation to be viewable by non-members")
	}
	if !authz.CanView(private, true) {
		t.Error("expected private renovation to be viewable by members")
	}
	if authz.CanView(private, false) {
		t.Error("expected private renovation to be hidden from non-members")
	}
	if authz.CanView(nil, true) {
		t.Error("expected nil renovation to be unviewable")
	}
}

func TestCanManageMembers(t *testing.T) {
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	reno := &models.Renovation{ID: primitive.NewObjectID(), OwnerID: owner}

	if !authz.CanManageMembers(reno, owner) {
		t.Error("expected owner to manage members")
	}
	if authz.CanManageMembers(reno, member) {
		t.Error("expected plain member to be denied member management")
	}
}
