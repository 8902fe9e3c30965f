package gates_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/app/system/gates"
	"github.com/dalemusser/renohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testUserHex = "507f1f77bcf86cd799439011"

// Helper to create a request with user context
func withTestUser(r *http.Request) *http.Request {
	user := &auth.SessionUser{
		ID:    testUserHex, // Valid ObjectID hex
		Name:  "Test User",
		Email: "test@example.com",
	}
	return auth.WithTestUser(r, user)
}

func testUserID(t *testing.T) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(testUserHex)
	if err != nil {
		t.Fatalf("bad test user hex: %v", err)
	}
	return id
}

// Test RequireAuth

func TestRequireAuth_Authenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = withTestUser(req)
	rec := httptest.NewRecorder()

	result := gates.RequireAuth(rec, req, "/login")

	if !result.OK {
		t.Error("expected OK to be true for authenticated user")
	}
	if result.Name != "Test User" {
		t.Errorf("Name: got %q, want %q", result.Name, "Test User")
	}
	if result.UserID.IsZero() {
		t.Error("expected UserID to be set")
	}
}

func TestRequireAuth_NotAuthenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()

	result := gates.RequireAuth(rec, req, "/login")

	if result.OK {
		t.Error("expected OK to be false for unauthenticated user")
	}
	if rec.Code == http.StatusOK {
		t.Errorf("expected error status, got %d", rec.Code)
	}
}

// Test RequireOwner

func TestRequireOwner_AsOwner(t *testing.T) {
	req := httptest.NewRequest("GET", "/renovations/abc/edit", nil)
	req = withTestUser(req)
	rec := httptest.NewRecorder()

	reno := &models.Renovation{OwnerID: testUserID(t)}
	result := gates.RequireOwner(rec, req, reno, "Owner only", "/dashboard")

	if !result.OK {
		t.Error("expected OK to be true for owner")
	}
	if result.UserID != testUserID(t) {
		t.Error("expected UserID to match owner")
	}
}

func TestRequireOwner_NotOwner(t *testing.T) {
	req := httptest.NewRequest("GET", "/renovations/abc/edit", nil)
	req = withTestUser(req)
	rec := httptest.NewRecorder()

	reno := &models.Renovation{OwnerID: primitive.NewObjectID()}
	result := gates.RequireOwner(rec, req, reno, "Owner only", "/dashboard")

	if result.OK {
		t.Error("expected OK to be false for non-owner")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestRequireOwner_NotAuthenticated(t *testing.T) {
	req := httptest.NewRequest("GET", "/renovations/abc/edit", nil)
	rec := httptest.NewRecorder()

	reno := &models.Renovation{OwnerID: primitive.NewObjectID()}
	result := gates.RequireOwner(rec, req, reno, "Owner only", "/dashboard")

	if result.OK {
		t.Error("expected OK to be false for unauthenticated user")
	}
}

// Test RequireViewer

func TestRequireViewer_PublicAnonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/renovations/abc", nil)
	rec := httptest.NewRecorder()

	reno := &models.Renovation{OwnerID: primitive.NewObjectID(), IsPublic: true}
	result := gates.RequireViewer(rec, req, reno, false)

	if !result.OK {
		t.Error("expected anonymous viewer allowed on public renovation")
	}
	if !result.UserID.IsZero() {
		t.Error("expected zero UserID for anonymous viewer")
	}
}

func TestRequireViewer_PrivateMember(t *testing.T) {
	req := httptest.NewRequest("GET", "/renovations/abc", nil)
	req = withTestUser(req)
	rec := httptest.NewRecorder()

	reno := &models.Renovation{OwnerID: primitive.NewObjectID(), IsPublic: false}
	result := gates.RequireViewer(rec, req, reno, true)

	if !result.OK {
		t.Error("expected member allowed on private renovation")
	}
}

func TestRequireViewer_PrivateNonMember(t *testing.T) {
	req := httptest.NewRequest("GET", "/renovations/abc", nil)
	req = withTestUser(req)
	rec := httptest.NewRecorder()

	reno := &models.Renovation{OwnerID: primitive.NewObjectID(), IsPublic: false}
	result := gates.RequireViewer(rec, req, reno, false)

	if result.OK {
		t.Error("expected non-member blocked on private renovation")
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRequireViewer_PrivateAnonymous(t *testing.T) {
	req := httptest.NewRequest("GET", "/renovations/abc", nil)
	rec := httptest.NewRecorder()

	reno := &models.Renovation{OwnerID: primitive.NewObjectID(), IsPublic: false}
	result := gates.RequireViewer(rec, req, reno, false)

	if result.OK {
		t.Error("expected anonymous viewer blocked on private renovation")
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
