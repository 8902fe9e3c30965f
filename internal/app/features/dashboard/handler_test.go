package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/renohub/internal/app/features/dashboard"
	uierrors "github.com/dalemusser/renohub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	recentstore "github.com/dalemusser/renohub/internal/app/store/recentaccess"
	renostore "github.com/dalemusser/renohub/internal/app/store/renovations"
	userstore "github.com/dalemusser/renohub/internal/app/store/users"
	"github.com/dalemusser/renohub/internal/app/system/auth"
	"github.com/dalemusser/renohub/internal/domain/models"
	"github.com/dalemusser/renohub/internal/testutil"
	"go.uber.org/zap"
)

type testEnv struct {
	handler     *dashboard.Handler
	users       *userstore.Store
	renos       *renostore.Store
	memberships *membershipstore.Store
	recent      *recentstore.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	renos := renostore.New(db)
	memberships := membershipstore.New(db)
	recent := recentstore.New(db)

	h := dashboard.NewHandler(renos, memberships, recent, uierrors.NewErrorLogger(logger), logger)
	return testEnv{
		handler:     h,
		users:       userstore.New(db),
		renos:       renos,
		memberships: memberships,
		recent:      recent,
	}
}

func serveDashboard(h *dashboard.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()

	// Rendering may panic without initialized templates; redirect and error
	// paths complete before rendering.
	func() {
		defer func() { _ = recover() }()
		h.ServeDashboard(rec, req)
	}()
	return rec
}

func TestServeDashboard_UnauthenticatedRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := serveDashboard(env.handler, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q, want %q", loc, "/login")
	}
}

func TestServeDashboard_SignedInRenders(t *testing.T) {
	env := newTestEnv(t)
	u := testutil.CreateUser(t, env.users, "Dash User", "dash@example.com")
	testutil.CreateRenovation(t, env.renos, env.memberships, "Kitchen Remodel", u.ID, false)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	})
	rec := serveDashboard(env.handler, req)

	if rec.Code == http.StatusSeeOther {
		t.Error("expected no redirect for signed-in user")
	}
}

func TestServeDashboard_MemberOfOthersRenovation(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.users, "Owner", "owner@example.com")
	member := testutil.CreateUser(t, env.users, "Member", "member@example.com")
	ren := testutil.CreateRenovation(t, env.renos, env.memberships, "Bath Refresh", owner.ID, true)
	testutil.CreateMembership(t, env.memberships, ren.ID, member.ID)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The membership split feeding the dashboard: owner role on own
	// renovation, member role on the joined one.
	got, err := env.memberships.ListByUser(ctx, member.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("memberships: got %d, want 1", len(got))
	}
	if got[0].Role != models.RoleMember {
		t.Errorf("role: got %q, want %q", got[0].Role, models.RoleMember)
	}

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:    member.ID.Hex(),
		Name:  member.FullName,
		Email: member.Email,
	})
	rec := serveDashboard(env.handler, req)

	if rec.Code == http.StatusSeeOther {
		t.Error("expected no redirect for signed-in member")
	}
}
