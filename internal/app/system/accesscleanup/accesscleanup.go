// Package accesscleanup coordinates the cascading cleanup that follows
// membership and visibility changes. The rules hinge on visibility: a public
// renovation is browsable by anyone, so losing membership does not invalidate
// a recent-access row; a private one is member-only, so access history for
// non-members has to go.
package accesscleanup

import (
	"context"

	invitationstore "github.com/dalemusser/renohub/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/renohub/internal/app/store/memberships"
	recentaccessstore "github.com/dalemusser/renohub/internal/app/store/recentaccess"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Coordinator applies the cleanup rules. It never initiates membership or
// visibility changes itself; callers invoke it after the primary mutation.
type Coordinator struct {
	Memberships  *membershipstore.Store
	Invitations  *invitationstore.Store
	RecentAccess *recentaccessstore.Store
	Log          *zap.Logger
}

func New(m *membershipstore.Store, i *invitationstore.Store, r *recentaccessstore.Store, log *zap.Logger) *Coordinator {
	return &Coordinator{Memberships: m, Invitations: i, RecentAccess: r, Log: log}
}

// OnMemberRemoved runs after a membership row is deleted. Pending invitations
// for the removed member's email are expired so a stale link cannot re-admit
// them, and if the renovation is private their access history goes too. For a
// public renovation the history stays, since they can still browse it.
func (c *Coordinator) OnMemberRemoved(ctx context.Context, renovationID, userID primitive.ObjectID, email string, isPublic bool) error {
	if err := c.Invitations.ExpirePendingByEmail(ctx, renovationID, email); err != nil {
		return err
	}
	if isPublic {
		return nil
	}
	return c.RecentAccess.DeleteForUser(ctx, renovationID, userID)
}

// OnVisibilityChanged runs after a renovation's is_public flag flips. Going
// private strips access history from everyone who is not a current member.
// Going public removes nothing.
func (c *Coordinator) OnVisibilityChanged(ctx context.Context, renovationID primitive.ObjectID, isPublic bool) error {
	if isPublic {
		return nil
	}
	memberIDs, err := c.Memberships.MemberUserIDs(ctx, renovationID)
	if err != nil {
		return err
	}
	return c.RecentAccess.DeleteNonMembers(ctx, renovationID, memberIDs)
}

// OnRenovationDeleted cascades a renovation delete: memberships, invitations,
// and every access row, regardless of visibility.
func (c *Coordinator) OnRenovationDeleted(ctx context.Context, renovationID primitive.ObjectID) error {
	removed, err := c.Memberships.DeleteByRenovation(ctx, renovationID)
	if err != nil {
		return err
	}
	if err := c.Invitations.DeleteByRenovation(ctx, renovationID); err != nil {
		return err
	}
	if err := c.RecentAccess.DeleteByRenovation(ctx, renovationID); err != nil {
		return err
	}
	c.Log.Info("renovation cascade cleanup complete",
		zap.String("renovation_id", renovationID.Hex()),
		zap.Int64("memberships_removed", removed))
	return nil
}
