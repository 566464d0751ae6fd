// Package circles implements circle membership: which member identities
// belong to which circle. Circle ids double as ACL member ids on the ACL
// side-index.
package circles

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// AddMembers inserts one membership row per member.
	AddMembers(ctx context.Context, identityID, circleID uuid.UUID, members []uuid.UUID) error

	// RemoveMembers deletes the listed members from the circle.
	RemoveMembers(ctx context.Context, identityID, circleID uuid.UUID, members []uuid.UUID) error

	// ListMembers returns the member ids of a circle in unsigned byte order.
	ListMembers(ctx context.Context, identityID, circleID uuid.UUID) ([]uuid.UUID, error)

	// ListCirclesForMember returns the circles a member belongs to.
	ListCirclesForMember(ctx context.Context, identityID, memberID uuid.UUID) ([]uuid.UUID, error)

	// DeleteCircle removes every membership row of the circle.
	DeleteCircle(ctx context.Context, identityID, circleID uuid.UUID) error
}
