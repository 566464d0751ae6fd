// Package outbox implements the outbound delivery queue: one row per
// pending (file, recipient) delivery. Items are checked out for processing
// oldest-first within priority, and checked back in on failure so a worker
// crash never loses them. The delivery workers themselves live outside
// this storage layer.
package outbox

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/models"
)

type Repository interface {
	// Add inserts or replaces the pending delivery for (file, recipient).
	Add(ctx context.Context, rec *models.OutboxRecord) error

	// CheckOutNext atomically claims the highest-priority, oldest pending
	// item, stamping it as checked out. Returns (nil, nil) when the queue
	// has no pending items.
	CheckOutNext(ctx context.Context, identityID uuid.UUID) (*models.OutboxRecord, error)

	// CompleteAndRemove deletes a delivered item.
	CompleteAndRemove(ctx context.Context, identityID uuid.UUID, driveID, fileID uuid.UUID, recipient string) error

	// CheckInAsFailed releases a checked-out item back to pending and
	// increments its attempt count.
	CheckInAsFailed(ctx context.Context, identityID uuid.UUID, driveID, fileID uuid.UUID, recipient string) error

	// CountPending returns the number of items not currently checked out.
	CountPending(ctx context.Context, identityID uuid.UUID) (int64, error)
}
