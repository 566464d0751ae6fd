// Package inbox implements the receive queue: one row per incoming item
// awaiting processing. Items are popped for processing oldest-first within
// priority and marked complete or failed afterwards; the processing
// workers themselves live outside this storage layer.
package inbox

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/models"
)

type Repository interface {
	// Add inserts or replaces the inbox item for (drive, file).
	Add(ctx context.Context, rec *models.InboxRecord) error

	// PopNext atomically claims the highest-priority, oldest unprocessed
	// item of the drive, stamping it as popped. Returns (nil, nil) when
	// nothing is pending.
	PopNext(ctx context.Context, scope models.DriveScope) (*models.InboxRecord, error)

	// MarkComplete deletes a processed item.
	MarkComplete(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error

	// MarkFailure releases a popped item back to pending.
	MarkFailure(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error

	// CountPending returns the number of unpopped items in the drive.
	CountPending(ctx context.Context, scope models.DriveScope) (int64, error)
}
