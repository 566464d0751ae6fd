// Package tagindex implements the tag side-index: zero or more
// (file, tag) rows per file, mutated together with the main record inside
// the caller's commit unit of work.
package tagindex

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/models"
)

type Repository interface {
	// InsertMany adds one row per tag for the given file.
	InsertMany(ctx context.Context, scope models.DriveScope, fileID uuid.UUID, tags []uuid.UUID) error

	// DeleteAll removes every tag row of the given file.
	DeleteAll(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error

	// DeleteMany removes the listed tags from the given file.
	DeleteMany(ctx context.Context, scope models.DriveScope, fileID uuid.UUID, tags []uuid.UUID) error

	// GetTags lists the file's tags in unsigned byte order.
	GetTags(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) ([]uuid.UUID, error)
}
