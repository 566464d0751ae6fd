// Package mainindex implements the main record table of the identity
// database: one row per (identity, drive, file) carrying every queryable
// field and the opaque header blobs, plus the filtered, cursor-paginated
// query engines over it (QueryBatch, QueryBatchAuto, QueryModified).
package mainindex

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/models"
)

// Repository describes single-row and batch-query operations on the main
// index. Implementations are backed by the embedded SQLite database.
type Repository interface {
	// Insert writes a new main record. A duplicate (file id, unique id or
	// global transit id) surfaces as common.ErrUniqueConstraint.
	Insert(ctx context.Context, rec *models.MainRecord) error

	// Update rewrites every mutable column of an existing record.
	// Returns common.ErrNotFound if no row matches.
	Update(ctx context.Context, rec *models.MainRecord) error

	// Delete removes the record. Returns common.ErrNotFound if no row matches.
	Delete(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error

	GetByFileID(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) (*models.MainRecord, error)
	GetByUniqueID(ctx context.Context, scope models.DriveScope, uniqueID uuid.UUID) (*models.MainRecord, error)
	GetByGlobalTransitID(ctx context.Context, scope models.DriveScope, transitID uuid.UUID) (*models.MainRecord, error)

	// QueryBatch returns one page of file ids in the requested order,
	// advancing the cursor. See BatchQuery for the contract.
	QueryBatch(ctx context.Context, scope models.DriveScope, q BatchQuery) (*BatchResult, error)

	// QueryBatchAuto is the auto-advancing newest-first variant: repeated
	// calls with the returned cursor yield only rows not seen by earlier
	// fully-drained passes.
	QueryBatchAuto(ctx context.Context, scope models.DriveScope, limit int, cursor *QueryBatchCursor, f Filter) (*BatchResult, error)

	// QueryModified scans rows by ascending modified timestamp, strictly
	// beyond the cursor watermark.
	QueryModified(ctx context.Context, scope models.DriveScope, q ModifiedQuery) (*ModifiedResult, error)
}
