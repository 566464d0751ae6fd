// Package aclindex implements the ACL side-index: zero or more
// (file, member) rows per file. A file with no rows is unrestricted beyond
// its security group. Rows are only ever mutated together with the main
// record, inside the caller's commit unit of work.
package aclindex

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/models"
)

type Repository interface {
	// InsertMany adds one row per member for the given file.
	InsertMany(ctx context.Context, scope models.DriveScope, fileID uuid.UUID, members []uuid.UUID) error

	// DeleteAll removes every ACL row of the given file.
	DeleteAll(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error

	// DeleteMany removes the listed members from the given file.
	DeleteMany(ctx context.Context, scope models.DriveScope, fileID uuid.UUID, members []uuid.UUID) error

	// GetMembers lists the file's ACL members in unsigned byte order.
	GetMembers(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) ([]uuid.UUID, error)
}
