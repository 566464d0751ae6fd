// Package connections implements the identity connection table: one row
// per remote identity with a status and an opaque payload, listed with
// keyset paging on the created timestamp.
package connections

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/models"
	"github.com/avolkov/drivedb/internal/unixtime"
)

type Repository interface {
	// Upsert inserts or replaces the row for (identity, remote).
	Upsert(ctx context.Context, rec *models.ConnectionRecord) error

	// Get returns the row for remote, or common.ErrNotFound.
	Get(ctx context.Context, identityID uuid.UUID, remote string) (*models.ConnectionRecord, error)

	// List returns up to limit rows with the given status, newest-created
	// first, strictly older than the cursor (zero cursor = from the top).
	// The returned cursor is the created value of the last row.
	List(ctx context.Context, identityID uuid.UUID, status models.ConnectionStatus, limit int, cursor unixtime.Uniq) ([]*models.ConnectionRecord, unixtime.Uniq, error)

	// UpdateStatus changes the status of an existing row.
	UpdateStatus(ctx context.Context, identityID uuid.UUID, remote string, status models.ConnectionStatus) error

	// Delete removes the row for remote.
	Delete(ctx context.Context, identityID uuid.UUID, remote string) error
}
