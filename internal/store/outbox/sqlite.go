package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/common"
	"github.com/avolkov/drivedb/internal/dbx"
	"github.com/avolkov/drivedb/internal/models"
	"github.com/avolkov/drivedb/internal/unixtime"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func idArg(u uuid.UUID) []byte {
	b := u
	return b[:]
}

func (r *SQLiteRepository) Add(ctx context.Context, rec *models.OutboxRecord) error {
	if rec.Recipient == "" {
		return fmt.Errorf("%w: recipient must not be empty", common.ErrInvalidArgument)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drive_outbox
			(identity_id, drive_id, file_id, recipient, type, priority, attempt_count, added, checkout_stamp, value)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, NULL, ?)
		ON CONFLICT(identity_id, drive_id, file_id, recipient) DO UPDATE SET
			type = excluded.type,
			priority = excluded.priority,
			value = excluded.value
	`, idArg(rec.IdentityID), idArg(rec.DriveID), idArg(rec.FileID), rec.Recipient,
		rec.Type, rec.Priority, int64(rec.Added), rec.Value)
	if err != nil {
		return fmt.Errorf("failed to add outbox item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CheckOutNext(ctx context.Context, identityID uuid.UUID) (*models.OutboxRecord, error) {
	stamp := unixtime.NewUniq()
	row := r.db.QueryRowContext(ctx, `
		UPDATE drive_outbox SET checkout_stamp = ?
		WHERE rowid = (
			SELECT rowid FROM drive_outbox
			WHERE identity_id = ? AND checkout_stamp IS NULL
			ORDER BY priority ASC, added ASC
			LIMIT 1)
		RETURNING drive_id, file_id, recipient, type, priority, attempt_count, added, value
	`, int64(stamp), idArg(identityID))

	var (
		rec             models.OutboxRecord
		driveID, fileID []byte
		added           int64
	)
	err := row.Scan(&driveID, &fileID, &rec.Recipient, &rec.Type, &rec.Priority,
		&rec.AttemptCount, &added, &rec.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check out outbox item: %w", err)
	}
	rec.IdentityID = identityID
	if rec.DriveID, err = uuid.FromBytes(driveID); err != nil {
		return nil, fmt.Errorf("%w: outbox drive id: %v", common.ErrDataCorruption, err)
	}
	if rec.FileID, err = uuid.FromBytes(fileID); err != nil {
		return nil, fmt.Errorf("%w: outbox file id: %v", common.ErrDataCorruption, err)
	}
	rec.Added = unixtime.Uniq(added)
	s := stamp
	rec.CheckoutStamp = &s
	return &rec, nil
}

func (r *SQLiteRepository) CompleteAndRemove(ctx context.Context, identityID uuid.UUID, driveID, fileID uuid.UUID, recipient string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM drive_outbox
		WHERE identity_id = ? AND drive_id = ? AND file_id = ? AND recipient = ?
	`, idArg(identityID), idArg(driveID), idArg(fileID), recipient)
	if err != nil {
		return fmt.Errorf("failed to remove outbox item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CheckInAsFailed(ctx context.Context, identityID uuid.UUID, driveID, fileID uuid.UUID, recipient string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE drive_outbox SET checkout_stamp = NULL, attempt_count = attempt_count + 1
		WHERE identity_id = ? AND drive_id = ? AND file_id = ? AND recipient = ?
	`, idArg(identityID), idArg(driveID), idArg(fileID), recipient)
	if err != nil {
		return fmt.Errorf("failed to check in outbox item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context, identityID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM drive_outbox WHERE identity_id = ? AND checkout_stamp IS NULL`,
		idArg(identityID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count outbox items: %w", err)
	}
	return n, nil
}
