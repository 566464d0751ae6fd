package inbox

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

func (r *SQLiteRepository) Add(ctx context.Context, rec *models.InboxRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drive_inbox
			(identity_id, drive_id, file_id, type, priority, added, pop_stamp, value)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
		ON CONFLICT(identity_id, drive_id, file_id) DO UPDATE SET
			type = excluded.type,
			priority = excluded.priority,
			value = excluded.value
	`, idArg(rec.IdentityID), idArg(rec.DriveID), idArg(rec.FileID),
		rec.Type, rec.Priority, int64(rec.Added), rec.Value)
	if err != nil {
		return fmt.Errorf("failed to add inbox item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PopNext(ctx context.Context, scope models.DriveScope) (*models.InboxRecord, error) {
	stamp := unixtime.NewUniq()
	row := r.db.QueryRowContext(ctx, `
		UPDATE drive_inbox SET pop_stamp = ?
		WHERE rowid = (
			SELECT rowid FROM drive_inbox
			WHERE identity_id = ? AND drive_id = ? AND pop_stamp IS NULL
			ORDER BY priority ASC, added ASC
			LIMIT 1)
		RETURNING file_id, type, priority, added, value
	`, int64(stamp), idArg(scope.IdentityID), idArg(scope.DriveID))

	var (
		rec    models.InboxRecord
		fileID []byte
		added  int64
	)
	err := row.Scan(&fileID, &rec.Type, &rec.Priority, &added, &rec.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop inbox item: %w", err)
	}
	rec.IdentityID = scope.IdentityID
	rec.DriveID = scope.DriveID
	if rec.FileID, err = uuid.FromBytes(fileID); err != nil {
		return nil, fmt.Errorf("%w: inbox file id: %v", common.ErrDataCorruption, err)
	}
	rec.Added = unixtime.Uniq(added)
	s := stamp
	rec.PopStamp = &s
	return &rec, nil
}

func (r *SQLiteRepository) MarkComplete(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM drive_inbox WHERE identity_id = ? AND drive_id = ? AND file_id = ?
	`, idArg(scope.IdentityID), idArg(scope.DriveID), idArg(fileID))
	if err != nil {
		return fmt.Errorf("failed to complete inbox item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkFailure(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE drive_inbox SET pop_stamp = NULL
		WHERE identity_id = ? AND drive_id = ? AND file_id = ?
	`, idArg(scope.IdentityID), idArg(scope.DriveID), idArg(fileID))
	if err != nil {
		return fmt.Errorf("failed to release inbox item: %w", err)
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

func (r *SQLiteRepository) CountPending(ctx context.Context, scope models.DriveScope) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM drive_inbox
		WHERE identity_id = ? AND drive_id = ? AND pop_stamp IS NULL
	`, idArg(scope.IdentityID), idArg(scope.DriveID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count inbox items: %w", err)
	}
	return n, nil
}
