package connections

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

func (r *SQLiteRepository) Upsert(ctx context.Context, rec *models.ConnectionRecord) error {
	if rec.RemoteIdentity == "" {
		return fmt.Errorf("%w: remote identity must not be empty", common.ErrInvalidArgument)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO connections (identity_id, remote_identity, status, created, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(identity_id, remote_identity) DO UPDATE SET
			status = excluded.status,
			data = excluded.data
	`, idArg(rec.IdentityID), rec.RemoteIdentity, rec.Status, int64(rec.Created), rec.Data)
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, identityID uuid.UUID, remote string) (*models.ConnectionRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT status, created, data FROM connections
		WHERE identity_id = ? AND remote_identity = ?
	`, idArg(identityID), remote)

	rec := &models.ConnectionRecord{IdentityID: identityID, RemoteIdentity: remote}
	var created int64
	err := row.Scan(&rec.Status, &created, &rec.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	rec.Created = unixtime.Uniq(created)
	return rec, nil
}

func (r *SQLiteRepository) List(ctx context.Context, identityID uuid.UUID, status models.ConnectionStatus, limit int, cursor unixtime.Uniq) ([]*models.ConnectionRecord, unixtime.Uniq, error) {
	if limit < 1 {
		return nil, 0, fmt.Errorf("%w: limit must be >= 1, got %d", common.ErrInvalidArgument, limit)
	}
	query := `SELECT remote_identity, status, created, data FROM connections
		WHERE identity_id = ? AND status = ?`
	args := []any{idArg(identityID), status}
	if cursor != 0 {
		query += ` AND created < ?`
		args = append(args, int64(cursor))
	}
	query += ` ORDER BY created DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var result []*models.ConnectionRecord
	next := cursor
	for rows.Next() {
		rec := &models.ConnectionRecord{IdentityID: identityID}
		var created int64
		if err := rows.Scan(&rec.RemoteIdentity, &rec.Status, &created, &rec.Data); err != nil {
			return nil, 0, err
		}
		rec.Created = unixtime.Uniq(created)
		next = rec.Created
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, next, nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, identityID uuid.UUID, remote string, status models.ConnectionStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE connections SET status = ? WHERE identity_id = ? AND remote_identity = ?
	`, status, idArg(identityID), remote)
	if err != nil {
		return fmt.Errorf("failed to update connection status: %w", err)
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

func (r *SQLiteRepository) Delete(ctx context.Context, identityID uuid.UUID, remote string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM connections WHERE identity_id = ? AND remote_identity = ?`,
		idArg(identityID), remote)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}
