package aclindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/dbx"
	"github.com/avolkov/drivedb/internal/models"
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

func (r *SQLiteRepository) InsertMany(ctx context.Context, scope models.DriveScope, fileID uuid.UUID, members []uuid.UUID) error {
	query := `INSERT INTO drive_acl_index (identity_id, drive_id, file_id, acl_member_id) VALUES (?, ?, ?, ?)`
	for _, m := range members {
		if _, err := r.db.ExecContext(ctx, query,
			idArg(scope.IdentityID), idArg(scope.DriveID), idArg(fileID), idArg(m)); err != nil {
			return fmt.Errorf("failed to insert acl row: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM drive_acl_index WHERE identity_id = ? AND drive_id = ? AND file_id = ?`,
		idArg(scope.IdentityID), idArg(scope.DriveID), idArg(fileID))
	if err != nil {
		return fmt.Errorf("failed to delete acl rows: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteMany(ctx context.Context, scope models.DriveScope, fileID uuid.UUID, members []uuid.UUID) error {
	query := `DELETE FROM drive_acl_index
		WHERE identity_id = ? AND drive_id = ? AND file_id = ? AND acl_member_id = ?`
	for _, m := range members {
		if _, err := r.db.ExecContext(ctx, query,
			idArg(scope.IdentityID), idArg(scope.DriveID), idArg(fileID), idArg(m)); err != nil {
			return fmt.Errorf("failed to delete acl row: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetMembers(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT acl_member_id FROM drive_acl_index
		WHERE identity_id = ? AND drive_id = ? AND file_id = ? ORDER BY acl_member_id`,
		idArg(scope.IdentityID), idArg(scope.DriveID), idArg(fileID))
	if err != nil {
		return nil, fmt.Errorf("failed to select acl rows: %w", err)
	}
	defer rows.Close()

	var result []uuid.UUID
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		u, err := uuid.FromBytes(b)
		if err != nil {
			return nil, fmt.Errorf("acl member id has length %d: %w", len(b), err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
