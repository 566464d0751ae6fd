package circles

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/dbx"
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

func (r *SQLiteRepository) AddMembers(ctx context.Context, identityID, circleID uuid.UUID, members []uuid.UUID) error {
	query := `INSERT INTO circle_member (identity_id, circle_id, member_id) VALUES (?, ?, ?)
		ON CONFLICT(identity_id, circle_id, member_id) DO NOTHING`
	for _, m := range members {
		if _, err := r.db.ExecContext(ctx, query, idArg(identityID), idArg(circleID), idArg(m)); err != nil {
			return fmt.Errorf("failed to add circle member: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) RemoveMembers(ctx context.Context, identityID, circleID uuid.UUID, members []uuid.UUID) error {
	query := `DELETE FROM circle_member WHERE identity_id = ? AND circle_id = ? AND member_id = ?`
	for _, m := range members {
		if _, err := r.db.ExecContext(ctx, query, idArg(identityID), idArg(circleID), idArg(m)); err != nil {
			return fmt.Errorf("failed to remove circle member: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) ListMembers(ctx context.Context, identityID, circleID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDs(ctx,
		`SELECT member_id FROM circle_member WHERE identity_id = ? AND circle_id = ? ORDER BY member_id`,
		idArg(identityID), idArg(circleID))
}

func (r *SQLiteRepository) ListCirclesForMember(ctx context.Context, identityID, memberID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDs(ctx,
		`SELECT circle_id FROM circle_member WHERE identity_id = ? AND member_id = ? ORDER BY circle_id`,
		idArg(identityID), idArg(memberID))
}

func (r *SQLiteRepository) DeleteCircle(ctx context.Context, identityID, circleID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM circle_member WHERE identity_id = ? AND circle_id = ?`,
		idArg(identityID), idArg(circleID))
	if err != nil {
		return fmt.Errorf("failed to delete circle: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) listIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select circle rows: %w", err)
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
			return nil, fmt.Errorf("circle row id has length %d: %w", len(b), err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
