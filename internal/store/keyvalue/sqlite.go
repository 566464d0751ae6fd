package keyvalue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/common"
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

func validateKey(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key must not be empty", common.ErrInvalidArgument)
	}
	if len(key) > common.MaxKeyValueKeyLength {
		return fmt.Errorf("%w: key exceeds %d bytes", common.ErrInvalidArgument, common.MaxKeyValueKeyLength)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, identityID uuid.UUID, key []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM key_value WHERE identity_id = ? AND key = ?`,
		idArg(identityID), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key value: %w", err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, identityID uuid.UUID, key, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO key_value (identity_id, key, data) VALUES (?, ?, ?)
		ON CONFLICT(identity_id, key) DO UPDATE SET data = excluded.data
	`, idArg(identityID), key, value)
	if err != nil {
		return fmt.Errorf("failed to set key value: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, identityID uuid.UUID, key []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM key_value WHERE identity_id = ? AND key = ?`, idArg(identityID), key)
	if err != nil {
		return fmt.Errorf("failed to delete key value: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, identityID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM key_value WHERE identity_id = ?`, idArg(identityID))
	if err != nil {
		return fmt.Errorf("failed to clear key values: %w", err)
	}
	return nil
}
