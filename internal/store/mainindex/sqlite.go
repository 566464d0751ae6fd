package mainindex

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

// allColumns is the canonical column order used by inserts and full-row selects.
const allColumns = `identity_id, drive_id, file_id, global_transit_id, unique_id,
	file_state, file_type, data_type, archival_status, history_status,
	file_system_type, required_security_group, sender_id, group_id, user_date,
	byte_count, hdr_encrypted_key, hdr_version_tag, hdr_app_data,
	hdr_reaction_summary, hdr_server_data, hdr_transfer_history,
	hdr_file_metadata, created, modified`

func idArg(u uuid.UUID) []byte {
	b := u
	return b[:]
}

func optIDArg(p *uuid.UUID) any {
	if p == nil {
		return nil
	}
	b := *p
	return b[:]
}

func optUniqArg(p *unixtime.Uniq) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func idFromBytes(b []byte) (uuid.UUID, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: identifier column has length %d, want %d",
			common.ErrDataCorruption, len(b), common.IDLength)
	}
	return u, nil
}

func optIDFromBytes(b []byte) (*uuid.UUID, error) {
	if b == nil {
		return nil, nil
	}
	u, err := idFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Insert writes rec as a new row. rec.Validate is applied first so contract
// violations surface before any statement executes.
func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.MainRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO drive_main_index (` + allColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		idArg(rec.IdentityID), idArg(rec.DriveID), idArg(rec.FileID),
		optIDArg(rec.GlobalTransitID), optIDArg(rec.UniqueID),
		rec.FileState, rec.FileType, rec.DataType, rec.ArchivalStatus, rec.HistoryStatus,
		rec.FileSystemType, rec.RequiredSecurityGroup, rec.SenderID, optIDArg(rec.GroupID), rec.UserDate,
		rec.ByteCount, rec.EncryptedKeyHeader, rec.VersionTag, rec.AppData,
		rec.ReactionSummary, rec.ServerData, rec.TransferHistory,
		rec.FileMetadata, int64(rec.Created), optUniqArg(rec.Modified),
	)
	if err != nil {
		if dbx.IsUniqueConstraint(err) {
			return fmt.Errorf("%w: %v", common.ErrUniqueConstraint, err)
		}
		return fmt.Errorf("failed to insert main record: %w", err)
	}
	return nil
}

// Update rewrites every mutable column of the row identified by rec's
// composite key. Created is never changed after insert.
func (r *SQLiteRepository) Update(ctx context.Context, rec *models.MainRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	query := `UPDATE drive_main_index SET
			global_transit_id = ?, unique_id = ?, file_state = ?, file_type = ?,
			data_type = ?, archival_status = ?, history_status = ?,
			file_system_type = ?, required_security_group = ?, sender_id = ?,
			group_id = ?, user_date = ?, byte_count = ?, hdr_encrypted_key = ?,
			hdr_version_tag = ?, hdr_app_data = ?, hdr_reaction_summary = ?,
			hdr_server_data = ?, hdr_transfer_history = ?, hdr_file_metadata = ?,
			modified = ?
		WHERE identity_id = ? AND drive_id = ? AND file_id = ?`
	res, err := r.db.ExecContext(ctx, query,
		optIDArg(rec.GlobalTransitID), optIDArg(rec.UniqueID), rec.FileState, rec.FileType,
		rec.DataType, rec.ArchivalStatus, rec.HistoryStatus,
		rec.FileSystemType, rec.RequiredSecurityGroup, rec.SenderID,
		optIDArg(rec.GroupID), rec.UserDate, rec.ByteCount, rec.EncryptedKeyHeader,
		rec.VersionTag, rec.AppData, rec.ReactionSummary,
		rec.ServerData, rec.TransferHistory, rec.FileMetadata,
		optUniqArg(rec.Modified),
		idArg(rec.IdentityID), idArg(rec.DriveID), idArg(rec.FileID),
	)
	if err != nil {
		if dbx.IsUniqueConstraint(err) {
			return fmt.Errorf("%w: %v", common.ErrUniqueConstraint, err)
		}
		return fmt.Errorf("failed to update main record: %w", err)
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

// Delete removes the row for (scope, fileID).
func (r *SQLiteRepository) Delete(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM drive_main_index WHERE identity_id = ? AND drive_id = ? AND file_id = ?`,
		idArg(scope.IdentityID), idArg(scope.DriveID), idArg(fileID))
	if err != nil {
		return fmt.Errorf("failed to delete main record: %w", err)
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

func (r *SQLiteRepository) GetByFileID(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) (*models.MainRecord, error) {
	return r.getOne(ctx, `file_id = ?`, scope, idArg(fileID))
}

func (r *SQLiteRepository) GetByUniqueID(ctx context.Context, scope models.DriveScope, uniqueID uuid.UUID) (*models.MainRecord, error) {
	return r.getOne(ctx, `unique_id = ?`, scope, idArg(uniqueID))
}

func (r *SQLiteRepository) GetByGlobalTransitID(ctx context.Context, scope models.DriveScope, transitID uuid.UUID) (*models.MainRecord, error) {
	return r.getOne(ctx, `global_transit_id = ?`, scope, idArg(transitID))
}

func (r *SQLiteRepository) getOne(ctx context.Context, cond string, scope models.DriveScope, arg []byte) (*models.MainRecord, error) {
	query := `SELECT ` + allColumns + ` FROM drive_main_index
		WHERE identity_id = ? AND drive_id = ? AND ` + cond
	row := r.db.QueryRowContext(ctx, query, idArg(scope.IdentityID), idArg(scope.DriveID), arg)
	rec, err := scanMainRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get main record: %w", err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMainRecord(row rowScanner) (*models.MainRecord, error) {
	var (
		rec                          models.MainRecord
		identityID, driveID, fileID  []byte
		transitID, uniqueID, groupID []byte
		created                      int64
		modified                     sql.NullInt64
	)
	err := row.Scan(
		&identityID, &driveID, &fileID, &transitID, &uniqueID,
		&rec.FileState, &rec.FileType, &rec.DataType, &rec.ArchivalStatus, &rec.HistoryStatus,
		&rec.FileSystemType, &rec.RequiredSecurityGroup, &rec.SenderID, &groupID, &rec.UserDate,
		&rec.ByteCount, &rec.EncryptedKeyHeader, &rec.VersionTag, &rec.AppData,
		&rec.ReactionSummary, &rec.ServerData, &rec.TransferHistory,
		&rec.FileMetadata, &created, &modified,
	)
	if err != nil {
		return nil, err
	}
	if rec.IdentityID, err = idFromBytes(identityID); err != nil {
		return nil, err
	}
	if rec.DriveID, err = idFromBytes(driveID); err != nil {
		return nil, err
	}
	if rec.FileID, err = idFromBytes(fileID); err != nil {
		return nil, err
	}
	if rec.GlobalTransitID, err = optIDFromBytes(transitID); err != nil {
		return nil, err
	}
	if rec.UniqueID, err = optIDFromBytes(uniqueID); err != nil {
		return nil, err
	}
	if rec.GroupID, err = optIDFromBytes(groupID); err != nil {
		return nil, err
	}
	rec.Created = unixtime.Uniq(created)
	if modified.Valid {
		m := unixtime.Uniq(modified.Int64)
		rec.Modified = &m
	}
	return &rec, nil
}
