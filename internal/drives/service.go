// Package drives exposes the file metadata operations of one identity
// database: atomic multi-table writes (main record + ACL + tag side-rows)
// and the cursor-paginated query engines.
package drives

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/drivedb/internal/cache"
	"github.com/avolkov/drivedb/internal/dbx"
	"github.com/avolkov/drivedb/internal/logging"
	"github.com/avolkov/drivedb/internal/models"
	"github.com/avolkov/drivedb/internal/store/aclindex"
	"github.com/avolkov/drivedb/internal/store/mainindex"
	"github.com/avolkov/drivedb/internal/store/tagindex"
	"github.com/avolkov/drivedb/internal/unixtime"
)

// RecordKey identifies one main record in the row cache.
type RecordKey struct {
	IdentityID uuid.UUID
	DriveID    uuid.UUID
	FileID     uuid.UUID
}

// Service coordinates the main index and its two side-indexes. Every write
// spans all three tables in one commit unit of work; single-row reads go
// through the row cache, batch queries never do.
type Service struct {
	db      *sql.DB
	logger  logging.Logger
	records *cache.Cache[RecordKey, *models.MainRecord]
}

// NewService builds a Service over an open identity database.
func NewService(db *sql.DB, logger logging.Logger, cacheSize int, cacheTTL time.Duration) *Service {
	return &Service{
		db:      db,
		logger:  logger.With("component", "drives"),
		records: cache.New[RecordKey, *models.MainRecord]("main_record", cacheSize, cacheTTL),
	}
}

func key(rec *models.MainRecord) RecordKey {
	return RecordKey{IdentityID: rec.IdentityID, DriveID: rec.DriveID, FileID: rec.FileID}
}

// AddEntry writes a new file's main record together with its ACL members
// and tags, all-or-nothing. Created is assigned here from the
// monotonic-unique source; Modified stays unset until the first update.
// Contract violations (byte count, oversized columns) are rejected before
// any row is written.
func (s *Service) AddEntry(ctx context.Context, rec *models.MainRecord, acl, tags []uuid.UUID) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	rec.Created = unixtime.NewUniq()
	rec.Modified = nil

	scope := models.DriveScope{IdentityID: rec.IdentityID, DriveID: rec.DriveID}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := mainindex.NewSQLiteRepository(tx).Insert(ctx, rec); err != nil {
			return err
		}
		if err := aclindex.NewSQLiteRepository(tx).InsertMany(ctx, scope, rec.FileID, acl); err != nil {
			return err
		}
		return tagindex.NewSQLiteRepository(tx).InsertMany(ctx, scope, rec.FileID, tags)
	})
	if err != nil {
		return fmt.Errorf("add entry: %w", err)
	}

	s.records.Set(key(rec), rec)
	s.logger.Debug(ctx, "entry added", "drive", rec.DriveID, "file", rec.FileID)
	return nil
}

// UpdateEntry rewrites an existing file's main record and replaces its ACL
// and tag side-rows, all-or-nothing. Modified is assigned here.
func (s *Service) UpdateEntry(ctx context.Context, rec *models.MainRecord, acl, tags []uuid.UUID) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	m := unixtime.NewUniq()
	rec.Modified = &m

	scope := models.DriveScope{IdentityID: rec.IdentityID, DriveID: rec.DriveID}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := mainindex.NewSQLiteRepository(tx).Update(ctx, rec); err != nil {
			return err
		}
		aclRepo := aclindex.NewSQLiteRepository(tx)
		if err := aclRepo.DeleteAll(ctx, scope, rec.FileID); err != nil {
			return err
		}
		if err := aclRepo.InsertMany(ctx, scope, rec.FileID, acl); err != nil {
			return err
		}
		tagRepo := tagindex.NewSQLiteRepository(tx)
		if err := tagRepo.DeleteAll(ctx, scope, rec.FileID); err != nil {
			return err
		}
		return tagRepo.InsertMany(ctx, scope, rec.FileID, tags)
	})
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	s.records.Set(key(rec), rec)
	s.logger.Debug(ctx, "entry updated", "drive", rec.DriveID, "file", rec.FileID)
	return nil
}

// DeleteEntry removes the file's main record and all of its side-rows,
// all-or-nothing.
func (s *Service) DeleteEntry(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := mainindex.NewSQLiteRepository(tx).Delete(ctx, scope, fileID); err != nil {
			return err
		}
		if err := aclindex.NewSQLiteRepository(tx).DeleteAll(ctx, scope, fileID); err != nil {
			return err
		}
		return tagindex.NewSQLiteRepository(tx).DeleteAll(ctx, scope, fileID)
	})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	s.records.Remove(RecordKey{IdentityID: scope.IdentityID, DriveID: scope.DriveID, FileID: fileID})
	s.logger.Debug(ctx, "entry deleted", "drive", scope.DriveID, "file", fileID)
	return nil
}

// GetByFileID returns one record, consulting the row cache first.
func (s *Service) GetByFileID(ctx context.Context, scope models.DriveScope, fileID uuid.UUID) (*models.MainRecord, error) {
	k := RecordKey{IdentityID: scope.IdentityID, DriveID: scope.DriveID, FileID: fileID}
	if rec, ok := s.records.Get(k); ok {
		return rec, nil
	}
	rec, err := mainindex.NewSQLiteRepository(s.db).GetByFileID(ctx, scope, fileID)
	if err != nil {
		return nil, err
	}
	s.records.Set(k, rec)
	return rec, nil
}

// GetByUniqueID returns the record carrying the given client-assigned
// unique id.
func (s *Service) GetByUniqueID(ctx context.Context, scope models.DriveScope, uniqueID uuid.UUID) (*models.MainRecord, error) {
	rec, err := mainindex.NewSQLiteRepository(s.db).GetByUniqueID(ctx, scope, uniqueID)
	if err != nil {
		return nil, err
	}
	s.records.Set(key(rec), rec)
	return rec, nil
}

// GetByGlobalTransitID returns the record carrying the given transit id.
func (s *Service) GetByGlobalTransitID(ctx context.Context, scope models.DriveScope, transitID uuid.UUID) (*models.MainRecord, error) {
	rec, err := mainindex.NewSQLiteRepository(s.db).GetByGlobalTransitID(ctx, scope, transitID)
	if err != nil {
		return nil, err
	}
	s.records.Set(key(rec), rec)
	return rec, nil
}

// QueryBatch returns one filtered, ordered page of file ids.
func (s *Service) QueryBatch(ctx context.Context, scope models.DriveScope, q mainindex.BatchQuery) (*mainindex.BatchResult, error) {
	return mainindex.NewSQLiteRepository(s.db).QueryBatch(ctx, scope, q)
}

// QueryBatchAuto drains new rows newest-first across polling passes.
func (s *Service) QueryBatchAuto(ctx context.Context, scope models.DriveScope, limit int, cursor *mainindex.QueryBatchCursor, f mainindex.Filter) (*mainindex.BatchResult, error) {
	return mainindex.NewSQLiteRepository(s.db).QueryBatchAuto(ctx, scope, limit, cursor, f)
}

// QueryModified scans rows by ascending modified watermark.
func (s *Service) QueryModified(ctx context.Context, scope models.DriveScope, q mainindex.ModifiedQuery) (*mainindex.ModifiedResult, error) {
	return mainindex.NewSQLiteRepository(s.db).QueryModified(ctx, scope, q)
}
