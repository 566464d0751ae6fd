package mainindex

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/drivedb/internal/common"
	"github.com/avolkov/drivedb/internal/models"
	"github.com/avolkov/drivedb/internal/unixtime"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE drive_main_index (
  identity_id             BLOB    NOT NULL,
  drive_id                BLOB    NOT NULL,
  file_id                 BLOB    NOT NULL,
  global_transit_id       BLOB,
  unique_id               BLOB,
  file_state              INTEGER NOT NULL,
  file_type               INTEGER NOT NULL,
  data_type               INTEGER NOT NULL,
  archival_status         INTEGER NOT NULL,
  history_status          INTEGER NOT NULL,
  file_system_type        INTEGER NOT NULL,
  required_security_group INTEGER NOT NULL,
  sender_id               BLOB,
  group_id                BLOB,
  user_date               INTEGER NOT NULL,
  byte_count              INTEGER NOT NULL CHECK (byte_count >= 1),
  hdr_encrypted_key       BLOB,
  hdr_version_tag         TEXT    NOT NULL DEFAULT '',
  hdr_app_data            TEXT    NOT NULL DEFAULT '',
  hdr_reaction_summary    TEXT    NOT NULL DEFAULT '',
  hdr_server_data         TEXT    NOT NULL DEFAULT '',
  hdr_transfer_history    TEXT    NOT NULL DEFAULT '',
  hdr_file_metadata       TEXT    NOT NULL DEFAULT '',
  created                 INTEGER NOT NULL,
  modified                INTEGER,
  PRIMARY KEY (identity_id, drive_id, file_id)
);
CREATE UNIQUE INDEX idx_main_unique_id
  ON drive_main_index (identity_id, drive_id, unique_id) WHERE unique_id IS NOT NULL;
CREATE UNIQUE INDEX idx_main_transit_id
  ON drive_main_index (identity_id, drive_id, global_transit_id) WHERE global_transit_id IS NOT NULL;
CREATE TABLE drive_acl_index (
  identity_id   BLOB NOT NULL,
  drive_id      BLOB NOT NULL,
  file_id       BLOB NOT NULL,
  acl_member_id BLOB NOT NULL,
  PRIMARY KEY (identity_id, drive_id, file_id, acl_member_id)
);
CREATE TABLE drive_tag_index (
  identity_id BLOB NOT NULL,
  drive_id    BLOB NOT NULL,
  file_id     BLOB NOT NULL,
  tag_id      BLOB NOT NULL,
  PRIMARY KEY (identity_id, drive_id, file_id, tag_id)
);
`)
	require.NoError(t, err)

	return db
}

func testScope() models.DriveScope {
	return models.DriveScope{IdentityID: uuid.New(), DriveID: uuid.New()}
}

// fid builds a uuid whose first byte is b, so blob comparison order matches b.
func fid(b byte) uuid.UUID {
	var u uuid.UUID
	u[0] = b
	u[15] = 1
	return u
}

func baseFilter() Filter {
	fst := models.FileSystemStandard
	return Filter{
		FileSystemType:        &fst,
		RequiredSecurityGroup: &models.IntRange{Start: 0, End: 999},
	}
}

func newRecord(scope models.DriveScope, fileID uuid.UUID, userDate unixtime.Millis) *models.MainRecord {
	return &models.MainRecord{
		IdentityID:            scope.IdentityID,
		DriveID:               scope.DriveID,
		FileID:                fileID,
		FileState:             models.FileStateActive,
		FileSystemType:        models.FileSystemStandard,
		RequiredSecurityGroup: 0,
		UserDate:              userDate,
		ByteCount:             1,
		Created:               unixtime.NewUniq(),
	}
}

func TestInsertAndGetByFileID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()

	transit := uuid.New()
	unique := uuid.New()
	group := uuid.New()

	rec := newRecord(scope, fid(1), 1000)
	rec.GlobalTransitID = &transit
	rec.UniqueID = &unique
	rec.GroupID = &group
	rec.FileType = 7
	rec.DataType = 42
	rec.ArchivalStatus = models.ArchivalArchived
	rec.HistoryStatus = 1
	rec.RequiredSecurityGroup = 3
	rec.SenderID = []byte("frodo.example.com")
	rec.ByteCount = 1024
	rec.EncryptedKeyHeader = []byte{0xde, 0xad}
	rec.VersionTag = "v1"
	rec.AppData = `{"k":"v"}`
	rec.FileMetadata = "meta"

	require.NoError(t, r.Insert(ctx, rec))

	got, err := r.GetByFileID(ctx, scope, fid(1))
	require.NoError(t, err)
	assert.Equal(t, rec.FileID, got.FileID)
	assert.Equal(t, &transit, got.GlobalTransitID)
	assert.Equal(t, &unique, got.UniqueID)
	assert.Equal(t, &group, got.GroupID)
	assert.Equal(t, rec.FileType, got.FileType)
	assert.Equal(t, rec.DataType, got.DataType)
	assert.Equal(t, models.ArchivalArchived, got.ArchivalStatus)
	assert.Equal(t, rec.SenderID, got.SenderID)
	assert.Equal(t, rec.ByteCount, got.ByteCount)
	assert.Equal(t, rec.EncryptedKeyHeader, got.EncryptedKeyHeader)
	assert.Equal(t, rec.VersionTag, got.VersionTag)
	assert.Equal(t, rec.AppData, got.AppData)
	assert.Equal(t, rec.FileMetadata, got.FileMetadata)
	assert.Equal(t, rec.Created, got.Created)
	assert.Nil(t, got.Modified, "modified must stay null until first update")
}

func TestInsert_RejectsZeroByteCount(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()

	rec := newRecord(scope, fid(1), 1000)
	rec.ByteCount = 0
	err := r.Insert(ctx, rec)
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM drive_main_index`).Scan(&n))
	assert.Equal(t, 0, n, "rejected insert must write nothing")
}

func TestInsert_DuplicateUniqueID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()

	unique := uuid.New()

	first := newRecord(scope, fid(1), 1000)
	first.UniqueID = &unique
	require.NoError(t, r.Insert(ctx, first))

	second := newRecord(scope, fid(2), 2000)
	second.UniqueID = &unique
	err := r.Insert(ctx, second)
	require.ErrorIs(t, err, common.ErrUniqueConstraint)

	// first row untouched
	got, err := r.GetByUniqueID(ctx, scope, unique)
	require.NoError(t, err)
	assert.Equal(t, fid(1), got.FileID)
}

func TestInsert_NilOptionalIDsDoNotCollide(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()

	// multiple rows with null unique/transit ids must coexist
	require.NoError(t, r.Insert(ctx, newRecord(scope, fid(1), 1000)))
	require.NoError(t, r.Insert(ctx, newRecord(scope, fid(2), 2000)))
}

func TestGetByUniqueAndTransitID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()

	transit := uuid.New()
	unique := uuid.New()
	rec := newRecord(scope, fid(1), 1000)
	rec.GlobalTransitID = &transit
	rec.UniqueID = &unique
	require.NoError(t, r.Insert(ctx, rec))

	got, err := r.GetByUniqueID(ctx, scope, unique)
	require.NoError(t, err)
	assert.Equal(t, fid(1), got.FileID)

	got, err = r.GetByGlobalTransitID(ctx, scope, transit)
	require.NoError(t, err)
	assert.Equal(t, fid(1), got.FileID)

	_, err = r.GetByUniqueID(ctx, scope, uuid.New())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByFileID_ScopeIsolation(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()
	other := testScope()

	require.NoError(t, r.Insert(ctx, newRecord(scope, fid(1), 1000)))

	_, err := r.GetByFileID(ctx, other, fid(1))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()

	rec := newRecord(scope, fid(1), 1000)
	require.NoError(t, r.Insert(ctx, rec))

	m := unixtime.NewUniq()
	rec.FileState = models.FileStateDeleted
	rec.AppData = "updated"
	rec.Modified = &m
	require.NoError(t, r.Update(ctx, rec))

	got, err := r.GetByFileID(ctx, scope, fid(1))
	require.NoError(t, err)
	assert.Equal(t, models.FileStateDeleted, got.FileState)
	assert.Equal(t, "updated", got.AppData)
	require.NotNil(t, got.Modified)
	assert.Equal(t, m, *got.Modified)
	assert.Equal(t, rec.Created, got.Created, "created must never change")
}

func TestUpdate_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := newRecord(testScope(), fid(9), 1000)
	err := r.Update(ctx, rec)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()

	require.NoError(t, r.Insert(ctx, newRecord(scope, fid(1), 1000)))
	require.NoError(t, r.Delete(ctx, scope, fid(1)))

	_, err := r.GetByFileID(ctx, scope, fid(1))
	require.ErrorIs(t, err, common.ErrNotFound)

	err = r.Delete(ctx, scope, fid(1))
	require.ErrorIs(t, err, common.ErrNotFound)
}
