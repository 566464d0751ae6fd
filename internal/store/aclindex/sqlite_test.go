package aclindex

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/drivedb/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE drive_acl_index (
  identity_id   BLOB NOT NULL,
  drive_id      BLOB NOT NULL,
  file_id       BLOB NOT NULL,
  acl_member_id BLOB NOT NULL,
  PRIMARY KEY (identity_id, drive_id, file_id, acl_member_id)
);
`)
	require.NoError(t, err)
	return db
}

func testScope() models.DriveScope {
	return models.DriveScope{IdentityID: uuid.New(), DriveID: uuid.New()}
}

func TestInsertManyAndGetMembers(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()
	file := uuid.New()
	m1, m2 := uuid.New(), uuid.New()

	require.NoError(t, r.InsertMany(ctx, scope, file, []uuid.UUID{m1, m2}))

	got, err := r.GetMembers(ctx, scope, file)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{m1, m2}, got)

	// empty list inserts nothing
	other := uuid.New()
	require.NoError(t, r.InsertMany(ctx, scope, other, nil))
	got, err = r.GetMembers(ctx, scope, other)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteMany(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()
	file := uuid.New()
	m1, m2, m3 := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, r.InsertMany(ctx, scope, file, []uuid.UUID{m1, m2, m3}))
	require.NoError(t, r.DeleteMany(ctx, scope, file, []uuid.UUID{m1, m3}))

	got, err := r.GetMembers(ctx, scope, file)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{m2}, got)
}

func TestDeleteAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()
	file, otherFile := uuid.New(), uuid.New()

	require.NoError(t, r.InsertMany(ctx, scope, file, []uuid.UUID{uuid.New(), uuid.New()}))
	require.NoError(t, r.InsertMany(ctx, scope, otherFile, []uuid.UUID{uuid.New()}))

	require.NoError(t, r.DeleteAll(ctx, scope, file))

	got, err := r.GetMembers(ctx, scope, file)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.GetMembers(ctx, scope, otherFile)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
