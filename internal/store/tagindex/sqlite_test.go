package tagindex

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

func TestInsertManyAndGetTags(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()
	file := uuid.New()
	t1, t2 := uuid.New(), uuid.New()

	require.NoError(t, r.InsertMany(ctx, scope, file, []uuid.UUID{t1, t2}))

	got, err := r.GetTags(ctx, scope, file)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{t1, t2}, got)
}

func TestDeleteMany(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()
	file := uuid.New()
	t1, t2 := uuid.New(), uuid.New()

	require.NoError(t, r.InsertMany(ctx, scope, file, []uuid.UUID{t1, t2}))
	require.NoError(t, r.DeleteMany(ctx, scope, file, []uuid.UUID{t1}))

	got, err := r.GetTags(ctx, scope, file)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{t2}, got)
}

func TestDeleteAll_OtherFilesUntouched(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	scope := testScope()
	file, otherFile := uuid.New(), uuid.New()
	shared := uuid.New()

	require.NoError(t, r.InsertMany(ctx, scope, file, []uuid.UUID{shared, uuid.New()}))
	require.NoError(t, r.InsertMany(ctx, scope, otherFile, []uuid.UUID{shared}))

	require.NoError(t, r.DeleteAll(ctx, scope, file))

	got, err := r.GetTags(ctx, scope, file)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.GetTags(ctx, scope, otherFile)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{shared}, got)
}
