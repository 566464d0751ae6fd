package keyvalue

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/drivedb/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE key_value (
  identity_id BLOB NOT NULL,
  key         BLOB NOT NULL,
  data        BLOB,
  PRIMARY KEY (identity_id, key)
);
`)
	require.NoError(t, err)
	return db
}

func TestSetGetDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	identity := uuid.New()

	// absent key reads as nil without an error
	v, err := r.Get(ctx, identity, []byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Set(ctx, identity, []byte("k"), []byte("v1")))
	v, err = r.Get(ctx, identity, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	// set on an existing key overwrites
	require.NoError(t, r.Set(ctx, identity, []byte("k"), []byte("v2")))
	v, err = r.Get(ctx, identity, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, r.Delete(ctx, identity, []byte("k")))
	v, err = r.Get(ctx, identity, []byte("k"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_IdentityIsolation(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, r.Set(ctx, a, []byte("k"), []byte("of-a")))
	require.NoError(t, r.Set(ctx, b, []byte("k"), []byte("of-b")))

	v, err := r.Get(ctx, a, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("of-a"), v)
}

func TestClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, r.Set(ctx, a, []byte("k1"), []byte("v")))
	require.NoError(t, r.Set(ctx, a, []byte("k2"), []byte("v")))
	require.NoError(t, r.Set(ctx, b, []byte("k1"), []byte("v")))

	require.NoError(t, r.Clear(ctx, a))

	v, err := r.Get(ctx, a, []byte("k1"))
	require.NoError(t, err)
	assert.Nil(t, v)

	// other identities untouched
	v, err = r.Get(ctx, b, []byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestValidateKey(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	identity := uuid.New()

	err := r.Set(ctx, identity, nil, []byte("v"))
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	long := make([]byte, common.MaxKeyValueKeyLength+1)
	err = r.Set(ctx, identity, long, []byte("v"))
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = r.Get(ctx, identity, nil)
	require.ErrorIs(t, err, common.ErrInvalidArgument)
}
