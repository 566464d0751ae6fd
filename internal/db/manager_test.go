package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "identity.db")

	m, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	for _, table := range []string{
		"drive_main_index", "drive_acl_index", "drive_tag_index",
		"key_value", "drive_outbox", "drive_inbox", "circle_member", "connections",
	} {
		n, ok := stats[table]
		require.True(t, ok, "missing table %s", table)
		assert.Zero(t, n)
	}
}

func TestOpen_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "identity.db")

	m, err := Open(ctx, path)
	require.NoError(t, err)

	kv := m.KeyValue(m.Conn())
	require.NoError(t, kv.Set(ctx, uuid.Nil, []byte("k"), []byte("v")))
	require.NoError(t, m.Close())

	// reopening must not re-run applied migrations or lose data
	m, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	v, err := m.KeyValue(m.Conn()).Get(ctx, uuid.Nil, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestDSN(t *testing.T) {
	dsn := DSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")
	assert.Contains(t, dsn, "busy_timeout%285000%29")
}
