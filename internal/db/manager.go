// Package db opens the per-identity embedded database, applies schema
// migrations (via goose), and vends repository constructors bound to a
// DBTX. One Manager owns one SQLite file; the single-writer transaction
// semantics of the engine serialize composite multi-table writes without
// any process-wide lock.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/avolkov/drivedb/internal/dbx"
	"github.com/avolkov/drivedb/internal/migrations"
	"github.com/avolkov/drivedb/internal/store/aclindex"
	"github.com/avolkov/drivedb/internal/store/circles"
	"github.com/avolkov/drivedb/internal/store/connections"
	"github.com/avolkov/drivedb/internal/store/inbox"
	"github.com/avolkov/drivedb/internal/store/keyvalue"
	"github.com/avolkov/drivedb/internal/store/mainindex"
	"github.com/avolkov/drivedb/internal/store/outbox"
	"github.com/avolkov/drivedb/internal/store/tagindex"
)

// Manager owns the connection to one identity database.
type Manager struct {
	db *sql.DB
}

// DSN builds the sqlite connection string for a database file, enabling
// WAL, foreign keys and a busy timeout.
func DSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + path + "?" + q.Encode()
}

// Open opens (creating if needed) the identity database at path and runs
// pending migrations.
func Open(ctx context.Context, path string) (*Manager, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	m := &Manager{db: db}
	if err := m.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return m, nil
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *Manager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, m.db, ".")
}

// Conn exposes the underlying handle for transaction scoping and tests.
func (m *Manager) Conn() *sql.DB {
	return m.db
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// MainIndex returns a main-index repository bound to the provided DBTX.
func (m *Manager) MainIndex(h dbx.DBTX) mainindex.Repository {
	return mainindex.NewSQLiteRepository(h)
}

// ACLIndex returns an ACL side-index repository bound to the provided DBTX.
func (m *Manager) ACLIndex(h dbx.DBTX) aclindex.Repository {
	return aclindex.NewSQLiteRepository(h)
}

// TagIndex returns a tag side-index repository bound to the provided DBTX.
func (m *Manager) TagIndex(h dbx.DBTX) tagindex.Repository {
	return tagindex.NewSQLiteRepository(h)
}

// KeyValue returns a key-value repository bound to the provided DBTX.
func (m *Manager) KeyValue(h dbx.DBTX) keyvalue.Repository {
	return keyvalue.NewSQLiteRepository(h)
}

// Outbox returns an outbox repository bound to the provided DBTX.
func (m *Manager) Outbox(h dbx.DBTX) outbox.Repository {
	return outbox.NewSQLiteRepository(h)
}

// Inbox returns an inbox repository bound to the provided DBTX.
func (m *Manager) Inbox(h dbx.DBTX) inbox.Repository {
	return inbox.NewSQLiteRepository(h)
}

// Circles returns a circle-membership repository bound to the provided DBTX.
func (m *Manager) Circles(h dbx.DBTX) circles.Repository {
	return circles.NewSQLiteRepository(h)
}

// Connections returns a connections repository bound to the provided DBTX.
func (m *Manager) Connections(h dbx.DBTX) connections.Repository {
	return connections.NewSQLiteRepository(h)
}

// Stats returns row counts per table, for inspection tooling.
func (m *Manager) Stats(ctx context.Context) (map[string]int64, error) {
	tables := []string{
		"drive_main_index", "drive_acl_index", "drive_tag_index",
		"key_value", "drive_outbox", "drive_inbox", "circle_member", "connections",
	}
	out := make(map[string]int64, len(tables))
	for _, table := range tables {
		var n int64
		if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		out[table] = n
	}
	return out, nil
}
