// Package storage provides a SQLite-backed persister for the preference cache.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/five82/herald/internal/prefs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const deviceIDKey = "device_id"

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

var _ prefs.Persister = (*DB)(nil)

// Open opens or creates the database at path and applies pending migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection serializes writers and keeps the WAL pragma in effect.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// runMigrations applies all pending migrations and returns the schema version.
func runMigrations(conn *sql.DB) (uint, error) {
	driver, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("get migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

// Load reads the full cache snapshot.
func (db *DB) Load(ctx context.Context) (prefs.Snapshot, error) {
	var snap prefs.Snapshot

	err := db.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, deviceIDKey).Scan(&snap.DeviceID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return prefs.Snapshot{}, fmt.Errorf("load device id: %w", err)
	}

	if snap.Followed, err = db.strings(ctx, `SELECT slug FROM followed ORDER BY slug`); err != nil {
		return prefs.Snapshot{}, fmt.Errorf("load followed: %w", err)
	}
	if snap.FollowedOrgs, err = db.strings(ctx, `SELECT slug FROM followed_organizations ORDER BY slug`); err != nil {
		return prefs.Snapshot{}, fmt.Errorf("load followed organizations: %w", err)
	}
	if snap.Shouted, err = db.strings(ctx, `SELECT id FROM shouted ORDER BY id`); err != nil {
		return prefs.Snapshot{}, fmt.Errorf("load shout-out guards: %w", err)
	}
	if snap.RecentSearches, err = db.strings(ctx, `SELECT query FROM recent_searches ORDER BY position`); err != nil {
		return prefs.Snapshot{}, fmt.Errorf("load recent searches: %w", err)
	}
	if snap.Drift, err = db.strings(ctx, `SELECT key FROM drift ORDER BY key`); err != nil {
		return prefs.Snapshot{}, fmt.Errorf("load drift: %w", err)
	}
	if snap.Saved, err = db.saved(ctx); err != nil {
		return prefs.Snapshot{}, fmt.Errorf("load saved: %w", err)
	}
	if snap.ItemShoutouts, err = db.counts(ctx, `SELECT id, count FROM item_shoutouts`); err != nil {
		return prefs.Snapshot{}, fmt.Errorf("load item shout-outs: %w", err)
	}
	if snap.OwnerShoutouts, err = db.counts(ctx, `SELECT slug, count FROM owner_shoutouts`); err != nil {
		return prefs.Snapshot{}, fmt.Errorf("load owner shout-outs: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot in one transaction.
func (db *DB) Save(ctx context.Context, snap prefs.Snapshot) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"followed", "followed_organizations", "saved", "item_shoutouts", "owner_shoutouts", "shouted", "recent_searches", "drift"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		deviceIDKey, snap.DeviceID,
	); err != nil {
		return fmt.Errorf("save device id: %w", err)
	}

	for _, slug := range snap.Followed {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO followed (slug) VALUES (?)`, slug); err != nil {
			return fmt.Errorf("save followed %s: %w", slug, err)
		}
	}
	for _, slug := range snap.FollowedOrgs {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO followed_organizations (slug) VALUES (?)`, slug); err != nil {
			return fmt.Errorf("save followed organization %s: %w", slug, err)
		}
	}
	for kind, ids := range snap.Saved {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO saved (kind, id) VALUES (?, ?)`, kind, id); err != nil {
				return fmt.Errorf("save bookmark %s:%s: %w", kind, id, err)
			}
		}
	}
	for id, n := range snap.ItemShoutouts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO item_shoutouts (id, count) VALUES (?, ?)`, id, n); err != nil {
			return fmt.Errorf("save shout-outs %s: %w", id, err)
		}
	}
	for slug, n := range snap.OwnerShoutouts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO owner_shoutouts (slug, count) VALUES (?, ?)`, slug, n); err != nil {
			return fmt.Errorf("save owner shout-outs %s: %w", slug, err)
		}
	}
	for _, id := range snap.Shouted {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO shouted (id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("save shout-out guard %s: %w", id, err)
		}
	}
	for i, q := range snap.RecentSearches {
		if _, err := tx.ExecContext(ctx, `INSERT INTO recent_searches (position, query) VALUES (?, ?)`, i, q); err != nil {
			return fmt.Errorf("save recent search: %w", err)
		}
	}
	for _, key := range snap.Drift {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO drift (key) VALUES (?)`, key); err != nil {
			return fmt.Errorf("save drift %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (db *DB) strings(ctx context.Context, query string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) saved(ctx context.Context) (map[string][]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT kind, id FROM saved`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out map[string][]string
	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, err
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[kind] = append(out[kind], id)
	}
	for _, ids := range out {
		sort.Strings(ids)
	}
	return out, rows.Err()
}

func (db *DB) counts(ctx context.Context, query string) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out map[string]int
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		if out == nil {
			out = make(map[string]int)
		}
		out[key] = n
	}
	return out, rows.Err()
}
