package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AnonymousUserID is the reserved account id for unauthenticated visitors.
const AnonymousUserID = 0

func Initialize(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	const maxPingAttempts = 5
	pingDelay := 200 * time.Millisecond
	var pingErr error
	for attempt := 1; attempt <= maxPingAttempts; attempt++ {
		pingErr = db.Ping()
		if pingErr == nil {
			break
		}
		if attempt < maxPingAttempts {
			time.Sleep(pingDelay)
			if pingDelay < 2*time.Second {
				pingDelay *= 2
			}
		}
	}
	if pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database after %d attempts: %w", maxPingAttempts, pingErr)
	}

	// Foreign keys are off by default in SQLite
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait up to 5 seconds when another writer holds the lock instead of
	// failing immediately with SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	return db, nil
}

// InitSchema creates all tables and indexes and seeds defaults. Safe to call
// on every startup because every statement is idempotent.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS config (
			name TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (name, key)
		);

		CREATE TABLE IF NOT EXISTS content_types (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS roles (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			weight INTEGER NOT NULL DEFAULT 0,
			implicit INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS users (
			uid INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			mail TEXT NOT NULL DEFAULT '',
			status INTEGER NOT NULL DEFAULT 0,
			created INTEGER NOT NULL DEFAULT 0,
			access INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS users_roles (
			uid INTEGER NOT NULL,
			rid TEXT NOT NULL,
			PRIMARY KEY (uid, rid),
			FOREIGN KEY (uid) REFERENCES users(uid) ON DELETE CASCADE,
			FOREIGN KEY (rid) REFERENCES roles(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_users_name ON users(name);
		CREATE INDEX IF NOT EXISTS idx_users_created ON users(created);
		CREATE INDEX IF NOT EXISTS idx_users_access ON users(access);
		CREATE INDEX IF NOT EXISTS idx_users_roles_rid ON users_roles(rid);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Columns added after the first release.
	if err := addColumnIfNotExists(db, "content_types", "description", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("failed to add description column: %w", err)
	}

	// The anonymous account always exists so listings have something to exclude.
	if _, err := db.Exec(`INSERT OR IGNORE INTO users (uid, name, status) VALUES (?, '', 0)`, AnonymousUserID); err != nil {
		return fmt.Errorf("failed to seed anonymous account: %w", err)
	}

	contentTypes := []struct{ id, name, description string }{
		{"article", "Article", "Use articles for time-sensitive content like news, press releases or blog posts."},
		{"book", "Book page", "Books have a built-in hierarchical navigation. Use for handbooks or tutorials."},
		{"page", "Basic page", "Use basic pages for your static content, such as an 'About us' page."},
	}
	for _, ct := range contentTypes {
		if _, err := db.Exec(`INSERT OR IGNORE INTO content_types (id, name, description) VALUES (?, ?, ?)`,
			ct.id, ct.name, ct.description); err != nil {
			return fmt.Errorf("failed to seed content type %s: %w", ct.id, err)
		}
	}

	roles := []struct {
		id, label string
		weight    int
		implicit  int
	}{
		{"anonymous", "Anonymous user", 0, 1},
		{"authenticated", "Authenticated user", 1, 1},
		{"administrator", "Administrator", 2, 0},
	}
	for _, r := range roles {
		if _, err := db.Exec(`INSERT OR IGNORE INTO roles (id, label, weight, implicit) VALUES (?, ?, ?, ?)`,
			r.id, r.label, r.weight, r.implicit); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", r.id, err)
		}
	}

	// Values are JSON encoded.
	defaults := []struct{ name, key, value string }{
		{"book.settings", "allowed_types", `["book"]`},
		{"book.settings", "child_type", `"book"`},
	}
	for _, d := range defaults {
		if _, err := db.Exec(`INSERT OR IGNORE INTO config (name, key, value) VALUES (?, ?, ?)`,
			d.name, d.key, d.value); err != nil {
			return fmt.Errorf("failed to seed default config %s:%s: %w", d.name, d.key, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, colDef string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, typ string
		var notnull int
		var dfltValue *string
		var pk int
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, colDef))
	return err
}
