package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foliocms/folio/backend/pkg/database"
	_ "github.com/mattn/go-sqlite3"
)

// TestConfig holds test configuration
type TestConfig struct {
	DBPath string
}

// SetupTest creates a test environment with a temporary, seeded database.
func SetupTest(t *testing.T) (*sql.DB, *TestConfig, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "folio-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	cfg := &TestConfig{
		DBPath: filepath.Join(tmpDir, "test.db"),
	}
	cleanupTmpDir := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Logf("Failed to remove temp directory %q: %v", tmpDir, err)
		}
	}

	db, err := database.Initialize(cfg.DBPath)
	if err != nil {
		cleanupTmpDir()
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Same schema and seed as runtime startup.
	if err := database.InitSchema(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			t.Logf("Failed to close test database after schema init error: %v", closeErr)
		}
		cleanupTmpDir()
		t.Fatalf("Failed to initialize test schema: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
		cleanupTmpDir()
	}

	return db, cfg, cleanup
}

// Account describes a users row for fixtures. A zero LastAccess means the
// account never accessed the site.
type Account struct {
	ID         int64
	Name       string
	Active     bool
	Created    time.Time
	LastAccess time.Time
	Roles      []string
}

// InsertAccounts writes fixture accounts directly, bypassing repositories.
func InsertAccounts(t *testing.T, db *sql.DB, accounts ...Account) {
	t.Helper()

	for _, a := range accounts {
		status := 0
		if a.Active {
			status = 1
		}
		var access int64
		if !a.LastAccess.IsZero() {
			access = a.LastAccess.Unix()
		}
		if _, err := db.Exec(`
			INSERT INTO users (uid, name, mail, status, created, access) VALUES (?, ?, ?, ?, ?, ?)
		`, a.ID, a.Name, a.Name+"@example.com", status, a.Created.Unix(), access); err != nil {
			t.Fatalf("insert account %d: %v", a.ID, err)
		}
		for _, rid := range a.Roles {
			if _, err := db.Exec(`INSERT INTO users_roles (uid, rid) VALUES (?, ?)`, a.ID, rid); err != nil {
				t.Fatalf("assign role %s to %d: %v", rid, a.ID, err)
			}
		}
	}
}

// InsertRole adds a non-implicit role.
func InsertRole(t *testing.T, db *sql.DB, id, label string, weight int) {
	t.Helper()

	if _, err := db.Exec(`INSERT INTO roles (id, label, weight, implicit) VALUES (?, ?, ?, 0)`, id, label, weight); err != nil {
		t.Fatalf("insert role %s: %v", id, err)
	}
}
