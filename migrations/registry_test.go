package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	redeem "github.com/goliatone/go-redeem"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
		case DialectSQLite:
			sqliteFound = true
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		calls = append(calls, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite {
		t.Fatalf("expected sqlite registration, got %q", calls[0])
	}
}

func TestMigrationPairs_ExistForBothDialects(t *testing.T) {
	root := redeem.GetMigrationsFS()
	names := []string{"00001_redeem_catalogs", "00002_redeem_audit_records"}
	for _, name := range names {
		paths := []string{
			"data/sql/migrations/" + name + ".up.sql",
			"data/sql/migrations/" + name + ".down.sql",
			"data/sql/migrations/sqlite/" + name + ".up.sql",
			"data/sql/migrations/sqlite/" + name + ".down.sql",
		}
		for _, migrationPath := range paths {
			content, err := fs.ReadFile(root, migrationPath)
			if err != nil {
				t.Fatalf("read migration %s: %v", migrationPath, err)
			}
			if strings.TrimSpace(string(content)) == "" {
				t.Fatalf("expected migration %s to have SQL content", migrationPath)
			}
		}
	}
}

func TestRegister_RequiresRegisterFunc(t *testing.T) {
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected missing register func to fail")
	}
}

func TestRegister_SourceLabelOption(t *testing.T) {
	var labels []string
	reg, err := Register(context.Background(), func(_ context.Context, _ string, label string, _ fs.FS) error {
		labels = append(labels, label)
		return nil
	}, WithDialectSourceLabel("  custom  "))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.SourceLabel != "custom" {
		t.Fatalf("expected trimmed source label, got %q", reg.SourceLabel)
	}
	if len(labels) != 2 {
		t.Fatalf("expected postgres and sqlite registrations, got %d", len(labels))
	}
}

func TestSQLiteCatalogMigration_EnforcesOwnerAndPositionUniqueness(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", "file:migrations-redeem-catalogs?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	sqliteMigrations, err := fs.Sub(redeem.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}
	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_redeem_catalogs.up.sql"); err != nil {
		t.Fatalf("apply catalogs migration: %v", err)
	}

	insertCatalog := `INSERT INTO redeem_catalogs (id, owner, catalog_key, capacity, credit_asset, holding_account) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insertCatalog, "c1", "alice", "k1", 2, "credit", "alice"); err != nil {
		t.Fatalf("insert catalog: %v", err)
	}
	if _, err := db.ExecContext(ctx, insertCatalog, "c2", "alice", "k2", 2, "credit", "alice"); err == nil {
		t.Fatalf("expected duplicate owner to be rejected")
	}
	if _, err := db.ExecContext(ctx, insertCatalog, "c3", "bob", "k3", 0, "credit", "bob"); err == nil {
		t.Fatalf("expected zero capacity to be rejected")
	}

	insertItem := `INSERT INTO redeem_item_types (id, catalog_id, position, name, symbol, uri, reward_rate) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insertItem, "i1", "c1", 0, "Can", "CAN", "https://x/can.json", nil); err != nil {
		t.Fatalf("insert item type: %v", err)
	}
	if _, err := db.ExecContext(ctx, insertItem, "i2", "c1", 0, "Bottle", "BTL", "https://x/btl.json", "100"); err == nil {
		t.Fatalf("expected duplicate position to be rejected")
	}

	if err := execSQLMigration(ctx, db, sqliteMigrations, "00001_redeem_catalogs.down.sql"); err != nil {
		t.Fatalf("rollback catalogs migration: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name LIKE 'redeem_%'",
	).Scan(&count); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected tables to be dropped, got %d", count)
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}

func TestWithValidationTargets_IgnoresBlankAndDuplicateDialects(t *testing.T) {
	reg := Registration{ValidationTargets: []string{DialectPostgres, DialectSQLite}}
	WithValidationTargets(" ", "")(&reg)
	if len(reg.ValidationTargets) != 2 {
		t.Fatalf("expected defaults to survive blank targets, got %v", reg.ValidationTargets)
	}
	WithValidationTargets("SQLite", " sqlite ")(&reg)
	if len(reg.ValidationTargets) != 1 || reg.ValidationTargets[0] != DialectSQLite {
		t.Fatalf("expected normalized sqlite target, got %v", reg.ValidationTargets)
	}
}
