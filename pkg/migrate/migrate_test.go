package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/db"
	"gorm.io/driver/sqlite"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := ValidateEmbedded(); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestRunUpOnSQLite(t *testing.T) {
	conn, err := db.Open(sqlite.Open("file:migrate_up?mode=memory&cache=shared&_foreign_keys=on"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	ctx := context.Background()

	if err := Run(ctx, sqlDB, config.DriverSQLite, "up"); err != nil {
		t.Fatalf("goose up: %v", err)
	}
	version, err := Version(ctx, sqlDB, config.DriverSQLite)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != 20250101090200 {
		t.Fatalf("unexpected version %d", version)
	}
	for _, table := range []string{"users", "profiles", "interviews"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}

	if err := MigrateToVersion(ctx, sqlDB, config.DriverSQLite, "20250101090100"); err != nil {
		t.Fatalf("down to profiles: %v", err)
	}
	if conn.Migrator().HasTable("interviews") {
		t.Fatalf("interviews should be dropped after down-to")
	}
}

func TestCreateAndValidateDir(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Likes Index!", time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(path) != "20250203040506_add_likes_index.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("select 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil || !strings.Contains(err.Error(), "bad.sql") {
		t.Fatalf("expected filename error, got %v", err)
	}
}

func TestDialect(t *testing.T) {
	if Dialect(config.DriverSQLite) != "sqlite3" || Dialect("") != "postgres" {
		t.Fatalf("unexpected dialect mapping")
	}
}
