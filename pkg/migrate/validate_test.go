package migrate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	t.Parallel()

	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations failed validation: %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := filepath.Join(dir, "not_a_migration.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected validation failure for bad filename")
	}
}

func TestValidateDirRejectsMissingHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "20260101000000_missing_down.sql")
	if err := os.WriteFile(missing, []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected validation failure for missing down header")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Refund Columns!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("unexpected path %q", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration failed validation: %v", err)
	}
}
