package db

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := "sqlite://" + filepath.Join(t.TempDir(), "test.db")
	database, err := Open(context.Background(), url)
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestDataSourceFor(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantDriver string
		wantDSN    string
		wantErr    bool
	}{
		{name: "sqlite absolute", url: "sqlite:///var/lib/sb.db", wantDriver: "sqlite3", wantDSN: "file:/var/lib/sb.db?" + sqliteDefaults},
		{name: "sqlite relative", url: "sqlite://data/sb.db", wantDriver: "sqlite3", wantDSN: "file:data/sb.db?" + sqliteDefaults},
		{name: "sqlite explicit options", url: "sqlite://sb.db?_journal_mode=WAL", wantDriver: "sqlite3", wantDSN: "file:sb.db?_journal_mode=WAL"},
		{name: "postgres", url: "postgres://u:p@localhost:5432/sb?sslmode=disable", wantDriver: "postgres", wantDSN: "postgres://u:p@localhost:5432/sb?sslmode=disable"},
		{name: "postgresql alias", url: "postgresql://localhost/sb", wantDriver: "postgres", wantDSN: "postgresql://localhost/sb"},
		{name: "mysql rejected", url: "mysql://localhost/sb", wantErr: true},
		{name: "sqlite without path", url: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, dsn, err := dataSourceFor(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("dataSourceFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if driver != tt.wantDriver || dsn != tt.wantDSN {
				t.Errorf("dataSourceFor() = (%q, %q), want (%q, %q)", driver, dsn, tt.wantDriver, tt.wantDSN)
			}
		})
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	ran, err := MigrateUp(ctx, database)
	if err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}
	if len(ran) == 0 || ran[0] != "001_initial_schema.sql" {
		t.Errorf("MigrateUp() ran %v, want 001_initial_schema.sql first", ran)
	}

	ran, err = MigrateUp(ctx, database)
	if err != nil {
		t.Fatalf("second MigrateUp() error = %v, want nil", err)
	}
	if len(ran) != 0 {
		t.Errorf("second MigrateUp() ran %v, want nothing", ran)
	}

	var tables int
	err = database.Get(&tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('product_categories', 'items', 'campaigns', 'form_drafts', 'form_revisions', 'api_keys')`)
	if err != nil {
		t.Fatalf("table count query failed: %v", err)
	}
	if tables != 6 {
		t.Errorf("found %d schema tables, want 6", tables)
	}
}

func TestMigrateStatus(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	before, err := MigrateStatus(ctx, database)
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v, want nil", err)
	}
	for _, s := range before {
		if s.Applied {
			t.Errorf("migration %s applied before MigrateUp", s.ID)
		}
	}

	if _, err := MigrateUp(ctx, database); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}

	after, err := MigrateStatus(ctx, database)
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v, want nil", err)
	}
	for _, s := range after {
		if !s.Applied || s.AppliedAt == nil {
			t.Errorf("migration %s Applied = %v AppliedAt = %v, want applied with timestamp", s.ID, s.Applied, s.AppliedAt)
		}
	}
}

func TestMigrateUp_DetectsChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	if _, err := MigrateUp(ctx, database); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}
	if _, err := database.Exec(`UPDATE migrations SET checksum = 'tampered' WHERE migration_id = '001_initial_schema.sql'`); err != nil {
		t.Fatalf("tamper update failed: %v", err)
	}

	_, err := MigrateUp(ctx, database)
	if err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("MigrateUp() error = %v, want checksum mismatch", err)
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `-- header comment
CREATE TABLE a (id INTEGER);
  -- indented comment
CREATE INDEX idx_a ON a (id);

`
	got := splitStatements(sql)
	if len(got) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("statement 0 = %q", got[0])
	}
}

func TestQueries_InTxRollsBack(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	if _, err := MigrateUp(ctx, database); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}
	queries, err := LoadQueries(database)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v, want nil", err)
	}

	errAbort := errors.New("abort")
	err = queries.InTx(ctx, func(tx *Queries) error {
		if _, err := tx.Exec(ctx, "upsert-form-draft", 1, 2, `{"steps":[]}`, "2026-01-01 00:00:00"); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("InTx() error = %v, want abort", err)
	}

	var data string
	err = queries.Get(ctx, "get-form-draft", &data, 1, 2)
	if err == nil {
		t.Errorf("draft visible after rollback: %s", data)
	}
}

func TestQueries_UnknownName(t *testing.T) {
	database := openTestDB(t)
	queries, err := LoadQueries(database)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v, want nil", err)
	}

	if _, err := queries.Exec(context.Background(), "drop-everything"); err == nil {
		t.Error("Exec() with unknown query name succeeded")
	}
}
