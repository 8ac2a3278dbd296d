package database

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM task_schedules`).Scan(&n); err != nil {
		t.Fatalf("query migrated table: %v", err)
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "bramble.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var mode string
	if err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("read journal mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	// Foreign keys must be enforced on every pooled connection.
	_, err = db.Exec(`INSERT INTO point_awards (member_id, points, source) VALUES (999, 5, 'manual')`)
	if err == nil {
		t.Fatal("insert referencing a missing member should violate the foreign key")
	}
}
