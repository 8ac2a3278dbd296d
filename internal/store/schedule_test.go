package store

import (
	"testing"
	"time"

	"github.com/dukerupert/bramble/internal/database"
)

func setupScheduleTestDB(t *testing.T) (*ScheduleStore, *TaskStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewScheduleStore(db), NewTaskStore(db)
}

func TestScheduleCRUD(t *testing.T) {
	ss, _ := setupScheduleTestDB(t)

	role := "kid"
	sched, err := ss.Create("Feed the cat", "Half a can", 5, "BYDAY=MO,TH;START=20250101", nil, &role)
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if sched.Title != "Feed the cat" {
		t.Errorf("title = %q, want %q", sched.Title, "Feed the cat")
	}
	if sched.Points != 5 {
		t.Errorf("points = %d, want 5", sched.Points)
	}
	if sched.AssignedRole == nil || *sched.AssignedRole != "kid" {
		t.Errorf("assigned role = %v, want kid", sched.AssignedRole)
	}
	if sched.AssignedTo != nil {
		t.Errorf("assigned to = %v, want nil", sched.AssignedTo)
	}
	if sched.LastGeneratedOn != nil {
		t.Errorf("last generated = %v, want nil on a fresh schedule", sched.LastGeneratedOn)
	}
	if sched.Archived {
		t.Error("fresh schedule should not be archived")
	}

	got, err := ss.GetByID(sched.ID)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if got == nil || got.Title != "Feed the cat" {
		t.Fatalf("got = %+v, want the created schedule", got)
	}

	updated, err := ss.Update(sched.ID, "Feed the cat", "A full can", 8, "BYDAY=MO;START=20250101", nil, nil)
	if err != nil {
		t.Fatalf("update schedule: %v", err)
	}
	if updated.Points != 8 || updated.Description != "A full can" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.AssignedRole != nil {
		t.Errorf("assigned role should clear, got %v", updated.AssignedRole)
	}
}

func TestScheduleGetMissing(t *testing.T) {
	ss, _ := setupScheduleTestDB(t)

	got, err := ss.GetByID(12345)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil for a missing schedule", got)
	}
}

func TestScheduleUpdateLastGenerated(t *testing.T) {
	ss, _ := setupScheduleTestDB(t)

	sched, err := ss.Create("Trash", "", 10, "BYDAY=WE;START=20250101", nil, nil)
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}

	date := time.Date(2025, 1, 8, 14, 30, 0, 0, time.UTC)
	if err := ss.UpdateLastGenerated(sched.ID, date); err != nil {
		t.Fatalf("update last generated: %v", err)
	}

	got, err := ss.GetByID(sched.ID)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if got.LastGeneratedOn == nil {
		t.Fatal("last generated should be set")
	}
	// Stored as a date: the time of day is dropped.
	if got.LastGeneratedOn.Format("2006-01-02") != "2025-01-08" {
		t.Errorf("last generated = %v, want 2025-01-08", got.LastGeneratedOn)
	}
}

func TestScheduleArchiveHidesFromActive(t *testing.T) {
	ss, _ := setupScheduleTestDB(t)

	a, err := ss.Create("Keep", "", 1, "BYDAY=MO;START=20250101", nil, nil)
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := ss.Create("Archive me", "", 1, "BYDAY=TU;START=20250101", nil, nil)
	if err != nil {
		t.Fatalf("create b: %v", err)
	}

	if err := ss.Archive(b.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	active, err := ss.ListActive()
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Fatalf("active = %+v, want only %d", active, a.ID)
	}
}
