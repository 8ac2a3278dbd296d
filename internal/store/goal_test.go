package store

import (
	"testing"
	"time"

	"github.com/dukerupert/bramble/internal/database"
)

func setupGoalTestDB(t *testing.T) (*GoalStore, *FamilyMemberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGoalStore(db), NewFamilyMemberStore(db)
}

var goalWeek = time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

func TestGoalCreateAndRemaining(t *testing.T) {
	gs, ms := setupGoalTestDB(t)

	member, err := ms.Create("Robin", "kid", "#4A90D9", "", 0)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	goal, err := gs.Create(member.ID, goalWeek, 100)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if goal.MaxPoints != 100 {
		t.Errorf("max points = %d, want 100", goal.MaxPoints)
	}
	if goal.Remaining() != 100 {
		t.Errorf("remaining = %d, want 100 with no deductions", goal.Remaining())
	}

	if _, err := gs.AddDeduction(goal.ID, 15, "skipped dishes", nil); err != nil {
		t.Fatalf("add deduction: %v", err)
	}
	if _, err := gs.AddDeduction(goal.ID, 5, "late for dinner", &member.ID); err != nil {
		t.Fatalf("add second deduction: %v", err)
	}

	got, err := gs.GetByID(goal.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if len(got.Deductions) != 2 {
		t.Fatalf("deductions = %d, want 2", len(got.Deductions))
	}
	if got.Deductions[0].Reason != "skipped dishes" {
		t.Errorf("deduction order wrong: %+v", got.Deductions)
	}
	if got.Remaining() != 80 {
		t.Errorf("remaining = %d, want 80", got.Remaining())
	}
}

func TestGoalRejectsBadValues(t *testing.T) {
	gs, ms := setupGoalTestDB(t)

	member, err := ms.Create("Robin", "kid", "#4A90D9", "", 0)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}

	if _, err := gs.Create(member.ID, goalWeek, 0); err == nil {
		t.Error("max points below 1 should be rejected")
	}

	goal, err := gs.Create(member.ID, goalWeek, 50)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := gs.AddDeduction(goal.ID, 0, "nothing", nil); err == nil {
		t.Error("zero deduction should be rejected")
	}
	if _, err := gs.AddDeduction(goal.ID, -5, "negative", nil); err == nil {
		t.Error("negative deduction should be rejected")
	}
}

func TestGoalListActiveForWeek(t *testing.T) {
	gs, ms := setupGoalTestDB(t)

	a, err := ms.Create("Robin", "kid", "#4A90D9", "", 0)
	if err != nil {
		t.Fatalf("create member a: %v", err)
	}
	b, err := ms.Create("Sam", "kid", "#D94A4A", "", 1)
	if err != nil {
		t.Fatalf("create member b: %v", err)
	}

	if _, err := gs.Create(a.ID, goalWeek, 100); err != nil {
		t.Fatalf("create goal a: %v", err)
	}
	if _, err := gs.Create(b.ID, goalWeek, 60); err != nil {
		t.Fatalf("create goal b: %v", err)
	}
	// A goal in a different week must not show up.
	if _, err := gs.Create(a.ID, goalWeek.AddDate(0, 0, 7), 100); err != nil {
		t.Fatalf("create next-week goal: %v", err)
	}

	goals, err := gs.ListActiveForWeek(goalWeek)
	if err != nil {
		t.Fatalf("list for week: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("goals = %d, want 2", len(goals))
	}
}

func TestGoalDeleteByID(t *testing.T) {
	gs, ms := setupGoalTestDB(t)

	member, err := ms.Create("Robin", "kid", "#4A90D9", "", 0)
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	goal, err := gs.Create(member.ID, goalWeek, 100)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := gs.AddDeduction(goal.ID, 10, "testing", nil); err != nil {
		t.Fatalf("add deduction: %v", err)
	}

	deleted, err := gs.DeleteByID(goal.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deletion to report true")
	}

	// Deleting again is not an error, just false.
	deleted, err = gs.DeleteByID(goal.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Fatal("second delete should report false")
	}

	got, err := gs.GetByID(goal.ID)
	if err != nil {
		t.Fatalf("get deleted goal: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil after deletion", got)
	}
}
