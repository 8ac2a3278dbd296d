package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/bramble/internal/model"
)

type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(db *sql.DB) *GoalStore {
	return &GoalStore{db: db}
}

func scanGoal(scanner interface{ Scan(...any) error }) (*model.ContributionGoal, error) {
	var g model.ContributionGoal
	err := scanner.Scan(&g.ID, &g.MemberID, &g.WeekStart, &g.MaxPoints, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

const goalCols = `id, member_id, week_start, max_points, created_at`

func (s *GoalStore) Create(memberID int64, weekStart time.Time, maxPoints int) (*model.ContributionGoal, error) {
	if maxPoints < 1 {
		return nil, fmt.Errorf("max points must be at least 1, got %d", maxPoints)
	}

	result, err := s.db.Exec(
		`INSERT INTO contribution_goals (member_id, week_start, max_points) VALUES (?, ?, ?)`,
		memberID, midnightUTC(weekStart), maxPoints,
	)
	if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GoalStore) GetByID(id int64) (*model.ContributionGoal, error) {
	row := s.db.QueryRow(`SELECT `+goalCols+` FROM contribution_goals WHERE id = ?`, id)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}

	if err := s.loadDeductions(g); err != nil {
		return nil, err
	}
	return g, nil
}

// ListActiveForWeek returns all contribution goals for the given week start,
// with their deductions loaded.
func (s *GoalStore) ListActiveForWeek(weekStart time.Time) ([]model.ContributionGoal, error) {
	rows, err := s.db.Query(
		`SELECT `+goalCols+` FROM contribution_goals WHERE week_start = ? ORDER BY id ASC`,
		midnightUTC(weekStart),
	)
	if err != nil {
		return nil, fmt.Errorf("list goals for week: %w", err)
	}
	defer rows.Close()

	var goals []model.ContributionGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range goals {
		if err := s.loadDeductions(&goals[i]); err != nil {
			return nil, err
		}
	}
	return goals, nil
}

// AddDeduction records a deduction against a goal's maximum potential.
func (s *GoalStore) AddDeduction(goalID int64, amount int, reason string, recordedBy *int64) (*model.GoalDeduction, error) {
	if amount < 1 {
		return nil, fmt.Errorf("deduction amount must be positive, got %d", amount)
	}

	var rBy sql.NullInt64
	if recordedBy != nil {
		rBy = sql.NullInt64{Int64: *recordedBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO goal_deductions (goal_id, amount, reason, recorded_by) VALUES (?, ?, ?, ?)`,
		goalID, amount, reason, rBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert deduction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+deductionCols+` FROM goal_deductions WHERE id = ?`, id)
	return scanDeduction(row)
}

// DeleteByID removes a settled goal. It returns false when the goal was
// already gone, which callers treat as a no-op rather than an error.
func (s *GoalStore) DeleteByID(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM contribution_goals WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete goal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func scanDeduction(scanner interface{ Scan(...any) error }) (*model.GoalDeduction, error) {
	var d model.GoalDeduction
	var recordedBy sql.NullInt64

	err := scanner.Scan(&d.ID, &d.GoalID, &d.Amount, &d.Reason, &recordedBy, &d.CreatedAt)
	if err != nil {
		return nil, err
	}

	if recordedBy.Valid {
		d.RecordedBy = &recordedBy.Int64
	}
	return &d, nil
}

const deductionCols = `id, goal_id, amount, reason, recorded_by, created_at`

func (s *GoalStore) loadDeductions(g *model.ContributionGoal) error {
	rows, err := s.db.Query(
		`SELECT `+deductionCols+` FROM goal_deductions WHERE goal_id = ? ORDER BY created_at ASC, id ASC`,
		g.ID,
	)
	if err != nil {
		return fmt.Errorf("list deductions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return fmt.Errorf("scan deduction: %w", err)
		}
		g.Deductions = append(g.Deductions, *d)
	}
	return rows.Err()
}
