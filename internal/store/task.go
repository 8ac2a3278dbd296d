package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/bramble/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var scheduleID, assignedTo, completedBy sql.NullInt64
	var assignedRole sql.NullString
	var completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &scheduleID, &t.Title, &t.Description, &t.Points, &t.DueAt,
		&assignedTo, &assignedRole, &completedAt, &completedBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if scheduleID.Valid {
		t.ScheduleID = &scheduleID.Int64
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	if assignedRole.Valid {
		t.AssignedRole = &assignedRole.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if completedBy.Valid {
		t.CompletedBy = &completedBy.Int64
	}
	return &t, nil
}

const taskCols = `id, schedule_id, title, description, points, due_at, assigned_to, assigned_role, completed_at, completed_by, created_at`

// CreateParams carries the fields for a new task row. ScheduleID is nil for
// ad-hoc tasks created outside the generator.
type CreateParams struct {
	ScheduleID   *int64
	Title        string
	Description  string
	Points       int
	DueAt        time.Time
	AssignedTo   *int64
	AssignedRole *string
}

func (s *TaskStore) Create(p CreateParams) (*model.Task, error) {
	var schedID sql.NullInt64
	if p.ScheduleID != nil {
		schedID = sql.NullInt64{Int64: *p.ScheduleID, Valid: true}
	}
	var aTo sql.NullInt64
	if p.AssignedTo != nil {
		aTo = sql.NullInt64{Int64: *p.AssignedTo, Valid: true}
	}
	var aRole sql.NullString
	if p.AssignedRole != nil {
		aRole = sql.NullString{String: *p.AssignedRole, Valid: true}
	}

	// due_date carries the occurrence day in a plain YYYY-MM-DD form so
	// day-keyed lookups and the uniqueness index never depend on how the
	// driver serializes the due_at timestamp.
	result, err := s.db.Exec(
		`INSERT INTO tasks (schedule_id, title, description, points, due_at, due_date, assigned_to, assigned_role) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		schedID, p.Title, p.Description, p.Points, p.DueAt.UTC(), p.DueAt.UTC().Format("2006-01-02"), aTo, aRole,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// GetByScheduleAndDate returns the task generated for a schedule on a given
// calendar day, or nil when none exists. This backs the generator's
// idempotency check.
func (s *TaskStore) GetByScheduleAndDate(scheduleID int64, date time.Time) (*model.Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskCols+` FROM tasks WHERE schedule_id = ? AND due_date = ?`,
		scheduleID, date.UTC().Format("2006-01-02"),
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task by schedule and date: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListIncompleteBySchedule(scheduleID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE schedule_id = ? AND completed_at IS NULL ORDER BY due_at ASC`,
		scheduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list incomplete tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) ListOpen() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks WHERE completed_at IS NULL ORDER BY due_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// DeleteByIDs removes the given tasks and returns how many rows were deleted.
func (s *TaskStore) DeleteByIDs(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := s.db.Exec(`DELETE FROM tasks WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *TaskStore) Complete(id int64, completedBy *int64) (*model.Task, error) {
	var cBy sql.NullInt64
	if completedBy != nil {
		cBy = sql.NullInt64{Int64: *completedBy, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET completed_at = CURRENT_TIMESTAMP, completed_by = ? WHERE id = ?`,
		cBy, id,
	)
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	return s.GetByID(id)
}
