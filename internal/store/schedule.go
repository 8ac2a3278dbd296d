package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/bramble/internal/model"
)

type ScheduleStore struct {
	db *sql.DB
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

func scanSchedule(scanner interface{ Scan(...any) error }) (*model.TaskSchedule, error) {
	var s model.TaskSchedule
	var assignedTo sql.NullInt64
	var assignedRole sql.NullString
	var lastGenerated sql.NullTime
	var archived int

	err := scanner.Scan(
		&s.ID, &s.Title, &s.Description, &s.Points, &s.RecurrenceRule,
		&assignedTo, &assignedRole, &lastGenerated, &archived,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		s.AssignedTo = &assignedTo.Int64
	}
	if assignedRole.Valid {
		s.AssignedRole = &assignedRole.String
	}
	if lastGenerated.Valid {
		s.LastGeneratedOn = &lastGenerated.Time
	}
	s.Archived = archived != 0
	return &s, nil
}

const scheduleCols = `id, title, description, points, recurrence_rule, assigned_to, assigned_role, last_generated_on, archived, created_at, updated_at`

func (s *ScheduleStore) Create(title, description string, points int, recurrenceRule string, assignedTo *int64, assignedRole *string) (*model.TaskSchedule, error) {
	var aTo sql.NullInt64
	if assignedTo != nil {
		aTo = sql.NullInt64{Int64: *assignedTo, Valid: true}
	}
	var aRole sql.NullString
	if assignedRole != nil {
		aRole = sql.NullString{String: *assignedRole, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO task_schedules (title, description, points, recurrence_rule, assigned_to, assigned_role) VALUES (?, ?, ?, ?, ?, ?)`,
		title, description, points, recurrenceRule, aTo, aRole,
	)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ScheduleStore) GetByID(id int64) (*model.TaskSchedule, error) {
	row := s.db.QueryRow(`SELECT `+scheduleCols+` FROM task_schedules WHERE id = ?`, id)
	sched, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return sched, nil
}

// ListActive returns all schedules that have not been archived. Date-range
// eligibility is part of each schedule's recurrence rule and is evaluated by
// the generator, not here.
func (s *ScheduleStore) ListActive() ([]model.TaskSchedule, error) {
	rows, err := s.db.Query(`SELECT ` + scheduleCols + ` FROM task_schedules WHERE archived = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.TaskSchedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, *sched)
	}
	return schedules, rows.Err()
}

func (s *ScheduleStore) Update(id int64, title, description string, points int, recurrenceRule string, assignedTo *int64, assignedRole *string) (*model.TaskSchedule, error) {
	var aTo sql.NullInt64
	if assignedTo != nil {
		aTo = sql.NullInt64{Int64: *assignedTo, Valid: true}
	}
	var aRole sql.NullString
	if assignedRole != nil {
		aRole = sql.NullString{String: *assignedRole, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE task_schedules SET title = ?, description = ?, points = ?, recurrence_rule = ?, assigned_to = ?, assigned_role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, points, recurrenceRule, aTo, aRole, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return s.GetByID(id)
}

// UpdateLastGenerated records the most recent date the generator produced a
// task for this schedule.
func (s *ScheduleStore) UpdateLastGenerated(id int64, date time.Time) error {
	_, err := s.db.Exec(
		`UPDATE task_schedules SET last_generated_on = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		midnightUTC(date), id,
	)
	if err != nil {
		return fmt.Errorf("update last generated: %w", err)
	}
	return nil
}

func (s *ScheduleStore) Archive(id int64) error {
	_, err := s.db.Exec(
		`UPDATE task_schedules SET archived = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("archive schedule: %w", err)
	}
	return nil
}
