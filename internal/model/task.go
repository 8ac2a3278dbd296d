package model

import "time"

type Task struct {
	ID           int64      `json:"id"`
	ScheduleID   *int64     `json:"schedule_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Points       int        `json:"points"`
	DueAt        time.Time  `json:"due_at"`
	AssignedTo   *int64     `json:"assigned_to"`
	AssignedRole *string    `json:"assigned_role"`
	CompletedAt  *time.Time `json:"completed_at"`
	CompletedBy  *int64     `json:"completed_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Incomplete reports whether the task has not been completed yet.
func (t Task) Incomplete() bool {
	return t.CompletedAt == nil
}
