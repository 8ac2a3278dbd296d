package model

import "time"

type TaskSchedule struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Points          int        `json:"points"`
	RecurrenceRule  string     `json:"recurrence_rule"`
	AssignedTo      *int64     `json:"assigned_to"`
	AssignedRole    *string    `json:"assigned_role"`
	LastGeneratedOn *time.Time `json:"last_generated_on"`
	Archived        bool       `json:"archived"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
