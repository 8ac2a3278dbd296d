package model

import "time"

// Activity kind constants
const (
	ActivityGoalAwarded   = "goal_awarded"
	ActivityGoalZero      = "goal_zero"
	ActivityTaskCreated   = "task_created"
	ActivityTaskCompleted = "task_completed"
)

type ActivityEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	MemberID  *int64    `json:"member_id"`
	Points    int       `json:"points"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}
