package model

import "time"

// Award source constants
const (
	AwardSourceGoal   = "contribution_goal"
	AwardSourceTask   = "task"
	AwardSourceManual = "manual"
)

type PointAward struct {
	ID        int64     `json:"id"`
	MemberID  int64     `json:"member_id"`
	Points    int       `json:"points"`
	Source    string    `json:"source"`
	Reference string    `json:"reference"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type PointBalance struct {
	MemberID    int64  `json:"member_id"`
	MemberName  string `json:"member_name"`
	TotalEarned int    `json:"total_earned"`
	TotalSpent  int    `json:"total_spent"`
	Balance     int    `json:"balance"`
}
