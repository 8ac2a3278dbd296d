package model

import "time"

type ContributionGoal struct {
	ID         int64           `json:"id"`
	MemberID   int64           `json:"member_id"`
	WeekStart  time.Time       `json:"week_start"`
	MaxPoints  int             `json:"max_points"`
	Deductions []GoalDeduction `json:"deductions"`
	CreatedAt  time.Time       `json:"created_at"`
}

type GoalDeduction struct {
	ID         int64     `json:"id"`
	GoalID     int64     `json:"goal_id"`
	Amount     int       `json:"amount"`
	Reason     string    `json:"reason"`
	RecordedBy *int64    `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Remaining returns the goal's remaining potential: max points minus the sum
// of all recorded deductions. The result may be negative.
func (g ContributionGoal) Remaining() int {
	remaining := g.MaxPoints
	for _, d := range g.Deductions {
		remaining -= d.Amount
	}
	return remaining
}
