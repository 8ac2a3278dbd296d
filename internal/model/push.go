package model

import "time"

// Notification type constants
const (
	NotifTypeGoalAwarded   = "goal_awarded"
	NotifTypeGoalZero      = "goal_zero"
	NotifTypeTaskGenerated = "task_generated"
	NotifTypePointsAwarded = "points_awarded"
)

type PushSubscription struct {
	ID         int64     `json:"id"`
	MemberID   int64     `json:"member_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
