package push

import "fmt"

// GoalAwardedPayload is the notification for a settled contribution goal
// that earned points.
func GoalAwardedPayload(pts int) Payload {
	return Payload{
		Title: "Weekly Karma Awarded",
		Body:  fmt.Sprintf("You earned %d karma points this week!", pts),
		URL:   "/karma",
		Tag:   "goal-awarded",
	}
}

// GoalZeroPayload is the notification for a settled goal whose deductions
// used up the whole allowance.
func GoalZeroPayload() Payload {
	return Payload{
		Title: "Weekly Karma",
		Body:  "No karma points this week — better luck next week!",
		URL:   "/karma",
		Tag:   "goal-zero",
	}
}

// TaskGeneratedPayload is the notification for a freshly generated
// recurring task.
func TaskGeneratedPayload(title string) Payload {
	return Payload{
		Title: "New Task",
		Body:  fmt.Sprintf("%s is due today", title),
		URL:   "/tasks",
		Tag:   "task-generated",
	}
}

// PointsAwardedPayload is the ledger's generic award notification, used by
// award paths that do not send their own.
func PointsAwardedPayload(pts int, note string) Payload {
	body := fmt.Sprintf("You earned %d karma points", pts)
	if note != "" {
		body = fmt.Sprintf("You earned %d karma points: %s", pts, note)
	}
	return Payload{
		Title: "Karma Points",
		Body:  body,
		URL:   "/karma",
		Tag:   "points-awarded",
	}
}
