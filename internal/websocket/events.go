package websocket

import "github.com/dukerupert/bramble/internal/model"

// Events adapts the hub to the narrow publisher interfaces the generation
// and settlement runners consume. Every emission is fire-and-forget.
type Events struct {
	hub *Hub
}

func NewEvents(hub *Hub) *Events {
	return &Events{hub: hub}
}

// TaskGenerated announces a freshly generated recurring task.
func (e *Events) TaskGenerated(task *model.Task) {
	extra := map[string]any{
		"due_at": task.DueAt,
	}
	if task.ScheduleID != nil {
		extra["schedule_id"] = *task.ScheduleID
	}
	if task.AssignedTo != nil {
		extra["assigned_to"] = *task.AssignedTo
	}
	e.hub.Broadcast(NewMessage("task", "generated", task.ID, extra))
}

// GoalSettled announces a settled contribution goal and the points awarded.
func (e *Events) GoalSettled(goal model.ContributionGoal, awarded int) {
	e.hub.Broadcast(NewMessage("goal", "settled", goal.ID, map[string]any{
		"member_id":  goal.MemberID,
		"week_start": goal.WeekStart,
		"awarded":    awarded,
	}))
}
