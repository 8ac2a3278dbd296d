package settlement

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/bramble/internal/model"
	"github.com/dukerupert/bramble/internal/points"
	"github.com/dukerupert/bramble/internal/push"
)

// GoalStore is the slice of the contribution-goal store the runner needs.
type GoalStore interface {
	ListActiveForWeek(weekStart time.Time) ([]model.ContributionGoal, error)
	DeleteByID(id int64) (bool, error)
}

// Ledger awards points. The runner always passes notify=false and
// sends its own settlement notifications.
type Ledger interface {
	Award(req points.AwardRequest, notify bool) (*model.PointAward, error)
}

// ActivityLog records settlement entries for the activity feed.
type ActivityLog interface {
	Record(kind string, memberID *int64, pts int, detail string) error
}

// Notifier delivers best-effort push notifications to a member's devices.
type Notifier interface {
	SendToMember(memberID int64, payload push.Payload) error
}

// Events receives fire-and-forget realtime notifications for settled goals.
type Events interface {
	GoalSettled(goal model.ContributionGoal, awarded int)
}

// Summary reports the outcome of one settlement batch.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

// Runner settles contribution goals at the end of each week: it converts a
// goal's remaining allowance into awarded points and deletes the goal.
// Goals are processed sequentially and in isolation; one goal's failure
// never stops the rest of the batch.
type Runner struct {
	goals    GoalStore
	ledger   Ledger
	activity ActivityLog
	notifier Notifier
	events   Events
	logger   *slog.Logger
}

// NewRunner creates a settlement runner. activity, notifier, and events may
// each be nil; a nil activity log skips feed entries, and the other two
// degrade to silence.
func NewRunner(goals GoalStore, ledger Ledger, activity ActivityLog, notifier Notifier, events Events, logger *slog.Logger) *Runner {
	return &Runner{
		goals:    goals,
		ledger:   ledger,
		activity: activity,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// ProcessWeek settles every goal recorded for the given week start. Failing
// to list the goals aborts the invocation; per-goal failures are logged,
// counted, and leave the goal in place so the next run retries it.
func (r *Runner) ProcessWeek(weekStart time.Time) (Summary, error) {
	goals, err := r.goals.ListActiveForWeek(weekStart)
	if err != nil {
		return Summary{}, fmt.Errorf("list goals for week: %w", err)
	}

	if len(goals) == 0 {
		r.logger.Info("no goals to settle", "week_start", weekStart.Format("2006-01-02"))
		return Summary{}, nil
	}

	var summary Summary
	for _, goal := range goals {
		summary.Total++

		if err := r.settleOne(goal); err != nil {
			r.logger.Error("settle goal",
				"goal_id", goal.ID,
				"member_id", goal.MemberID,
				"error", err,
			)
			summary.Errors++
			continue
		}
		summary.Success++
	}

	r.logger.Info("settlement complete",
		"week_start", weekStart.Format("2006-01-02"),
		"total", summary.Total,
		"success", summary.Success,
		"errors", summary.Errors,
	)
	return summary, nil
}

// settleOne settles a single goal. An error from the ledger or activity log
// leaves the goal undeleted so it is retried on the next run; notification
// failures are logged and swallowed, and never block deletion.
func (r *Runner) settleOne(goal model.ContributionGoal) error {
	remaining := goal.Remaining()

	if remaining > 0 {
		_, err := r.ledger.Award(points.AwardRequest{
			MemberID:  goal.MemberID,
			Points:    remaining,
			Source:    model.AwardSourceGoal,
			Reference: fmt.Sprintf("goal-%d", goal.ID),
			Note:      fmt.Sprintf("weekly contribution goal (%s)", goal.WeekStart.Format("2006-01-02")),
		}, false)
		if err != nil {
			return fmt.Errorf("award points: %w", err)
		}

		if r.activity != nil {
			detail := fmt.Sprintf("earned %d of %d karma points for the week of %s",
				remaining, goal.MaxPoints, goal.WeekStart.Format("2006-01-02"))
			if err := r.activity.Record(model.ActivityGoalAwarded, &goal.MemberID, remaining, detail); err != nil {
				return fmt.Errorf("record activity: %w", err)
			}
		}

		r.notify(goal.MemberID, push.GoalAwardedPayload(remaining))
	} else {
		// Deductions used up the whole allowance; no ledger call. The raw
		// remaining goes into the detail so an overdrawn week is visible.
		if r.activity != nil {
			detail := fmt.Sprintf("earned 0 karma points for the week of %s (remaining %d)",
				goal.WeekStart.Format("2006-01-02"), remaining)
			if err := r.activity.Record(model.ActivityGoalZero, &goal.MemberID, 0, detail); err != nil {
				return fmt.Errorf("record activity: %w", err)
			}
		}

		r.notify(goal.MemberID, push.GoalZeroPayload())
	}

	// Settlement is terminal regardless of notification outcome.
	deleted, err := r.goals.DeleteByID(goal.ID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if !deleted {
		r.logger.Debug("goal already deleted", "goal_id", goal.ID)
	}

	if r.events != nil {
		awarded := remaining
		if awarded < 0 {
			awarded = 0
		}
		r.events.GoalSettled(goal, awarded)
	}
	return nil
}

func (r *Runner) notify(memberID int64, payload push.Payload) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.SendToMember(memberID, payload); err != nil {
		r.logger.Warn("settlement notification failed", "member_id", memberID, "error", err)
	}
}
