package generate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/bramble/internal/model"
	"github.com/dukerupert/bramble/internal/recurrence"
	"github.com/dukerupert/bramble/internal/store"
)

// catchUpWindow bounds how far back GenerateMissed walks. It covers the
// longest supported interval (4 weeks) with a week of slack.
const catchUpWindow = 35

// ScheduleStore is the slice of the schedule store the runner needs.
type ScheduleStore interface {
	ListActive() ([]model.TaskSchedule, error)
	UpdateLastGenerated(id int64, date time.Time) error
}

// TaskStore is the slice of the task store the runner needs.
type TaskStore interface {
	GetByScheduleAndDate(scheduleID int64, date time.Time) (*model.Task, error)
	ListIncompleteBySchedule(scheduleID int64) ([]model.Task, error)
	DeleteByIDs(ids []int64) (int64, error)
	Create(p store.CreateParams) (*model.Task, error)
}

// Events receives fire-and-forget realtime notifications for generated tasks.
type Events interface {
	TaskGenerated(task *model.Task)
}

// Summary reports the outcome of one generation batch.
type Summary struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

func (s *Summary) add(other Summary) {
	s.Total += other.Total
	s.Generated += other.Generated
	s.Skipped += other.Skipped
	s.Errors += other.Errors
}

// Runner turns recurring task schedules into concrete task instances.
// Each invocation processes its batch sequentially; a failure on one
// schedule never stops the rest of the batch.
type Runner struct {
	schedules ScheduleStore
	tasks     TaskStore
	events    Events
	logger    *slog.Logger
}

// NewRunner creates a generation runner. events may be nil.
func NewRunner(schedules ScheduleStore, tasks TaskStore, events Events, logger *slog.Logger) *Runner {
	return &Runner{
		schedules: schedules,
		tasks:     tasks,
		events:    events,
		logger:    logger,
	}
}

// GenerateForDate generates a task for every active schedule due on date.
// Failing to list the active schedules aborts the whole invocation;
// per-schedule failures are logged, counted, and skipped over.
func (r *Runner) GenerateForDate(date time.Time) (Summary, error) {
	// Pin the wall-clock input to one calendar-day convention so the
	// existence lookup and the created task's due time agree on the day.
	date = dayOf(date)

	schedules, err := r.schedules.ListActive()
	if err != nil {
		return Summary{}, fmt.Errorf("list active schedules: %w", err)
	}

	var summary Summary
	for i := range schedules {
		sched := &schedules[i]
		summary.Total++

		generated, err := r.generateOne(sched, date)
		if err != nil {
			r.logger.Error("generate task", "schedule_id", sched.ID, "date", date.Format("2006-01-02"), "error", err)
			summary.Errors++
			continue
		}
		if generated {
			summary.Generated++
		} else {
			summary.Skipped++
		}
	}

	r.logger.Info("generation complete",
		"date", date.Format("2006-01-02"),
		"total", summary.Total,
		"generated", summary.Generated,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
	)
	return summary, nil
}

// GenerateMissed catches up schedules after downtime: for each active
// schedule it replays the per-date generation step over every candidate day
// up to today. Days that already have a task are skipped by the existence
// check, so overlapping runs stay idempotent. Superseded occurrences are
// cleaned up date by date, leaving at most one open task per schedule.
func (r *Runner) GenerateMissed(today time.Time) (Summary, error) {
	schedules, err := r.schedules.ListActive()
	if err != nil {
		return Summary{}, fmt.Errorf("list active schedules: %w", err)
	}

	var summary Summary
	for i := range schedules {
		sched := &schedules[i]

		catchUp, err := r.catchUpOne(sched, today)
		if err != nil {
			r.logger.Error("catch up schedule", "schedule_id", sched.ID, "error", err)
			summary.Total++
			summary.Errors++
			continue
		}
		summary.add(catchUp)
	}

	r.logger.Info("catch-up complete",
		"through", today.Format("2006-01-02"),
		"total", summary.Total,
		"generated", summary.Generated,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
	)
	return summary, nil
}

// catchUpOne replays generation for one schedule from the day after its last
// generation (or the rule's start) through today.
func (r *Runner) catchUpOne(sched *model.TaskSchedule, today time.Time) (Summary, error) {
	rule, err := recurrence.Parse(sched.RecurrenceRule)
	if err != nil {
		return Summary{}, fmt.Errorf("parse rule: %w", err)
	}

	today = dayOf(today)
	from := dayOf(rule.Start)
	if sched.LastGeneratedOn != nil {
		from = dayOf(*sched.LastGeneratedOn).AddDate(0, 0, 1)
	}
	if floor := today.AddDate(0, 0, -catchUpWindow); from.Before(floor) {
		from = floor
	}

	var summary Summary
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		summary.Total++

		generated, err := r.generateOne(sched, d)
		if err != nil {
			r.logger.Error("generate missed task", "schedule_id", sched.ID, "date", d.Format("2006-01-02"), "error", err)
			summary.Errors++
			continue
		}
		if generated {
			summary.Generated++
			// Keep the in-memory view current so the interval gate sees
			// this generation when evaluating the following days.
			last := d
			sched.LastGeneratedOn = &last
		} else {
			summary.Skipped++
		}
	}
	return summary, nil
}

// generateOne runs the per-schedule procedure for a single date. It reports
// whether a task was created. The existence check comes first so a repeat
// invocation for an already-generated date is a no-op.
func (r *Runner) generateOne(sched *model.TaskSchedule, date time.Time) (bool, error) {
	existing, err := r.tasks.GetByScheduleAndDate(sched.ID, date)
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	rule, err := recurrence.Parse(sched.RecurrenceRule)
	if err != nil {
		return false, fmt.Errorf("parse rule: %w", err)
	}

	if !recurrence.ShouldGenerate(rule, date, sched.LastGeneratedOn) {
		return false, nil
	}

	// A new occurrence supersedes any still-open prior one; at most one
	// open task per schedule is the steady state.
	incomplete, err := r.tasks.ListIncompleteBySchedule(sched.ID)
	if err != nil {
		return false, fmt.Errorf("list incomplete: %w", err)
	}
	if len(incomplete) > 0 {
		ids := make([]int64, len(incomplete))
		for i, t := range incomplete {
			ids[i] = t.ID
		}
		if _, err := r.tasks.DeleteByIDs(ids); err != nil {
			return false, fmt.Errorf("delete superseded: %w", err)
		}
	}

	scheduleID := sched.ID
	task, err := r.tasks.Create(store.CreateParams{
		ScheduleID:   &scheduleID,
		Title:        sched.Title,
		Description:  sched.Description,
		Points:       sched.Points,
		DueAt:        recurrence.DueAt(rule, date),
		AssignedTo:   sched.AssignedTo,
		AssignedRole: sched.AssignedRole,
	})
	if err != nil {
		return false, fmt.Errorf("create task: %w", err)
	}

	if err := r.schedules.UpdateLastGenerated(sched.ID, date); err != nil {
		return false, fmt.Errorf("update last generated: %w", err)
	}

	if r.events != nil {
		r.events.TaskGenerated(task)
	}
	return true, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
