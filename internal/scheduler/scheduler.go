package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/bramble/internal/generate"
	"github.com/dukerupert/bramble/internal/settlement"
)

// Generator is the task-generation runner as the trigger loop sees it.
type Generator interface {
	GenerateForDate(date time.Time) (generate.Summary, error)
	GenerateMissed(today time.Time) (generate.Summary, error)
}

// Settler is the weekly settlement runner as the trigger loop sees it.
type Settler interface {
	ProcessWeek(weekStart time.Time) (settlement.Summary, error)
}

// Scheduler is the time-based trigger for the recurrence engine: a catch-up
// pass at startup, one generation run per day, and one settlement run per
// week. Runner errors are logged and the loop keeps ticking.
type Scheduler struct {
	mu           sync.RWMutex
	generator    Generator
	settler      Settler
	weekStartDay time.Weekday
	interval     time.Duration
	logger       *slog.Logger
	cancel       context.CancelFunc
	done         chan struct{}

	lastDaily  string
	lastWeekly string
}

// New creates a scheduler. weekStartDay is the day settlement fires on,
// settling the week that just ended.
func New(generator Generator, settler Settler, weekStartDay time.Weekday, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		generator:    generator,
		settler:      settler,
		weekStartDay: weekStartDay,
		interval:     time.Minute,
		logger:       logger,
	}
}

// Start runs the startup catch-up pass, then begins the trigger loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	if _, err := s.generator.GenerateMissed(time.Now()); err != nil {
		s.logger.Error("startup catch-up", "error", err)
	}

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	today := now.Format("2006-01-02")

	if s.lastDaily != today {
		if _, err := s.generator.GenerateForDate(now); err != nil {
			s.logger.Error("daily generation", "date", today, "error", err)
		}
		s.lastDaily = today
	}

	if now.Weekday() == s.weekStartDay && s.lastWeekly != today {
		// A new week has begun; settle the one that just ended.
		ended := WeekStart(now, s.weekStartDay).AddDate(0, 0, -7)
		if _, err := s.settler.ProcessWeek(ended); err != nil {
			s.logger.Error("weekly settlement", "week_start", ended.Format("2006-01-02"), "error", err)
		}
		s.lastWeekly = today
	}
}

// WeekStart returns the most recent occurrence of startDay on or before t,
// at midnight UTC.
func WeekStart(t time.Time, startDay time.Weekday) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) - int(startDay) + 7) % 7
	return day.AddDate(0, 0, -offset)
}
