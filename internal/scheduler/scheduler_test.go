package scheduler

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dukerupert/bramble/internal/generate"
	"github.com/dukerupert/bramble/internal/settlement"
)

type fakeGenerator struct {
	forDates []time.Time
	missed   []time.Time
}

func (f *fakeGenerator) GenerateForDate(date time.Time) (generate.Summary, error) {
	f.forDates = append(f.forDates, date)
	return generate.Summary{}, nil
}

func (f *fakeGenerator) GenerateMissed(today time.Time) (generate.Summary, error) {
	f.missed = append(f.missed, today)
	return generate.Summary{}, nil
}

type fakeSettler struct {
	weeks []time.Time
}

func (f *fakeSettler) ProcessWeek(weekStart time.Time) (settlement.Summary, error) {
	f.weeks = append(f.weeks, weekStart)
	return settlement.Summary{}, nil
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name     string
		t        time.Time
		startDay time.Weekday
		want     time.Time
	}{
		{
			"wednesday back to sunday",
			time.Date(2025, 1, 8, 15, 30, 0, 0, time.UTC), // Wednesday
			time.Sunday,
			time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday is its own week start",
			time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC),
			time.Sunday,
			time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday start from sunday",
			time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC), // Sunday
			time.Monday,
			time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		if got := WeekStart(tt.t, tt.startDay); !got.Equal(tt.want) {
			t.Errorf("%s: WeekStart = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTickRunsDailyOnce(t *testing.T) {
	gen := &fakeGenerator{}
	set := &fakeSettler{}
	s := New(gen, set, time.Sunday, slog.Default())

	wednesday := time.Date(2025, 1, 8, 0, 1, 0, 0, time.UTC)
	s.tick(wednesday)
	s.tick(wednesday.Add(time.Minute))
	s.tick(wednesday.Add(2 * time.Minute))

	if len(gen.forDates) != 1 {
		t.Fatalf("expected 1 daily generation, got %d", len(gen.forDates))
	}
	if len(set.weeks) != 0 {
		t.Fatalf("expected no settlement on a Wednesday, got %d", len(set.weeks))
	}

	// Next day triggers again.
	s.tick(wednesday.AddDate(0, 0, 1))
	if len(gen.forDates) != 2 {
		t.Fatalf("expected 2 daily generations after day rollover, got %d", len(gen.forDates))
	}
}

func TestTickSettlesPreviousWeekOnWeekStartDay(t *testing.T) {
	gen := &fakeGenerator{}
	set := &fakeSettler{}
	s := New(gen, set, time.Sunday, slog.Default())

	sunday := time.Date(2025, 1, 12, 0, 1, 0, 0, time.UTC)
	s.tick(sunday)
	s.tick(sunday.Add(time.Minute))

	if len(set.weeks) != 1 {
		t.Fatalf("expected 1 settlement, got %d", len(set.weeks))
	}
	want := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	if !set.weeks[0].Equal(want) {
		t.Errorf("settled week start = %v, want %v", set.weeks[0], want)
	}
}
