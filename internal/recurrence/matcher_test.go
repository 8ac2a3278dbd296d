package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMatchesDay(t *testing.T) {
	days := []time.Weekday{time.Monday, time.Wednesday, time.Friday}

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		want := wd == time.Monday || wd == time.Wednesday || wd == time.Friday
		if got := MatchesDay(wd, days); got != want {
			t.Errorf("MatchesDay(%v) = %v, want %v", wd, got, want)
		}
	}
}

func TestMatchesIntervalFirstRun(t *testing.T) {
	for interval := 1; interval <= 4; interval++ {
		if !MatchesInterval(nil, date(2025, 1, 6), interval) {
			t.Errorf("interval %d: nil lastGenerated should always match", interval)
		}
	}
}

func TestMatchesIntervalThreshold(t *testing.T) {
	last := date(2025, 1, 6) // Monday

	tests := []struct {
		name      string
		candidate time.Time
		interval  int
		want      bool
	}{
		{"same day", date(2025, 1, 6), 1, false},
		{"six days weekly", date(2025, 1, 12), 1, false},
		{"seven days weekly", date(2025, 1, 13), 1, true},
		{"beyond threshold weekly", date(2025, 2, 3), 1, true},
		{"seven days biweekly", date(2025, 1, 13), 2, false},
		{"thirteen days biweekly", date(2025, 1, 19), 2, false},
		{"fourteen days biweekly", date(2025, 1, 20), 2, true},
		{"catch-up past threshold biweekly", date(2025, 3, 3), 2, true},
		{"twenty-seven days monthly", date(2025, 2, 2), 4, false},
		{"twenty-eight days monthly", date(2025, 2, 3), 4, true},
	}

	for _, tt := range tests {
		if got := MatchesInterval(&last, tt.candidate, tt.interval); got != tt.want {
			t.Errorf("%s: MatchesInterval = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestMatchesIntervalIgnoresTimeOfDay(t *testing.T) {
	last := time.Date(2025, 1, 6, 23, 30, 0, 0, time.UTC)
	candidate := time.Date(2025, 1, 13, 0, 15, 0, 0, time.UTC)

	if !MatchesInterval(&last, candidate, 1) {
		t.Error("whole-day gap of 7 should match regardless of clock times")
	}
}

func TestWithinRange(t *testing.T) {
	start := date(2025, 1, 10)
	end := date(2025, 1, 20)

	tests := []struct {
		name string
		d    time.Time
		end  *time.Time
		want bool
	}{
		{"before start", date(2025, 1, 9), &end, false},
		{"on start", date(2025, 1, 10), &end, true},
		{"inside", date(2025, 1, 15), &end, true},
		{"on end", date(2025, 1, 20), &end, true},
		{"after end", date(2025, 1, 21), &end, false},
		{"open-ended far future", date(2030, 6, 1), nil, true},
		{"open-ended before start", date(2024, 12, 31), nil, false},
	}

	for _, tt := range tests {
		if got := WithinRange(tt.d, start, tt.end); got != tt.want {
			t.Errorf("%s: WithinRange = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestShouldGenerateWeeklyScenario(t *testing.T) {
	// Mon/Wed/Fri weekly rule, last generated Monday 2025-01-06.
	rule := Rule{
		Days:     []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Interval: 1,
		Start:    date(2025, 1, 1),
	}
	last := date(2025, 1, 6)

	checks := []struct {
		d    time.Time
		last *time.Time
		want bool
	}{
		{date(2025, 1, 8), nil, true},     // Wednesday, first run
		{date(2025, 1, 10), nil, true},    // Friday, first run
		{date(2025, 1, 13), &last, true},  // Monday, full week elapsed
		{date(2025, 1, 14), &last, false}, // Tuesday, wrong day of week
		{date(2025, 1, 12), &last, false}, // Sunday, wrong day and short gap
	}

	for _, c := range checks {
		if got := ShouldGenerate(rule, c.d, c.last); got != c.want {
			t.Errorf("ShouldGenerate(%s, last=%v) = %v, want %v",
				c.d.Format("2006-01-02"), c.last, got, c.want)
		}
	}
}

func TestShouldGenerateBiweekly(t *testing.T) {
	rule := Rule{
		Days:     []time.Weekday{time.Monday},
		Interval: 2,
		Start:    date(2025, 1, 1),
	}
	last := date(2025, 1, 6)

	if ShouldGenerate(rule, date(2025, 1, 13), &last) {
		t.Error("7-day gap should not satisfy a biweekly rule")
	}
	if !ShouldGenerate(rule, date(2025, 1, 20), &last) {
		t.Error("14-day gap should satisfy a biweekly rule")
	}
}

func TestShouldGenerateRespectsEndDate(t *testing.T) {
	end := date(2025, 1, 13)
	rule := Rule{
		Days:     []time.Weekday{time.Monday},
		Interval: 1,
		Start:    date(2025, 1, 1),
		End:      &end,
	}

	if !ShouldGenerate(rule, date(2025, 1, 13), nil) {
		t.Error("end date itself is inclusive")
	}
	if ShouldGenerate(rule, date(2025, 1, 20), nil) {
		t.Error("dates past the end date should never generate")
	}
}

func TestDueAt(t *testing.T) {
	d := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	withTime := Rule{Days: []time.Weekday{time.Wednesday}, Interval: 1, Start: date(2025, 1, 1), TimeOfDay: "17:30"}
	got := DueAt(withTime, d)
	if got.Hour() != 17 || got.Minute() != 30 {
		t.Errorf("DueAt with AT=17:30 = %v, want 17:30", got)
	}

	noTime := Rule{Days: []time.Weekday{time.Wednesday}, Interval: 1, Start: date(2025, 1, 1)}
	got = DueAt(noTime, d)
	if got.Hour() != 23 || got.Minute() != 59 {
		t.Errorf("DueAt without AT = %v, want 23:59", got)
	}
	if got.Day() != 8 {
		t.Errorf("DueAt changed the day: %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{date(2025, 1, 6), date(2025, 1, 6), 0},
		{date(2025, 1, 6), date(2025, 1, 13), 7},
		{date(2025, 1, 6), date(2025, 1, 20), 14},
		{date(2024, 12, 30), date(2025, 1, 6), 7}, // across year boundary
	}

	for _, tt := range tests {
		if got := daysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("daysBetween(%s, %s) = %d, want %d",
				tt.a.Format("2006-01-02"), tt.b.Format("2006-01-02"), got, tt.want)
		}
	}
}
