package recurrence

import "time"

// MatchesDay reports whether day is one of the rule's configured weekdays.
func MatchesDay(day time.Weekday, days []time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// MatchesInterval reports whether enough whole days have passed since the
// last generation. A nil lastGenerated always matches (first-ever run).
// Otherwise the gap must be at least interval*7 days: a threshold, not an
// exact multiple, so a schedule that missed its slot still fires on the next
// due day. A same-day re-check never matches.
func MatchesInterval(lastGenerated *time.Time, candidate time.Time, interval int) bool {
	if lastGenerated == nil {
		return true
	}
	return daysBetween(*lastGenerated, candidate) >= interval*7
}

// WithinRange reports whether date falls inside [start, end], inclusive on
// both bounds. A nil end means the range is open-ended.
func WithinRange(date, start time.Time, end *time.Time) bool {
	d := dayOf(date)
	if d.Before(dayOf(start)) {
		return false
	}
	if end != nil && d.After(dayOf(*end)) {
		return false
	}
	return true
}

// ShouldGenerate reports whether a schedule governed by rule is due on date,
// given the date it last generated an occurrence.
func ShouldGenerate(rule Rule, date time.Time, lastGenerated *time.Time) bool {
	return MatchesDay(date.Weekday(), rule.Days) &&
		MatchesInterval(lastGenerated, date, rule.Interval) &&
		WithinRange(date, rule.Start, rule.End)
}

// DueAt returns the concrete due time for an occurrence generated on date:
// the rule's time of day when set, otherwise end of day.
func DueAt(rule Rule, date time.Time) time.Time {
	if rule.TimeOfDay != "" {
		if at, err := time.Parse("15:04", rule.TimeOfDay); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(),
				at.Hour(), at.Minute(), 0, 0, date.Location())
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 0, 0, date.Location())
}

// daysBetween returns the number of whole calendar days from a to b,
// ignoring time of day. Mapping both dates to UTC midnights keeps the
// division exact across DST transitions.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
