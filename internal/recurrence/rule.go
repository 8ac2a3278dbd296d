package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxInterval is the largest supported week interval (monthly-ish cadence).
	MaxInterval = 4

	dateLayout = "20060102"
)

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// Rule defines when a recurring schedule is due: which days of the week,
// every how many weeks, and between which dates.
type Rule struct {
	Days      []time.Weekday // days of week the schedule fires on (at least one)
	Interval  int            // weeks between generations, 1-4 (1 = weekly)
	Start     time.Time      // first date the rule applies (inclusive)
	End       *time.Time     // last date the rule applies (inclusive, nil = open-ended)
	TimeOfDay string         // "HH:MM" due time (empty = end of day)
}

// Parse parses a serialized rule like "BYDAY=MO,WE,FR;INTERVAL=2;START=20250101".
// Recognized keys: BYDAY (required), START (required), INTERVAL, END, AT.
func Parse(rule string) (Rule, error) {
	if rule == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	r := Rule{Interval: 1}
	var hasDays, hasStart bool

	parts := strings.Split(rule, ";")
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Rule{}, fmt.Errorf("invalid rule part: %q", part)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "BYDAY":
			days := strings.Split(val, ",")
			for _, d := range days {
				wd, ok := dayNames[strings.TrimSpace(d)]
				if !ok {
					return Rule{}, fmt.Errorf("unknown day: %q", d)
				}
				r.Days = append(r.Days, wd)
			}
			hasDays = true

		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 || n > MaxInterval {
				return Rule{}, fmt.Errorf("invalid interval: %q", val)
			}
			r.Interval = n

		case "START":
			t, err := time.Parse(dateLayout, val)
			if err != nil {
				return Rule{}, fmt.Errorf("invalid START: %q", val)
			}
			r.Start = t
			hasStart = true

		case "END":
			t, err := time.Parse(dateLayout, val)
			if err != nil {
				return Rule{}, fmt.Errorf("invalid END: %q", val)
			}
			r.End = &t

		case "AT":
			if _, err := time.Parse("15:04", val); err != nil {
				return Rule{}, fmt.Errorf("invalid AT: %q", val)
			}
			r.TimeOfDay = val

		default:
			return Rule{}, fmt.Errorf("unsupported rule key: %q", key)
		}
	}

	if !hasDays {
		return Rule{}, fmt.Errorf("BYDAY is required")
	}
	if !hasStart {
		return Rule{}, fmt.Errorf("START is required")
	}
	if err := r.Validate(); err != nil {
		return Rule{}, err
	}

	return r, nil
}

// String serializes the rule back to its compact form.
func (r Rule) String() string {
	var days []string
	for _, d := range r.Days {
		days = append(days, dayAbbrev[d])
	}

	parts := []string{"BYDAY=" + strings.Join(days, ",")}

	if r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}

	parts = append(parts, "START="+r.Start.Format(dateLayout))

	if r.End != nil {
		parts = append(parts, "END="+r.End.Format(dateLayout))
	}

	if r.TimeOfDay != "" {
		parts = append(parts, "AT="+r.TimeOfDay)
	}

	return strings.Join(parts, ";")
}

// Validate checks the rule's invariants: at least one day, interval in range,
// and END not before START.
func (r Rule) Validate() error {
	if len(r.Days) == 0 {
		return fmt.Errorf("rule needs at least one day")
	}
	for _, d := range r.Days {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid weekday: %d", d)
		}
	}
	if r.Interval < 1 || r.Interval > MaxInterval {
		return fmt.Errorf("interval must be 1-%d, got %d", MaxInterval, r.Interval)
	}
	if r.Start.IsZero() {
		return fmt.Errorf("rule needs a start date")
	}
	if r.End != nil && dayOf(*r.End).Before(dayOf(r.Start)) {
		return fmt.Errorf("end date before start date")
	}
	return nil
}

// Describe returns a human-readable description of the rule.
func (r Rule) Describe() string {
	var names []string
	for _, d := range r.Days {
		names = append(names, d.String()[:3])
	}
	on := strings.Join(names, ", ")

	switch {
	case r.Interval == 1:
		return "Weekly on " + on
	case r.Interval == 2:
		return "Every 2 weeks on " + on
	default:
		return fmt.Sprintf("Every %d weeks on %s", r.Interval, on)
	}
}
