// Package recurrence encodes what "repeat" means for a task. Recurrence
// is descriptive metadata: tasks are stored once and never expanded into
// concrete future rows, but the rules for which days a frequency fires on
// live here so calendar views and future extensions share one definition.
package recurrence

import (
	"fmt"
	"time"
)

// Frequency is a task's repeat rule.
type Frequency string

const (
	None     Frequency = "none"
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Weekdays Frequency = "weekdays"
	Weekends Frequency = "weekends"
	Monthly  Frequency = "monthly"
	Yearly   Frequency = "yearly"
	Custom   Frequency = "custom"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case None, Daily, Weekly, Weekdays, Weekends, Monthly, Yearly, Custom:
		return true
	}
	return false
}

// Rule is a full recurrence description: the frequency, the weekday set
// for custom rules, and an optional end date.
type Rule struct {
	Frequency  Frequency
	CustomDays []int // weekday indices 0=Sunday..6=Saturday
	Until      *time.Time
}

// Validate checks the rule's internal consistency.
func (r Rule) Validate() error {
	if !r.Frequency.Valid() {
		return fmt.Errorf("unknown repeat frequency %q", r.Frequency)
	}
	if r.Frequency == Custom {
		if len(r.CustomDays) == 0 {
			return fmt.Errorf("custom repeat needs at least one weekday")
		}
		seen := map[int]bool{}
		for _, d := range r.CustomDays {
			if d < 0 || d > 6 {
				return fmt.Errorf("weekday index %d out of range [0, 6]", d)
			}
			if seen[d] {
				return fmt.Errorf("weekday index %d repeated", d)
			}
			seen[d] = true
		}
	} else if len(r.CustomDays) > 0 {
		return fmt.Errorf("custom days only apply to the custom frequency")
	}
	if r.Frequency == None && r.Until != nil {
		return fmt.Errorf("repeat-until only applies to repeating tasks")
	}
	return nil
}

// OccursOn reports whether a task first due at start fires on the calendar
// day of date under this rule. Dates before the start day never fire;
// dates past Until never fire.
func (r Rule) OccursOn(start, date time.Time) bool {
	s := dayOf(start)
	d := dayOf(date)
	if d.Before(s) {
		return false
	}
	if r.Until != nil && d.After(dayOf(*r.Until)) {
		return false
	}
	switch r.Frequency {
	case None:
		return d.Equal(s)
	case Daily:
		return true
	case Weekly:
		return d.Weekday() == s.Weekday()
	case Weekdays:
		return d.Weekday() >= time.Monday && d.Weekday() <= time.Friday
	case Weekends:
		return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
	case Monthly:
		return d.Day() == s.Day()
	case Yearly:
		return d.Day() == s.Day() && d.Month() == s.Month()
	case Custom:
		for _, wd := range r.CustomDays {
			if int(d.Weekday()) == wd {
				return true
			}
		}
		return false
	}
	return false
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
