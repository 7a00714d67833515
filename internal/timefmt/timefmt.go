// Package timefmt converts between canonical instants and the user-facing
// date/time strings the UI works with. All values are local wall-clock;
// nothing here knows about timezones.
package timefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateFormat selects the field order of a date string.
type DateFormat string

const (
	DDMMYYYY DateFormat = "DDMMYYYY"
	MMDDYYYY DateFormat = "MMDDYYYY"
)

// TimeFormat selects 12-hour or 24-hour time strings.
type TimeFormat string

const (
	Time12 TimeFormat = "12hr"
	Time24 TimeFormat = "24hr"
)

// Config is a (date format, time format) pair. The zero value is not
// usable; use Default or build one from user settings.
type Config struct {
	DateFormat DateFormat
	TimeFormat TimeFormat
}

// Default matches the app's out-of-the-box settings.
func Default() Config {
	return Config{DateFormat: DDMMYYYY, TimeFormat: Time12}
}

// Valid reports whether both formats are known values.
func (c Config) Valid() bool {
	return (c.DateFormat == DDMMYYYY || c.DateFormat == MMDDYYYY) &&
		(c.TimeFormat == Time12 || c.TimeFormat == Time24)
}

// Hint renders the expected input shape for error messages,
// e.g. "D/M/YY and H:MM AM/PM".
func (c Config) Hint() string {
	date := "D/M/YY"
	if c.DateFormat == MMDDYYYY {
		date = "M/D/YY"
	}
	t := "H:MM AM/PM"
	if c.TimeFormat == Time24 {
		t = "HH:MM"
	}
	return date + " and " + t
}

// ParseError describes an unparseable date/time pair. It carries the
// offending strings and a hint derived from the active configuration so
// callers can render a precise message.
type ParseError struct {
	DateStr string
	TimeStr string
	Hint    string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date or time %q %q: %s (expected %s)", e.DateStr, e.TimeStr, e.Reason, e.Hint)
}

// Parsed is a successful parse. Warning is non-empty when the input was
// accepted but looked off (e.g. an AM/PM suffix in 24hr mode, which is
// ignored).
type Parsed struct {
	At      time.Time
	Warning string
}

var (
	timeRe = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})\s*([AaPp][Mm])?$`)
	dateRe = regexp.MustCompile(`^(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})$`)
)

// Parse converts a date string and a time string into a canonical instant
// under the config's formats. The constructed instant is verified to
// round-trip to the same components, which is what rejects impossible
// dates like Feb 30 rather than per-field range checks.
func (c Config) Parse(dateStr, timeStr string) (Parsed, error) {
	fail := func(reason string) (Parsed, error) {
		return Parsed{}, &ParseError{DateStr: dateStr, TimeStr: timeStr, Hint: c.Hint(), Reason: reason}
	}

	tm := timeRe.FindStringSubmatch(strings.TrimSpace(timeStr))
	if tm == nil {
		return fail("time must look like H:MM")
	}
	hour, _ := strconv.Atoi(tm[1])
	minute, _ := strconv.Atoi(tm[2])
	period := strings.ToUpper(tm[3])
	if minute > 59 {
		return fail(fmt.Sprintf("minute %d out of range", minute))
	}

	var warning string
	switch c.TimeFormat {
	case Time12:
		if hour < 1 || hour > 12 {
			return fail(fmt.Sprintf("hour %d out of range for 12hr time", hour))
		}
		if period == "" {
			return fail("12hr time needs an AM or PM suffix")
		}
	default:
		if hour > 23 {
			return fail(fmt.Sprintf("hour %d out of range for 24hr time", hour))
		}
		if period != "" {
			warning = fmt.Sprintf("ignoring %s suffix on 24hr time %q", period, timeStr)
			period = ""
		}
	}

	dm := dateRe.FindStringSubmatch(strings.TrimSpace(dateStr))
	if dm == nil {
		return fail("date must look like D/M/YYYY")
	}
	var day, month, year int
	if c.DateFormat == MMDDYYYY {
		month, _ = strconv.Atoi(dm[1])
		day, _ = strconv.Atoi(dm[2])
	} else {
		day, _ = strconv.Atoi(dm[1])
		month, _ = strconv.Atoi(dm[2])
	}
	year, _ = strconv.Atoi(dm[3])
	if year < 1900 || year > 2100 {
		return fail(fmt.Sprintf("year %d out of range [1900, 2100]", year))
	}
	if month < 1 || month > 12 {
		return fail(fmt.Sprintf("month %d out of range", month))
	}
	if day < 1 || day > 31 {
		return fail(fmt.Sprintf("day %d out of range", day))
	}

	hour24 := hour
	if period == "PM" && hour != 12 {
		hour24 += 12
	}
	if period == "AM" && hour == 12 {
		hour24 = 0
	}

	at := time.Date(year, time.Month(month), day, hour24, minute, 0, 0, time.Local)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2); a component
	// mismatch after construction means the input was impossible.
	if at.Year() != year || at.Month() != time.Month(month) || at.Day() != day ||
		at.Hour() != hour24 || at.Minute() != minute {
		return fail("date does not exist")
	}
	return Parsed{At: at, Warning: warning}, nil
}

// ParseDate parses a date string alone (e.g. a repeat-until bound) to
// midnight of that day.
func (c Config) ParseDate(dateStr string) (time.Time, error) {
	fail := func(reason string) (time.Time, error) {
		return time.Time{}, &ParseError{DateStr: dateStr, Hint: c.Hint(), Reason: reason}
	}
	dm := dateRe.FindStringSubmatch(strings.TrimSpace(dateStr))
	if dm == nil {
		return fail("date must look like D/M/YYYY")
	}
	var day, month, year int
	if c.DateFormat == MMDDYYYY {
		month, _ = strconv.Atoi(dm[1])
		day, _ = strconv.Atoi(dm[2])
	} else {
		day, _ = strconv.Atoi(dm[1])
		month, _ = strconv.Atoi(dm[2])
	}
	year, _ = strconv.Atoi(dm[3])
	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return fail("date component out of range")
	}
	at := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if at.Year() != year || at.Month() != time.Month(month) || at.Day() != day {
		return fail("date does not exist")
	}
	return at, nil
}

// FormatDate renders the date part of an instant, zero-padded,
// in the config's field order.
func (c Config) FormatDate(t time.Time) string {
	if c.DateFormat == MMDDYYYY {
		return fmt.Sprintf("%02d/%02d/%04d", int(t.Month()), t.Day(), t.Year())
	}
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

// FormatTime renders the time part of an instant. 24hr output zero-pads
// the hour and carries no suffix; 12hr output maps 0 to 12 and 13..23 to
// 1..11 and appends AM or PM.
func (c Config) FormatTime(t time.Time) string {
	hour, minute := t.Hour(), t.Minute()
	if c.TimeFormat == Time24 {
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, ampm)
}

// Format renders both parts; the exact inverse of Parse for anything
// Format can produce.
func (c Config) Format(t time.Time) (dateStr, timeStr string) {
	return c.FormatDate(t), c.FormatTime(t)
}
