package timefmt_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimahmed315/task-manager/internal/timefmt"
)

func allConfigs() []timefmt.Config {
	var out []timefmt.Config
	for _, df := range []timefmt.DateFormat{timefmt.DDMMYYYY, timefmt.MMDDYYYY} {
		for _, tf := range []timefmt.TimeFormat{timefmt.Time12, timefmt.Time24} {
			out = append(out, timefmt.Config{DateFormat: df, TimeFormat: tf})
		}
	}
	return out
}

func TestParseFormatRoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local),
		time.Date(2025, 6, 1, 9, 5, 0, 0, time.Local),
		time.Date(2025, 12, 31, 12, 0, 0, 0, time.Local),
		time.Date(1900, 1, 1, 23, 59, 0, 0, time.Local),
		time.Date(2100, 2, 28, 1, 30, 0, 0, time.Local),
	}
	for _, cfg := range allConfigs() {
		for _, want := range instants {
			dateStr, timeStr := cfg.Format(want)
			got, err := cfg.Parse(dateStr, timeStr)
			require.NoError(t, err, "%v %q %q", cfg, dateStr, timeStr)
			assert.True(t, got.At.Equal(want), "%v: %q %q -> %v, want %v", cfg, dateStr, timeStr, got.At, want)
			assert.Empty(t, got.Warning)
		}
	}
}

func TestParseRejectsImpossibleDates(t *testing.T) {
	cfg := timefmt.Config{DateFormat: timefmt.DDMMYYYY, TimeFormat: timefmt.Time24}

	_, err := cfg.Parse("30/02/2025", "10:00")
	require.Error(t, err)
	var perr *timefmt.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "30/02/2025", perr.DateStr)
	assert.Contains(t, perr.Hint, "D/M/YY")

	// Same string is Feb 30 under MMDDYYYY too, just via the other field.
	cfg.DateFormat = timefmt.MMDDYYYY
	_, err = cfg.Parse("02/30/2025", "10:00")
	assert.Error(t, err)
}

func TestParseFieldValidation(t *testing.T) {
	cfg := timefmt.Config{DateFormat: timefmt.DDMMYYYY, TimeFormat: timefmt.Time24}
	cases := []struct {
		date, time string
	}{
		{"01/13/2025", "10:00"}, // month 13
		{"32/01/2025", "10:00"}, // day 32
		{"01/01/1899", "10:00"}, // year below range
		{"01/01/2101", "10:00"}, // year above range
		{"01/01/2025", "24:00"}, // hour 24
		{"01/01/2025", "10:60"}, // minute 60
		{"2025-01-01", "10:00"}, // ISO date not accepted here
		{"01/01/2025", "10"},    // missing minutes
		{"", "10:00"},
		{"01/01/2025", ""},
	}
	for _, tc := range cases {
		_, err := cfg.Parse(tc.date, tc.time)
		assert.Error(t, err, "%q %q", tc.date, tc.time)
	}
}

func TestParse12HourSuffixPolicy(t *testing.T) {
	cfg := timefmt.Config{DateFormat: timefmt.DDMMYYYY, TimeFormat: timefmt.Time12}

	// Missing AM/PM in 12hr mode is ambiguous and rejected outright.
	_, err := cfg.Parse("01/06/2025", "9:00")
	require.Error(t, err)
	var perr *timefmt.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "AM or PM")

	got, err := cfg.Parse("01/06/2025", "9:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 21, got.At.Hour())

	got, err = cfg.Parse("01/06/2025", "12:15 AM")
	require.NoError(t, err)
	assert.Equal(t, 0, got.At.Hour())

	got, err = cfg.Parse("01/06/2025", "12:15 PM")
	require.NoError(t, err)
	assert.Equal(t, 12, got.At.Hour())

	_, err = cfg.Parse("01/06/2025", "13:00 PM")
	assert.Error(t, err, "hour 13 is out of range in 12hr mode")
}

func TestParse24HourIgnoresSuffixWithWarning(t *testing.T) {
	cfg := timefmt.Config{DateFormat: timefmt.DDMMYYYY, TimeFormat: timefmt.Time24}

	got, err := cfg.Parse("01/06/2025", "21:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 21, got.At.Hour())
	assert.NotEmpty(t, got.Warning)

	// The suffix must not shift the hour.
	got, err = cfg.Parse("01/06/2025", "9:00 pm")
	require.NoError(t, err)
	assert.Equal(t, 9, got.At.Hour())
}

func TestParseSeparators(t *testing.T) {
	cfg := timefmt.Config{DateFormat: timefmt.DDMMYYYY, TimeFormat: timefmt.Time24}
	for _, date := range []string{"1/6/2025", "01-06-2025", "1-6-2025"} {
		for _, clock := range []string{"9:30", "9.30"} {
			got, err := cfg.Parse(date, clock)
			require.NoError(t, err, "%q %q", date, clock)
			assert.Equal(t, time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local), got.At)
		}
	}
}

func TestFieldOrderDependsOnDateFormat(t *testing.T) {
	dmy := timefmt.Config{DateFormat: timefmt.DDMMYYYY, TimeFormat: timefmt.Time24}
	mdy := timefmt.Config{DateFormat: timefmt.MMDDYYYY, TimeFormat: timefmt.Time24}

	a, err := dmy.Parse("02/03/2025", "08:00")
	require.NoError(t, err)
	b, err := mdy.Parse("02/03/2025", "08:00")
	require.NoError(t, err)

	assert.Equal(t, time.March, a.At.Month())
	assert.Equal(t, 2, a.At.Day())
	assert.Equal(t, time.February, b.At.Month())
	assert.Equal(t, 3, b.At.Day())
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		hour, minute int
		want12       string
		want24       string
	}{
		{0, 5, "12:05 AM", "00:05"},
		{9, 0, "9:00 AM", "09:00"},
		{12, 0, "12:00 PM", "12:00"},
		{13, 45, "1:45 PM", "13:45"},
		{23, 59, "11:59 PM", "23:59"},
	}
	for _, tc := range cases {
		at := time.Date(2025, 6, 1, tc.hour, tc.minute, 0, 0, time.Local)
		c12 := timefmt.Config{DateFormat: timefmt.DDMMYYYY, TimeFormat: timefmt.Time12}
		c24 := timefmt.Config{DateFormat: timefmt.DDMMYYYY, TimeFormat: timefmt.Time24}
		assert.Equal(t, tc.want12, c12.FormatTime(at), fmt.Sprintf("%02d:%02d", tc.hour, tc.minute))
		assert.Equal(t, tc.want24, c24.FormatTime(at))
	}
}

func TestFormatDateZeroPads(t *testing.T) {
	at := time.Date(2025, 3, 7, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "07/03/2025", timefmt.Config{DateFormat: timefmt.DDMMYYYY}.FormatDate(at))
	assert.Equal(t, "03/07/2025", timefmt.Config{DateFormat: timefmt.MMDDYYYY}.FormatDate(at))
}

func TestHint(t *testing.T) {
	assert.Equal(t, "D/M/YY and H:MM AM/PM", timefmt.Default().Hint())
	assert.Equal(t, "M/D/YY and HH:MM",
		timefmt.Config{DateFormat: timefmt.MMDDYYYY, TimeFormat: timefmt.Time24}.Hint())
}
