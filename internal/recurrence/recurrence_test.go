package recurrence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimahmed315/task-manager/internal/recurrence"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestRuleValidate(t *testing.T) {
	until := day(2026, time.January, 1)

	ok := []recurrence.Rule{
		{Frequency: recurrence.None},
		{Frequency: recurrence.Daily},
		{Frequency: recurrence.Weekly, Until: &until},
		{Frequency: recurrence.Custom, CustomDays: []int{1, 3, 5}},
	}
	for _, r := range ok {
		assert.NoError(t, r.Validate(), "%+v", r)
	}

	bad := []recurrence.Rule{
		{Frequency: "fortnightly"},
		{Frequency: recurrence.Custom},                           // no days
		{Frequency: recurrence.Custom, CustomDays: []int{7}},     // out of range
		{Frequency: recurrence.Custom, CustomDays: []int{2, 2}},  // duplicate
		{Frequency: recurrence.Daily, CustomDays: []int{1}},      // days without custom
		{Frequency: recurrence.None, Until: &until},              // until without repeat
	}
	for _, r := range bad {
		assert.Error(t, r.Validate(), "%+v", r)
	}
}

func TestOccursOn(t *testing.T) {
	// 2025-06-02 is a Monday.
	start := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.Local)

	cases := []struct {
		name string
		rule recurrence.Rule
		date time.Time
		want bool
	}{
		{"none fires on start day", recurrence.Rule{Frequency: recurrence.None}, day(2025, time.June, 2), true},
		{"none never fires later", recurrence.Rule{Frequency: recurrence.None}, day(2025, time.June, 3), false},
		{"daily fires later", recurrence.Rule{Frequency: recurrence.Daily}, day(2025, time.July, 19), true},
		{"nothing fires before start", recurrence.Rule{Frequency: recurrence.Daily}, day(2025, time.June, 1), false},
		{"weekly same weekday", recurrence.Rule{Frequency: recurrence.Weekly}, day(2025, time.June, 9), true},
		{"weekly other weekday", recurrence.Rule{Frequency: recurrence.Weekly}, day(2025, time.June, 10), false},
		{"weekdays on friday", recurrence.Rule{Frequency: recurrence.Weekdays}, day(2025, time.June, 6), true},
		{"weekdays not saturday", recurrence.Rule{Frequency: recurrence.Weekdays}, day(2025, time.June, 7), false},
		{"weekends on sunday", recurrence.Rule{Frequency: recurrence.Weekends}, day(2025, time.June, 8), true},
		{"weekends not monday", recurrence.Rule{Frequency: recurrence.Weekends}, day(2025, time.June, 9), false},
		{"monthly same day-of-month", recurrence.Rule{Frequency: recurrence.Monthly}, day(2025, time.August, 2), true},
		{"monthly other day", recurrence.Rule{Frequency: recurrence.Monthly}, day(2025, time.August, 3), false},
		{"yearly anniversary", recurrence.Rule{Frequency: recurrence.Yearly}, day(2026, time.June, 2), true},
		{"yearly same day wrong month", recurrence.Rule{Frequency: recurrence.Yearly}, day(2026, time.July, 2), false},
		{"custom matching weekday", recurrence.Rule{Frequency: recurrence.Custom, CustomDays: []int{3}}, day(2025, time.June, 4), true},
		{"custom non-matching weekday", recurrence.Rule{Frequency: recurrence.Custom, CustomDays: []int{3}}, day(2025, time.June, 5), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.rule.Validate())
			assert.Equal(t, tc.want, tc.rule.OccursOn(start, tc.date))
		})
	}
}

func TestOccursOnRespectsUntil(t *testing.T) {
	start := day(2025, time.June, 2)
	until := day(2025, time.June, 10)
	rule := recurrence.Rule{Frequency: recurrence.Daily, Until: &until}

	assert.True(t, rule.OccursOn(start, day(2025, time.June, 10)), "until day itself still fires")
	assert.False(t, rule.OccursOn(start, day(2025, time.June, 11)))
}
