package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	dom "github.com/karimahmed315/task-manager/internal/domain"
	"github.com/karimahmed315/task-manager/internal/recurrence"
	"github.com/karimahmed315/task-manager/internal/repo"
	"github.com/karimahmed315/task-manager/internal/timefmt"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMonthCache records per-month stores and invalidations so tests can
// assert on cache traffic without Redis.
type fakeMonthCache struct {
	store       map[string][]dom.Task
	invalidated []string
	userFlushes int
}

func newFakeMonthCache() *fakeMonthCache {
	return &fakeMonthCache{store: map[string][]dom.Task{}}
}

func monthKey(userID int64, year int, month time.Month) string {
	return fmt.Sprintf("%d:%04d-%02d", userID, year, int(month))
}

func (c *fakeMonthCache) GetMonth(_ context.Context, userID int64, year int, month time.Month) ([]dom.Task, error) {
	return c.store[monthKey(userID, year, month)], nil
}

func (c *fakeMonthCache) SetMonth(_ context.Context, userID int64, year int, month time.Month, list []dom.Task) error {
	if list == nil {
		list = []dom.Task{}
	}
	c.store[monthKey(userID, year, month)] = list
	return nil
}

func (c *fakeMonthCache) Invalidate(_ context.Context, userID int64, year int, month time.Month) error {
	key := monthKey(userID, year, month)
	delete(c.store, key)
	c.invalidated = append(c.invalidated, key)
	return nil
}

func (c *fakeMonthCache) InvalidateUser(_ context.Context, userID int64) error {
	for key := range c.store {
		if strings.HasPrefix(key, fmt.Sprintf("%d:", userID)) {
			delete(c.store, key)
		}
	}
	c.userFlushes++
	return nil
}

var testNow = time.Date(2025, time.June, 1, 10, 0, 0, 0, time.Local)

func newTestService() (*TaskService, *repo.MemTaskRepo, *fakeMonthCache) {
	r := repo.NewMemTaskRepo()
	c := newFakeMonthCache()
	s := NewTaskService(r, c, zerolog.Nop())
	s.now = func() time.Time { return testNow }
	return s, r, c
}

func mustCreate(t *testing.T, s *TaskService, userID int64, desc, date, clock string, prio dom.Priority) dom.Task {
	t.Helper()
	task, err := s.Create(context.Background(), userID, timefmt.Default(), CreateTaskInput{
		Description: desc,
		DueDate:     date,
		DueTime:     clock,
		Priority:    prio,
	})
	require.NoError(t, err)
	return task
}

func TestLifecycleProvenance(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	task := mustCreate(t, s, 1, "renew passport", "15/06/2025", "9:00 AM", dom.PriorityHigh)
	assert.Equal(t, dom.LocationActive, task.Location)
	assert.False(t, task.Completed)

	done, err := s.Complete(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.LocationCompleted, done.Location)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	completedAt := *done.CompletedAt

	gone, err := s.SoftDelete(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.LocationDeleted, gone.Location)
	assert.True(t, gone.Completed, "deletion must preserve the completed flag")
	require.NotNil(t, gone.DeletedAt)

	back, err := s.Restore(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.LocationCompleted, back.Location, "restore follows the preserved completed flag")
	require.NotNil(t, back.CompletedAt)
	assert.True(t, back.CompletedAt.Equal(completedAt), "original completion instant survives the round trip")
	assert.Nil(t, back.DeletedAt)
}

func TestRestoreUncompletedGoesActive(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	task := mustCreate(t, s, 1, "water plants", "15/06/2025", "9:00 AM", dom.PriorityLow)
	_, err := s.SoftDelete(ctx, 1, task.ID)
	require.NoError(t, err)

	back, err := s.Restore(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.LocationActive, back.Location)
	assert.False(t, back.Completed)
	assert.Nil(t, back.CompletedAt)
}

func TestCompleteIdempotent(t *testing.T) {
	s, _, c := newTestService()
	ctx := context.Background()

	task := mustCreate(t, s, 1, "pay rent", "15/06/2025", "9:00 AM", "")
	_, err := s.Complete(ctx, 1, task.ID)
	require.NoError(t, err)
	invalidations := len(c.invalidated)

	again, err := s.Complete(ctx, 1, task.ID)
	require.NoError(t, err, "completing a completed task is a success")
	assert.Equal(t, dom.LocationCompleted, again.Location)
	assert.Len(t, c.invalidated, invalidations, "idempotent complete must not touch the cache")
}

func TestCompleteUnknownID(t *testing.T) {
	s, _, _ := newTestService()
	_, err := s.Complete(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	cfg := timefmt.Default()

	cases := []struct {
		name string
		in   CreateTaskInput
	}{
		{"empty description", CreateTaskInput{Description: "   ", DueDate: "15/06/2025", DueTime: "9:00 AM"}},
		{"description too long", CreateTaskInput{Description: strings.Repeat("x", 151), DueDate: "15/06/2025", DueTime: "9:00 AM"}},
		{"bad priority", CreateTaskInput{Description: "a", DueDate: "15/06/2025", DueTime: "9:00 AM", Priority: "urgent"}},
		{"custom days without custom", CreateTaskInput{Description: "a", DueDate: "15/06/2025", DueTime: "9:00 AM",
			Recurrence: recurrence.Daily, CustomDays: []int{1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(ctx, 1, cfg, tc.in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestCreateParseErrorsPropagate(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	cfg := timefmt.Default() // DDMMYYYY, 12hr

	for _, tc := range []struct{ name, date, clock string }{
		{"missing meridiem under 12hr", "15/06/2025", "9:00"},
		{"impossible date", "30/02/2025", "9:00 AM"},
		{"year out of range", "15/06/1850", "9:00 AM"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(ctx, 1, cfg, CreateTaskInput{Description: "a", DueDate: tc.date, DueTime: tc.clock})
			var perr *timefmt.ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestCreateDefaultsPriorityMedium(t *testing.T) {
	s, _, _ := newTestService()
	task := mustCreate(t, s, 1, "no priority given", "15/06/2025", "9:00 AM", "")
	assert.Equal(t, dom.PriorityMedium, task.Priority)
}

func TestSnoozeBasesOnNow(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	// long overdue: due two weeks before the fixed clock
	task := mustCreate(t, s, 1, "call dentist", "18/05/2025", "9:00 AM", "")

	for token, want := range map[string]time.Time{
		"10m": testNow.Add(10 * time.Minute),
		"1h":  testNow.Add(time.Hour),
		"1d":  testNow.Add(24 * time.Hour),
	} {
		snoozed, err := s.Snooze(ctx, 1, task.ID, token)
		require.NoError(t, err)
		assert.True(t, snoozed.DueAt.Equal(want), "snooze %s: got %v want %v", token, snoozed.DueAt, want)
		require.NotNil(t, snoozed.SnoozedUntil)
		assert.Equal(t, token, snoozed.SnoozedDuration)
	}
}

func TestSnoozeRejectsBadDurationAndState(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	task := mustCreate(t, s, 1, "stretch", "15/06/2025", "9:00 AM", "")

	_, err := s.Snooze(ctx, 1, task.ID, "2h")
	var derr *InvalidDurationError
	assert.ErrorAs(t, err, &derr)

	_, err = s.Complete(ctx, 1, task.ID)
	require.NoError(t, err)
	_, err = s.Snooze(ctx, 1, task.ID, "1h")
	var serr *InvalidStateError
	assert.ErrorAs(t, err, &serr)
}

func TestTasksOnDateSortAndBoundary(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	late := mustCreate(t, s, 1, "last minute", "15/06/2025", "11:59 PM", dom.PriorityLow)
	high := mustCreate(t, s, 1, "important", "15/06/2025", "2:00 PM", dom.PriorityHigh)
	early := mustCreate(t, s, 1, "morning", "15/06/2025", "8:00 AM", dom.PriorityMedium)
	mustCreate(t, s, 1, "next day", "16/06/2025", "12:00 AM", dom.PriorityHigh)

	day := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.Local)

	byTime, err := s.TasksOnDate(ctx, 1, day, repo.SortByTime)
	require.NoError(t, err)
	require.Len(t, byTime, 3, "23:59 stays on its own day, midnight belongs to the next")
	assert.Equal(t, []int64{early.ID, high.ID, late.ID}, ids(byTime))

	byPrio, err := s.TasksOnDate(ctx, 1, day, repo.SortByPriority)
	require.NoError(t, err)
	assert.Equal(t, []int64{high.ID, early.ID, late.ID}, ids(byPrio))

	_, err = s.TasksOnDate(ctx, 1, day, "alphabetical")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpcomingWindows(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	mustCreate(t, s, 1, "overdue", "30/05/2025", "9:00 AM", "")
	soon := mustCreate(t, s, 1, "soon", "04/06/2025", "9:00 AM", "")
	month := mustCreate(t, s, 1, "this month", "20/06/2025", "9:00 AM", "")
	year := mustCreate(t, s, 1, "later this year", "10/09/2025", "9:00 AM", "")

	for filter, want := range map[string][]int64{
		"next7":   {soon.ID},
		"next30":  {soon.ID, month.ID},
		"next365": {soon.ID, month.ID, year.ID},
		"all":     {soon.ID, month.ID, year.ID},
	} {
		got, err := s.Upcoming(ctx, 1, filter)
		require.NoError(t, err, filter)
		assert.Equal(t, want, ids(got), filter)
	}

	_, err := s.Upcoming(ctx, 1, "next90")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDueNowOrder(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	lowOld := mustCreate(t, s, 1, "low, very overdue", "20/05/2025", "9:00 AM", dom.PriorityLow)
	highNew := mustCreate(t, s, 1, "high, just due", "01/06/2025", "9:30 AM", dom.PriorityHigh)
	highOld := mustCreate(t, s, 1, "high, overdue", "25/05/2025", "9:00 AM", dom.PriorityHigh)
	mustCreate(t, s, 1, "not due yet", "01/06/2025", "11:00 AM", dom.PriorityHigh)

	due, err := s.DueNow(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{highOld.ID, highNew.ID, lowOld.ID}, ids(due))
}

func TestCompletedFilters(t *testing.T) {
	s, r, _ := newTestService()
	ctx := context.Background()

	recent := mustCreate(t, s, 1, "recent", "25/05/2025", "9:00 AM", "")
	old := mustCreate(t, s, 1, "old", "01/03/2025", "9:00 AM", "")

	_, _, err := r.Complete(ctx, 1, recent.ID, testNow.AddDate(0, 0, -2))
	require.NoError(t, err)
	_, _, err = r.Complete(ctx, 1, old.ID, testNow.AddDate(0, 0, -90))
	require.NoError(t, err)

	last7, err := s.Completed(ctx, 1, "last7")
	require.NoError(t, err)
	assert.Equal(t, []int64{recent.ID}, ids(last7))

	all, err := s.Completed(ctx, 1, "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.Completed(ctx, 1, "last90")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDeletedOrderedByDeletionDesc(t *testing.T) {
	s, r, _ := newTestService()
	ctx := context.Background()

	first := mustCreate(t, s, 1, "deleted first", "15/06/2025", "9:00 AM", "")
	second := mustCreate(t, s, 1, "deleted second", "16/06/2025", "9:00 AM", "")

	_, err := r.SoftDelete(ctx, 1, first.ID, testNow.Add(-time.Hour))
	require.NoError(t, err)
	_, err = r.SoftDelete(ctx, 1, second.ID, testNow)
	require.NoError(t, err)

	bin, err := s.Deleted(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{second.ID, first.ID}, ids(bin))
}

func TestBulkRestoreBranches(t *testing.T) {
	s, _, c := newTestService()
	ctx := context.Background()

	wasActive := mustCreate(t, s, 1, "was active", "15/06/2025", "9:00 AM", "")
	wasDone := mustCreate(t, s, 1, "was done", "16/06/2025", "9:00 AM", "")
	_, err := s.Complete(ctx, 1, wasDone.ID)
	require.NoError(t, err)
	_, err = s.SoftDelete(ctx, 1, wasActive.ID)
	require.NoError(t, err)
	_, err = s.SoftDelete(ctx, 1, wasDone.ID)
	require.NoError(t, err)

	flushes := c.userFlushes
	toActive, toCompleted, err := s.RestoreAll(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, toActive)
	assert.Equal(t, 1, toCompleted)
	assert.Equal(t, flushes+1, c.userFlushes)

	active, err := s.AllActive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{wasActive.ID}, ids(active))

	completed, err := s.Completed(ctx, 1, "all")
	require.NoError(t, err)
	assert.Equal(t, []int64{wasDone.ID}, ids(completed))
}

func TestDeleteAllCompletedThenPurge(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		task := mustCreate(t, s, 1, fmt.Sprintf("chore %d", i), "15/06/2025", "9:00 AM", "")
		_, err := s.Complete(ctx, 1, task.ID)
		require.NoError(t, err)
	}
	keep := mustCreate(t, s, 1, "still active", "15/06/2025", "9:00 AM", "")

	n, err := s.DeleteAllCompleted(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	purged, err := s.PermanentlyDeleteAll(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, purged)

	bin, err := s.Deleted(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, bin)

	active, err := s.AllActive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{keep.ID}, ids(active))
}

func TestMonthCacheFillAndInvalidate(t *testing.T) {
	s, _, c := newTestService()
	ctx := context.Background()

	task := mustCreate(t, s, 1, "june task", "15/06/2025", "9:00 AM", "")
	assert.Contains(t, c.invalidated, monthKey(1, 2025, time.June), "create invalidates its month")

	list, err := s.TasksInMonth(ctx, 1, 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, []int64{task.ID}, ids(list))
	assert.Contains(t, c.store, monthKey(1, 2025, time.June), "miss fills the cache")

	// poison the cached entry; a hit must serve it without consulting the repo
	c.store[monthKey(1, 2025, time.June)] = []dom.Task{}
	list, err = s.TasksInMonth(ctx, 1, 2025, time.June)
	require.NoError(t, err)
	assert.Empty(t, list)

	before := len(c.invalidated)
	_, err = s.Complete(ctx, 1, task.ID)
	require.NoError(t, err)
	assert.Len(t, c.invalidated, before+1, "complete invalidates the task's month")
	assert.NotContains(t, c.store, monthKey(1, 2025, time.June))
}

func TestSnoozeInvalidatesBothMonths(t *testing.T) {
	s, _, c := newTestService()
	ctx := context.Background()

	// due on the last of May, fixed clock is June 1st: a 1d snooze crosses
	// the month boundary
	task := mustCreate(t, s, 1, "straddles months", "31/05/2025", "9:00 AM", "")

	c.invalidated = nil
	_, err := s.Snooze(ctx, 1, task.ID, "1d")
	require.NoError(t, err)
	assert.Contains(t, c.invalidated, monthKey(1, 2025, time.May))
	assert.Contains(t, c.invalidated, monthKey(1, 2025, time.June))
}

func TestNilCacheDisablesMemoization(t *testing.T) {
	r := repo.NewMemTaskRepo()
	s := NewTaskService(r, nil, zerolog.Nop())
	s.now = func() time.Time { return testNow }

	task := mustCreate(t, s, 1, "uncached", "15/06/2025", "9:00 AM", "")
	list, err := s.TasksInMonth(context.Background(), 1, 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, []int64{task.ID}, ids(list))
}

func TestUserIsolation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	mine := mustCreate(t, s, 1, "mine", "15/06/2025", "9:00 AM", "")
	mustCreate(t, s, 2, "theirs", "15/06/2025", "9:00 AM", "")

	_, err := s.Complete(ctx, 2, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound, "user 2 must not see user 1's task")

	active, err := s.AllActive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{mine.ID}, ids(active))
}

func TestCreateRecurringStoresRuleOnly(t *testing.T) {
	s, r, _ := newTestService()
	ctx := context.Background()

	task, err := s.Create(ctx, 1, timefmt.Default(), CreateTaskInput{
		Description: "standup",
		DueDate:     "02/06/2025",
		DueTime:     "9:30 AM",
		Recurrence:  recurrence.Custom,
		CustomDays:  []int{1, 3, 5},
		RepeatUntil: "31/12/2025",
	})
	require.NoError(t, err)
	assert.Equal(t, string(recurrence.Custom), task.Recurrence)
	assert.Equal(t, []int{1, 3, 5}, task.CustomDays)
	require.NotNil(t, task.RepeatUntil)

	// recurrence is metadata; exactly one row exists
	all, err := r.ListActive(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func ids(list []dom.Task) []int64 {
	out := make([]int64, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}
