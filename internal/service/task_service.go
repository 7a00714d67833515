package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dom "github.com/karimahmed315/task-manager/internal/domain"
	"github.com/karimahmed315/task-manager/internal/recurrence"
	"github.com/karimahmed315/task-manager/internal/repo"
	"github.com/karimahmed315/task-manager/internal/timefmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const maxDescriptionLen = 150

// MonthCache memoizes per-(user, year, month) query results. GetMonth
// returning a nil slice means miss. The service invalidates the affected
// month at every mutation site; nothing else keeps the cache honest.
type MonthCache interface {
	GetMonth(ctx context.Context, userID int64, year int, month time.Month) ([]dom.Task, error)
	SetMonth(ctx context.Context, userID int64, year int, month time.Month, list []dom.Task) error
	Invalidate(ctx context.Context, userID int64, year int, month time.Month) error
	InvalidateUser(ctx context.Context, userID int64) error
}

// CreateTaskInput is everything needed to create a task. DueDate/DueTime
// are user-facing strings interpreted under the user's format config.
type CreateTaskInput struct {
	Description string
	DueDate     string
	DueTime     string
	Priority    dom.Priority
	Recurrence  recurrence.Frequency
	CustomDays  []int
	RepeatUntil string // optional, date string in the user's date format
}

// TaskService owns the task lifecycle and queries. All mutations go
// through here so month-cache invalidation happens in one place.
type TaskService struct {
	repo  repo.TaskRepo
	cache MonthCache
	sf    singleflight.Group
	log   zerolog.Logger
	now   func() time.Time
}

// NewTaskService creates a TaskService. If c is nil, month caching is
// disabled.
func NewTaskService(r repo.TaskRepo, c MonthCache, log zerolog.Logger) *TaskService {
	return &TaskService{repo: r, cache: c, log: log, now: time.Now}
}

// Create validates input, parses the due date/time under fmtCfg and
// stores a new active task. Parse errors from the date/time layer are
// propagated verbatim.
func (s *TaskService) Create(ctx context.Context, userID int64, fmtCfg timefmt.Config, in CreateTaskInput) (dom.Task, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return dom.Task{}, &ValidationError{Field: "description", Value: desc, Hint: "a non-empty description"}
	}
	if len(desc) > maxDescriptionLen {
		return dom.Task{}, &ValidationError{Field: "description", Value: desc,
			Hint: fmt.Sprintf("at most %d characters", maxDescriptionLen)}
	}

	priority := in.Priority
	if priority == "" {
		priority = dom.PriorityMedium
	}
	if !priority.Valid() {
		return dom.Task{}, &ValidationError{Field: "priority", Value: string(in.Priority), Hint: "low, medium or high"}
	}

	freq := in.Recurrence
	if freq == "" {
		freq = recurrence.None
	}
	rule := recurrence.Rule{Frequency: freq, CustomDays: in.CustomDays}
	var repeatUntil *time.Time
	if in.RepeatUntil != "" && freq != recurrence.None {
		until, err := fmtCfg.ParseDate(in.RepeatUntil)
		if err != nil {
			return dom.Task{}, err
		}
		repeatUntil = &until
		rule.Until = &until
	}
	if err := rule.Validate(); err != nil {
		return dom.Task{}, &ValidationError{Field: "recurrence", Value: string(freq), Hint: err.Error()}
	}

	parsed, err := fmtCfg.Parse(in.DueDate, in.DueTime)
	if err != nil {
		return dom.Task{}, err
	}
	if parsed.Warning != "" {
		s.log.Warn().Int64("user_id", userID).Msg(parsed.Warning)
	}

	t, err := s.repo.Create(ctx, dom.Task{
		UserID:      userID,
		Description: desc,
		DueAt:       parsed.At,
		Priority:    priority,
		Recurrence:  string(freq),
		CustomDays:  in.CustomDays,
		RepeatUntil: repeatUntil,
	})
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateMonth(ctx, userID, t.DueAt)
	return t, nil
}

// Complete moves an active task to completed. Completing an
// already-completed task is an idempotent success.
func (s *TaskService) Complete(ctx context.Context, userID, id int64) (dom.Task, error) {
	t, alreadyDone, err := s.repo.Complete(ctx, userID, id, s.now())
	if err != nil {
		return dom.Task{}, notFoundOr(err)
	}
	if !alreadyDone {
		s.invalidateMonth(ctx, userID, t.DueAt)
	}
	return t, nil
}

// SoftDelete moves a task (active or completed) to deleted, preserving
// its completed flag.
func (s *TaskService) SoftDelete(ctx context.Context, userID, id int64) (dom.Task, error) {
	t, err := s.repo.SoftDelete(ctx, userID, id, s.now())
	if err != nil {
		return dom.Task{}, notFoundOr(err)
	}
	s.invalidateMonth(ctx, userID, t.DueAt)
	return t, nil
}

// Restore returns a deleted task to the collection it was deleted from.
func (s *TaskService) Restore(ctx context.Context, userID, id int64) (dom.Task, error) {
	t, err := s.repo.Restore(ctx, userID, id)
	if err != nil {
		return dom.Task{}, notFoundOr(err)
	}
	s.invalidateMonth(ctx, userID, t.DueAt)
	return t, nil
}

// PermanentlyDelete removes a deleted task for good.
func (s *TaskService) PermanentlyDelete(ctx context.Context, userID, id int64) error {
	if err := s.repo.PermanentlyDelete(ctx, userID, id); err != nil {
		return notFoundOr(err)
	}
	return nil
}

// snoozeOffsets are the recognized duration tokens.
var snoozeOffsets = map[string]time.Duration{
	"10m": 10 * time.Minute,
	"1h":  time.Hour,
	"1d":  24 * time.Hour,
}

// Snooze pushes an active task's due instant to now+duration. The base is
// always the current moment, never the previous due date: snoozing a
// long-overdue task yields a near-future reminder instead of compounding
// past-due drift.
func (s *TaskService) Snooze(ctx context.Context, userID, id int64, duration string) (dom.Task, error) {
	offset, ok := snoozeOffsets[duration]
	if !ok {
		return dom.Task{}, &InvalidDurationError{Value: duration}
	}
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return dom.Task{}, notFoundOr(err)
	}
	if t.Location != dom.LocationActive {
		return dom.Task{}, &InvalidStateError{ID: id, Location: t.Location, Op: "snooze"}
	}
	oldDue := t.DueAt
	newDue := s.now().Add(offset)
	t, err = s.repo.Snooze(ctx, userID, id, newDue, duration)
	if err != nil {
		return dom.Task{}, notFoundOr(err)
	}
	s.invalidateMonth(ctx, userID, oldDue)
	if oldDue.Year() != newDue.Year() || oldDue.Month() != newDue.Month() {
		s.invalidateMonth(ctx, userID, newDue)
	}
	return t, nil
}

// DeleteAllCompleted soft-deletes every completed task; returns the count.
func (s *TaskService) DeleteAllCompleted(ctx context.Context, userID int64) (int, error) {
	n, err := s.repo.DeleteAllCompleted(ctx, userID, s.now())
	if err != nil {
		return 0, err
	}
	s.invalidateAllMonths(ctx, userID)
	return n, nil
}

// RestoreAll restores every deleted task, branching each on its preserved
// completed flag. Returns how many went to each collection.
func (s *TaskService) RestoreAll(ctx context.Context, userID int64) (toActive, toCompleted int, err error) {
	toActive, toCompleted, err = s.repo.RestoreAll(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	s.invalidateAllMonths(ctx, userID)
	return toActive, toCompleted, nil
}

// PermanentlyDeleteAll purges the deleted collection; returns the count.
func (s *TaskService) PermanentlyDeleteAll(ctx context.Context, userID int64) (int, error) {
	return s.repo.PurgeDeleted(ctx, userID)
}

// TasksOnDate returns active tasks due on the calendar day of day.
func (s *TaskService) TasksOnDate(ctx context.Context, userID int64, day time.Time, sort repo.SortBy) ([]dom.Task, error) {
	if sort != repo.SortByTime && sort != repo.SortByPriority {
		return nil, &ValidationError{Field: "sort", Value: string(sort), Hint: "time or priority"}
	}
	return s.repo.ListOnDate(ctx, userID, day, sort)
}

// TasksInMonth returns active tasks due in the month, ascending by due
// instant. Results are memoized; concurrent misses for the same month are
// collapsed by singleflight.
func (s *TaskService) TasksInMonth(ctx context.Context, userID int64, year int, month time.Month) ([]dom.Task, error) {
	if month < time.January || month > time.December {
		return nil, &ValidationError{Field: "month", Value: fmt.Sprint(int(month)), Hint: "1 to 12"}
	}
	if s.cache == nil {
		return s.repo.ListInMonth(ctx, userID, year, month)
	}
	key := fmt.Sprintf("month:%d:%04d-%02d", userID, year, int(month))
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetMonth(ctx, userID, year, month); err == nil && list != nil {
			return list, nil
		} else if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("month cache read failed")
		}
		list, err := s.repo.ListInMonth(ctx, userID, year, month)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetMonth(ctx, userID, year, month, list); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("month cache write failed")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

// AllActive returns every active task, ascending by due instant.
func (s *TaskService) AllActive(ctx context.Context, userID int64) ([]dom.Task, error) {
	return s.repo.ListActive(ctx, userID)
}

// upcomingWindows maps filter tokens to window lengths in days; 0 means
// unbounded.
var upcomingWindows = map[string]int{
	"next7":   7,
	"next30":  30,
	"next365": 365,
	"all":     0,
}

// Upcoming returns active tasks due from the start of today through the
// filter's window.
func (s *TaskService) Upcoming(ctx context.Context, userID int64, filter string) ([]dom.Task, error) {
	days, ok := upcomingWindows[filter]
	if !ok {
		return nil, &ValidationError{Field: "filter", Value: filter, Hint: "next7, next30, next365 or all"}
	}
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var until *time.Time
	if days > 0 {
		end := from.AddDate(0, 0, days)
		until = &end
	}
	return s.repo.ListUpcoming(ctx, userID, from, until)
}

// DueNow returns active tasks due at or before the current moment,
// highest priority first.
func (s *TaskService) DueNow(ctx context.Context, userID int64) ([]dom.Task, error) {
	return s.repo.ListDue(ctx, userID, s.now())
}

// completedWindows maps filter tokens to lookback lengths in days.
var completedWindows = map[string]int{
	"last7":   7,
	"last30":  30,
	"last365": 365,
	"all":     0,
}

// Completed returns completed tasks whose completion falls in the
// filter's window.
func (s *TaskService) Completed(ctx context.Context, userID int64, filter string) ([]dom.Task, error) {
	days, ok := completedWindows[filter]
	if !ok {
		return nil, &ValidationError{Field: "filter", Value: filter, Hint: "last7, last30, last365 or all"}
	}
	var since *time.Time
	if days > 0 {
		cutoff := s.now().AddDate(0, 0, -days)
		since = &cutoff
	}
	return s.repo.ListCompleted(ctx, userID, since)
}

// Deleted returns soft-deleted tasks, most recently deleted first.
func (s *TaskService) Deleted(ctx context.Context, userID int64) ([]dom.Task, error) {
	return s.repo.ListDeleted(ctx, userID)
}

func (s *TaskService) invalidateMonth(ctx context.Context, userID int64, at time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID, at.Year(), at.Month()); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Time("due_at", at).Msg("month cache invalidation failed")
	}
}

func (s *TaskService) invalidateAllMonths(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("month cache invalidation failed")
	}
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
