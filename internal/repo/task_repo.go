package repo

import (
	"context"
	"time"

	dom "github.com/karimahmed315/task-manager/internal/domain"
)

// SortBy selects the ordering of a day query.
type SortBy string

const (
	SortByTime     SortBy = "time"
	SortByPriority SortBy = "priority"
)

// TaskRepo is the persistence contract for tasks. Tasks live in exactly
// one of three collections (active, completed, deleted); every transition
// below must move the task atomically with respect to concurrent readers.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	// GetByID finds a task in any collection.
	GetByID(ctx context.Context, userID, id int64) (dom.Task, error)

	// Complete moves an active task to completed. If the task is already
	// in the completed collection it is returned unchanged with
	// alreadyDone=true; that is a success, not an error.
	Complete(ctx context.Context, userID, id int64, now time.Time) (t dom.Task, alreadyDone bool, err error)
	// SoftDelete searches active then completed and moves the task to
	// deleted, leaving the completed flag untouched.
	SoftDelete(ctx context.Context, userID, id int64, now time.Time) (dom.Task, error)
	// Restore moves a deleted task back to the collection its preserved
	// completed flag names.
	Restore(ctx context.Context, userID, id int64) (dom.Task, error)
	// PermanentlyDelete removes a task from the deleted collection.
	PermanentlyDelete(ctx context.Context, userID, id int64) error
	// Snooze updates due_at on an active task only; a non-active task is
	// reported as not found so the caller can decide what that means.
	Snooze(ctx context.Context, userID, id int64, newDue time.Time, duration string) (dom.Task, error)

	ListOnDate(ctx context.Context, userID int64, day time.Time, sort SortBy) ([]dom.Task, error)
	ListInMonth(ctx context.Context, userID int64, year int, month time.Month) ([]dom.Task, error)
	ListActive(ctx context.Context, userID int64) ([]dom.Task, error)
	// ListUpcoming returns active tasks with due_at in [from, until);
	// until == nil means unbounded.
	ListUpcoming(ctx context.Context, userID int64, from time.Time, until *time.Time) ([]dom.Task, error)
	// ListDue returns active tasks due at or before now, most urgent first.
	ListDue(ctx context.Context, userID int64, now time.Time) ([]dom.Task, error)
	// ListDueAll is ListDue across every user, for the background poller.
	ListDueAll(ctx context.Context, now time.Time) ([]dom.Task, error)
	// ListCompleted returns completed tasks; since == nil means all time.
	ListCompleted(ctx context.Context, userID int64, since *time.Time) ([]dom.Task, error)
	ListDeleted(ctx context.Context, userID int64) ([]dom.Task, error)

	// Bulk operations. Each returns how many tasks were affected.
	DeleteAllCompleted(ctx context.Context, userID int64, now time.Time) (int, error)
	RestoreAll(ctx context.Context, userID int64) (toActive, toCompleted int, err error)
	PurgeDeleted(ctx context.Context, userID int64) (int, error)
}

// DayBounds returns the half-open [start, end) interval covering the
// calendar day of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// MonthBounds returns the half-open [start, end) interval covering a
// calendar month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}
