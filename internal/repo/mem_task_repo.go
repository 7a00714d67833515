package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "github.com/karimahmed315/task-manager/internal/domain"

	"github.com/jackc/pgx/v5"
)

// MemTaskRepo is an in-memory TaskRepo. It is the reference
// implementation of the store contract and backs the service tests; a
// single mutex gives it the same per-operation atomicity the Postgres
// repo gets from guarded UPDATEs.
type MemTaskRepo struct {
	mu     sync.Mutex
	tasks  map[int64]*dom.Task
	nextID int64
}

// NewMemTaskRepo returns an empty MemTaskRepo.
func NewMemTaskRepo() *MemTaskRepo {
	return &MemTaskRepo{tasks: map[int64]*dom.Task{}, nextID: 1}
}

func (r *MemTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++ // ids are never reused, even after permanent delete
	t.Location = dom.LocationActive
	t.Completed = false
	t.CreatedAt = time.Now()
	r.tasks[t.ID] = &t
	return t, nil
}

func (r *MemTaskRepo) get(userID, id int64) (*dom.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (r *MemTaskRepo) GetByID(_ context.Context, userID, id int64) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.get(userID, id)
	if err != nil {
		return dom.Task{}, err
	}
	return *t, nil
}

func (r *MemTaskRepo) Complete(_ context.Context, userID, id int64, now time.Time) (dom.Task, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.get(userID, id)
	if err != nil {
		return dom.Task{}, false, err
	}
	switch t.Location {
	case dom.LocationActive:
		t.Location = dom.LocationCompleted
		t.Completed = true
		at := now
		t.CompletedAt = &at
		return *t, false, nil
	case dom.LocationCompleted:
		return *t, true, nil
	default:
		return dom.Task{}, false, pgx.ErrNoRows
	}
}

func (r *MemTaskRepo) SoftDelete(_ context.Context, userID, id int64, now time.Time) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.get(userID, id)
	if err != nil {
		return dom.Task{}, err
	}
	if t.Location == dom.LocationDeleted {
		return dom.Task{}, pgx.ErrNoRows
	}
	t.Location = dom.LocationDeleted
	at := now
	t.DeletedAt = &at
	return *t, nil
}

func (r *MemTaskRepo) Restore(_ context.Context, userID, id int64) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.get(userID, id)
	if err != nil {
		return dom.Task{}, err
	}
	if t.Location != dom.LocationDeleted {
		return dom.Task{}, pgx.ErrNoRows
	}
	t.DeletedAt = nil
	if t.Completed {
		t.Location = dom.LocationCompleted
	} else {
		t.Location = dom.LocationActive
		t.CompletedAt = nil
	}
	return *t, nil
}

func (r *MemTaskRepo) PermanentlyDelete(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.get(userID, id)
	if err != nil {
		return err
	}
	if t.Location != dom.LocationDeleted {
		return pgx.ErrNoRows
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemTaskRepo) Snooze(_ context.Context, userID, id int64, newDue time.Time, duration string) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.get(userID, id)
	if err != nil {
		return dom.Task{}, err
	}
	if t.Location != dom.LocationActive {
		return dom.Task{}, pgx.ErrNoRows
	}
	t.DueAt = newDue
	until := newDue
	t.SnoozedUntil = &until
	t.SnoozedDuration = duration
	return *t, nil
}

func (r *MemTaskRepo) filter(userID int64, keep func(*dom.Task) bool) []dom.Task {
	var out []dom.Task
	for _, t := range r.tasks {
		if (userID == 0 || t.UserID == userID) && keep(t) {
			out = append(out, *t)
		}
	}
	return out
}

func byDueAsc(list []dom.Task) {
	sort.Slice(list, func(i, j int) bool { return list[i].DueAt.Before(list[j].DueAt) })
}

func byPriorityThenDue(list []dom.Task) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Priority.Rank() != list[j].Priority.Rank() {
			return list[i].Priority.Rank() > list[j].Priority.Rank()
		}
		return list[i].DueAt.Before(list[j].DueAt)
	})
}

func (r *MemTaskRepo) ListOnDate(_ context.Context, userID int64, day time.Time, sortBy SortBy) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, end := DayBounds(day)
	list := r.filter(userID, func(t *dom.Task) bool {
		return t.Location == dom.LocationActive && !t.DueAt.Before(start) && t.DueAt.Before(end)
	})
	if sortBy == SortByPriority {
		byPriorityThenDue(list)
	} else {
		byDueAsc(list)
	}
	return list, nil
}

func (r *MemTaskRepo) ListInMonth(_ context.Context, userID int64, year int, month time.Month) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, end := MonthBounds(year, month)
	list := r.filter(userID, func(t *dom.Task) bool {
		return t.Location == dom.LocationActive && !t.DueAt.Before(start) && t.DueAt.Before(end)
	})
	byDueAsc(list)
	return list, nil
}

func (r *MemTaskRepo) ListActive(_ context.Context, userID int64) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.filter(userID, func(t *dom.Task) bool { return t.Location == dom.LocationActive })
	byDueAsc(list)
	return list, nil
}

func (r *MemTaskRepo) ListUpcoming(_ context.Context, userID int64, from time.Time, until *time.Time) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.filter(userID, func(t *dom.Task) bool {
		if t.Location != dom.LocationActive || t.DueAt.Before(from) {
			return false
		}
		return until == nil || t.DueAt.Before(*until)
	})
	byDueAsc(list)
	return list, nil
}

func (r *MemTaskRepo) ListDue(_ context.Context, userID int64, now time.Time) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.filter(userID, func(t *dom.Task) bool {
		return t.Location == dom.LocationActive && !t.DueAt.After(now)
	})
	byPriorityThenDue(list)
	return list, nil
}

func (r *MemTaskRepo) ListDueAll(ctx context.Context, now time.Time) ([]dom.Task, error) {
	return r.ListDue(ctx, 0, now)
}

func (r *MemTaskRepo) ListCompleted(_ context.Context, userID int64, since *time.Time) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.filter(userID, func(t *dom.Task) bool {
		if t.Location != dom.LocationCompleted {
			return false
		}
		return since == nil || (t.CompletedAt != nil && !t.CompletedAt.Before(*since))
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].DueAt.Equal(list[j].DueAt) {
			return list[i].DueAt.Before(list[j].DueAt)
		}
		return list[i].Priority.Rank() > list[j].Priority.Rank()
	})
	return list, nil
}

func (r *MemTaskRepo) ListDeleted(_ context.Context, userID int64) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.filter(userID, func(t *dom.Task) bool { return t.Location == dom.LocationDeleted })
	sort.Slice(list, func(i, j int) bool { return list[i].DeletedAt.After(*list[j].DeletedAt) })
	return list, nil
}

func (r *MemTaskRepo) DeleteAllCompleted(_ context.Context, userID int64, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tasks {
		if t.UserID == userID && t.Location == dom.LocationCompleted {
			t.Location = dom.LocationDeleted
			at := now
			t.DeletedAt = &at
			n++
		}
	}
	return n, nil
}

func (r *MemTaskRepo) RestoreAll(_ context.Context, userID int64) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var toActive, toCompleted int
	for _, t := range r.tasks {
		if t.UserID != userID || t.Location != dom.LocationDeleted {
			continue
		}
		t.DeletedAt = nil
		if t.Completed {
			t.Location = dom.LocationCompleted
			toCompleted++
		} else {
			t.Location = dom.LocationActive
			t.CompletedAt = nil
			toActive++
		}
	}
	return toActive, toCompleted, nil
}

func (r *MemTaskRepo) PurgeDeleted(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, t := range r.tasks {
		if t.UserID == userID && t.Location == dom.LocationDeleted {
			delete(r.tasks, id)
			n++
		}
	}
	return n, nil
}
