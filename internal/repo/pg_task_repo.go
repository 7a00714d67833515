package repo

import (
	"context"
	"fmt"
	"time"

	dom "github.com/karimahmed315/task-manager/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, user_id, description, due_at, priority, recurrence, custom_days,
	repeat_until, location, completed, completed_at, deleted_at,
	snoozed_until, snoozed_duration, created_at`

// PGTaskRepo implements TaskRepo with Postgres. Location transitions run
// as single UPDATE statements guarded on the current location, so each
// move is atomic without explicit row locks.
type PGTaskRepo struct {
	db *pgxpool.Pool
}

// NewPGTaskRepo returns a new PGTaskRepo.
func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (dom.Task, error) {
	var t dom.Task
	var days []int32
	err := row.Scan(
		&t.ID, &t.UserID, &t.Description, &t.DueAt, &t.Priority, &t.Recurrence, &days,
		&t.RepeatUntil, &t.Location, &t.Completed, &t.CompletedAt, &t.DeletedAt,
		&t.SnoozedUntil, &t.SnoozedDuration, &t.CreatedAt,
	)
	if err != nil {
		return dom.Task{}, err
	}
	if len(days) > 0 {
		t.CustomDays = make([]int, len(days))
		for i, d := range days {
			t.CustomDays[i] = int(d)
		}
	}
	return t, nil
}

func (r *PGTaskRepo) collectTasks(ctx context.Context, query string, args ...any) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func customDaysParam(days []int) []int32 {
	if len(days) == 0 {
		return nil
	}
	out := make([]int32, len(days))
	for i, d := range days {
		out[i] = int32(d)
	}
	return out
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (user_id, description, due_at, priority, recurrence, custom_days, repeat_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		t.UserID, t.Description, t.DueAt, t.Priority, t.Recurrence,
		customDaysParam(t.CustomDays), t.RepeatUntil,
	))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, userID, id int64) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND id = $2`
	return scanTask(r.db.QueryRow(ctx, query, userID, id))
}

func (r *PGTaskRepo) Complete(ctx context.Context, userID, id int64, now time.Time) (dom.Task, bool, error) {
	query := `
		UPDATE tasks SET location = 'completed', completed = TRUE, completed_at = $3
		WHERE user_id = $1 AND id = $2 AND location = 'active'
		RETURNING ` + taskColumns
	t, err := scanTask(r.db.QueryRow(ctx, query, userID, id, now))
	if err == nil {
		return t, false, nil
	}
	if err != pgx.ErrNoRows {
		return dom.Task{}, false, err
	}
	// Not active: an already-completed task is an idempotent success.
	t, err = r.GetByID(ctx, userID, id)
	if err != nil {
		return dom.Task{}, false, err
	}
	if t.Location == dom.LocationCompleted {
		return t, true, nil
	}
	return dom.Task{}, false, pgx.ErrNoRows
}

func (r *PGTaskRepo) SoftDelete(ctx context.Context, userID, id int64, now time.Time) (dom.Task, error) {
	// completed flag is deliberately untouched: it records where the task
	// came from and drives restore branching.
	query := `
		UPDATE tasks SET location = 'deleted', deleted_at = $3
		WHERE user_id = $1 AND id = $2 AND location IN ('active', 'completed')
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, userID, id, now))
}

func (r *PGTaskRepo) Restore(ctx context.Context, userID, id int64) (dom.Task, error) {
	query := `
		UPDATE tasks SET
			location = CASE WHEN completed THEN 'completed' ELSE 'active' END,
			deleted_at = NULL,
			completed_at = CASE WHEN completed THEN completed_at ELSE NULL END
		WHERE user_id = $1 AND id = $2 AND location = 'deleted'
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, userID, id))
}

func (r *PGTaskRepo) PermanentlyDelete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND id = $2 AND location = 'deleted'`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGTaskRepo) Snooze(ctx context.Context, userID, id int64, newDue time.Time, duration string) (dom.Task, error) {
	query := `
		UPDATE tasks SET due_at = $3, snoozed_until = $3, snoozed_duration = $4
		WHERE user_id = $1 AND id = $2 AND location = 'active'
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, userID, id, newDue, duration))
}

const priorityRank = `CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END`

func (r *PGTaskRepo) ListOnDate(ctx context.Context, userID int64, day time.Time, sort SortBy) ([]dom.Task, error) {
	order := "due_at ASC"
	if sort == SortByPriority {
		order = priorityRank + " DESC, due_at ASC"
	}
	start, end := DayBounds(day)
	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE user_id = $1 AND location = 'active' AND due_at >= $2 AND due_at < $3
		ORDER BY %s`, taskColumns, order)
	return r.collectTasks(ctx, query, userID, start, end)
}

func (r *PGTaskRepo) ListInMonth(ctx context.Context, userID int64, year int, month time.Month) ([]dom.Task, error) {
	start, end := MonthBounds(year, month)
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND location = 'active' AND due_at >= $2 AND due_at < $3
		ORDER BY due_at ASC`
	return r.collectTasks(ctx, query, userID, start, end)
}

func (r *PGTaskRepo) ListActive(ctx context.Context, userID int64) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND location = 'active'
		ORDER BY due_at ASC`
	return r.collectTasks(ctx, query, userID)
}

func (r *PGTaskRepo) ListUpcoming(ctx context.Context, userID int64, from time.Time, until *time.Time) ([]dom.Task, error) {
	if until != nil {
		query := `
			SELECT ` + taskColumns + ` FROM tasks
			WHERE user_id = $1 AND location = 'active' AND due_at >= $2 AND due_at < $3
			ORDER BY due_at ASC`
		return r.collectTasks(ctx, query, userID, from, *until)
	}
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND location = 'active' AND due_at >= $2
		ORDER BY due_at ASC`
	return r.collectTasks(ctx, query, userID, from)
}

func (r *PGTaskRepo) ListDue(ctx context.Context, userID int64, now time.Time) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND location = 'active' AND due_at <= $2
		ORDER BY ` + priorityRank + ` DESC, due_at ASC`
	return r.collectTasks(ctx, query, userID, now)
}

func (r *PGTaskRepo) ListDueAll(ctx context.Context, now time.Time) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE location = 'active' AND due_at <= $1
		ORDER BY ` + priorityRank + ` DESC, due_at ASC`
	return r.collectTasks(ctx, query, now)
}

func (r *PGTaskRepo) ListCompleted(ctx context.Context, userID int64, since *time.Time) ([]dom.Task, error) {
	if since != nil {
		query := `
			SELECT ` + taskColumns + ` FROM tasks
			WHERE user_id = $1 AND location = 'completed' AND completed_at >= $2
			ORDER BY due_at ASC, ` + priorityRank + ` DESC`
		return r.collectTasks(ctx, query, userID, *since)
	}
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND location = 'completed'
		ORDER BY due_at ASC, ` + priorityRank + ` DESC`
	return r.collectTasks(ctx, query, userID)
}

func (r *PGTaskRepo) ListDeleted(ctx context.Context, userID int64) ([]dom.Task, error) {
	query := `
		SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND location = 'deleted'
		ORDER BY deleted_at DESC`
	return r.collectTasks(ctx, query, userID)
}

func (r *PGTaskRepo) DeleteAllCompleted(ctx context.Context, userID int64, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks SET location = 'deleted', deleted_at = $2
		WHERE user_id = $1 AND location = 'completed'`, userID, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PGTaskRepo) RestoreAll(ctx context.Context, userID int64) (int, int, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE tasks SET
			location = CASE WHEN completed THEN 'completed' ELSE 'active' END,
			deleted_at = NULL,
			completed_at = CASE WHEN completed THEN completed_at ELSE NULL END
		WHERE user_id = $1 AND location = 'deleted'
		RETURNING completed`, userID)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()
	var toActive, toCompleted int
	for rows.Next() {
		var wasCompleted bool
		if err := rows.Scan(&wasCompleted); err != nil {
			return 0, 0, err
		}
		if wasCompleted {
			toCompleted++
		} else {
			toActive++
		}
	}
	return toActive, toCompleted, rows.Err()
}

func (r *PGTaskRepo) PurgeDeleted(ctx context.Context, userID int64) (int, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND location = 'deleted'`, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
