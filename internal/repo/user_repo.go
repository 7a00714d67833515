package repo

import (
	"context"

	dom "github.com/karimahmed315/task-manager/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence, including the display format
// preferences that configure date/time parsing.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	Create(ctx context.Context, username, passwordHash string) (dom.User, error)
	UpdateFormats(ctx context.Context, id int64, dateFormat, timeFormat string) (dom.User, error)
}

const userColumns = `id, username, password_hash, date_format, time_format, created_at`

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

func scanUser(row rowScanner) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DateFormat, &u.TimeFormat, &u.CreatedAt)
	return u, err
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByUsername returns the user by username.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// Create inserts a new user with default display formats and returns it.
func (r *PGUserRepo) Create(ctx context.Context, username, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, username, passwordHash))
}

// UpdateFormats sets the user's date/time display preferences.
func (r *PGUserRepo) UpdateFormats(ctx context.Context, id int64, dateFormat, timeFormat string) (dom.User, error) {
	query := `
		UPDATE users SET date_format = $2, time_format = $3
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id, dateFormat, timeFormat))
}
