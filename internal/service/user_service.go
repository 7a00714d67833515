package service

import (
	"context"
	"errors"
	"strings"

	dom "github.com/karimahmed315/task-manager/internal/domain"
	"github.com/karimahmed315/task-manager/internal/repo"
	"github.com/karimahmed315/task-manager/internal/timefmt"
	"github.com/karimahmed315/task-manager/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrUsernameTaken = errors.New("username already taken")

// UserService handles user auth and display settings.
type UserService struct {
	repo repo.UserRepo
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo}
}

// ValidateCredentials checks username and password; returns user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with hashed password and default display
// formats.
func (s *UserService) Register(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// Formats returns the user's date/time format configuration, falling back
// to defaults for anything unrecognized.
func (s *UserService) Formats(ctx context.Context, userID int64) (timefmt.Config, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timefmt.Config{}, ErrNotFound
		}
		return timefmt.Config{}, err
	}
	cfg := timefmt.Config{
		DateFormat: timefmt.DateFormat(u.DateFormat),
		TimeFormat: timefmt.TimeFormat(u.TimeFormat),
	}
	if !cfg.Valid() {
		cfg = timefmt.Default()
	}
	return cfg, nil
}

// UpdateFormats validates and stores the user's display preferences.
func (s *UserService) UpdateFormats(ctx context.Context, userID int64, dateFormat, timeFormat string) (dom.User, error) {
	cfg := timefmt.Config{
		DateFormat: timefmt.DateFormat(dateFormat),
		TimeFormat: timefmt.TimeFormat(timeFormat),
	}
	if !cfg.Valid() {
		return dom.User{}, &ValidationError{
			Field: "settings",
			Value: dateFormat + "/" + timeFormat,
			Hint:  "DDMMYYYY or MMDDYYYY with 12hr or 24hr",
		}
	}
	u, err := s.repo.UpdateFormats(ctx, userID, dateFormat, timeFormat)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, userID int64) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}
