package store

import (
	"context"
	"errors"
	"time"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Repo defines storage operations for users and holidays.
type Repo interface {
	UpsertUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, chatID string) (*domain.User, error)
	SetSubscribed(ctx context.Context, chatID string, subscribed bool) error
	SetRole(ctx context.Context, chatID string, role domain.UserRole) error
	ListSubscribers(ctx context.Context) ([]string, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	FindHolidayByDate(ctx context.Context, date time.Time) (*domain.Holiday, error)
	ListHolidays(ctx context.Context, from time.Time) ([]domain.Holiday, error)
	SearchHolidays(ctx context.Context, query string) ([]domain.Holiday, error)
	AddHoliday(ctx context.Context, h domain.Holiday) error
	DeleteHoliday(ctx context.Context, date time.Time) (bool, error)
	CountHolidays(ctx context.Context) (int, error)
	ReplaceHolidays(ctx context.Context, hs []domain.Holiday) error

	Ping(ctx context.Context) error
	Close() error
}
