package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

func openTestRepo(t *testing.T) (*SQLiteRepo, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"), loc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, loc
}

func TestOpenSQLite_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	repo, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer repo.Close()

	var n int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 1, n)
	assert.NoError(t, repo.Ping(ctx))
}

func TestUsers_SubscribeAndRoles(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ChatID: "100", FirstName: "Somchai", Subscribed: true}))
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ChatID: "200", Subscribed: true}))
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ChatID: "300", Subscribed: false}))

	subs, err := repo.ListSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200"}, subs)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, repo.SetSubscribed(ctx, "100", false))
	require.NoError(t, repo.SetRole(ctx, "300", domain.UserRoleAdmin))

	subs, err = repo.ListSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"200"}, subs)

	admins, err := repo.ListAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "300", admins[0].ChatID)
	assert.True(t, admins[0].IsAdmin())

	// profile refresh keeps role and subscription
	require.NoError(t, repo.UpsertUser(ctx, &domain.User{ChatID: "300", Username: "ops", Subscribed: true}))
	u, err := repo.GetUser(ctx, "300")
	require.NoError(t, err)
	assert.Equal(t, "ops", u.Username)
	assert.Equal(t, domain.UserRoleAdmin, u.Role)
	assert.False(t, u.Subscribed)
}

func TestUsers_NotFound(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.SetSubscribed(ctx, "missing", true), ErrNotFound)
	assert.Error(t, repo.UpsertUser(ctx, &domain.User{ChatID: " "}))
}

func TestHolidays_CRUD(t *testing.T) {
	repo, loc := openTestRepo(t)
	ctx := context.Background()

	songkran := time.Date(2025, time.April, 13, 0, 0, 0, 0, loc)
	newYear := time.Date(2025, time.January, 1, 0, 0, 0, 0, loc)

	require.NoError(t, repo.AddHoliday(ctx, domain.Holiday{Date: songkran, Name: "Songkran"}))
	require.NoError(t, repo.AddHoliday(ctx, domain.Holiday{Date: newYear}))

	h, err := repo.FindHolidayByDate(ctx, songkran.Add(10*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "Songkran", h.Name)
	assert.True(t, h.Date.Equal(songkran))

	none, err := repo.FindHolidayByDate(ctx, songkran.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, none)

	all, err := repo.ListHolidays(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.DefaultHolidayName, all[0].Name)

	found, err := repo.SearchHolidays(ctx, "songk")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	n, err := repo.CountHolidays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := repo.DeleteHoliday(ctx, newYear)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.DeleteHoliday(ctx, newYear)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHolidays_Replace(t *testing.T) {
	repo, loc := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddHoliday(ctx, domain.Holiday{Date: time.Date(2024, 12, 31, 0, 0, 0, 0, loc), Name: "old"}))
	require.NoError(t, repo.ReplaceHolidays(ctx, []domain.Holiday{
		{Date: time.Date(2025, 5, 1, 0, 0, 0, 0, loc), Name: "Labour Day"},
		{Date: time.Date(2025, 5, 5, 0, 0, 0, 0, loc), Name: "Coronation Day"},
	}))

	n, err := repo.CountHolidays(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
