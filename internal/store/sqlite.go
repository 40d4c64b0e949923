package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct {
	db  *sql.DB
	loc *time.Location // holiday dates are interpreted in this zone
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string, loc *time.Location) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db, loc: loc}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Ping checks that the database answers.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// UpsertUser inserts a user or refreshes its profile fields.
// Role and subscription are only set on insert; use SetRole/SetSubscribed to change them.
func (r *SQLiteRepo) UpsertUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	if strings.TrimSpace(u.ChatID) == "" {
		return errors.New("empty chat id")
	}
	role := u.Role
	if role == "" {
		role = domain.UserRoleUser
	}
	created := u.CreatedAt.UTC().Unix()
	if u.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (chat_id, username, first_name, last_name, role, is_subscribed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			username   = excluded.username,
			first_name = excluded.first_name,
			last_name  = excluded.last_name`,
		u.ChatID, u.Username, u.FirstName, u.LastName, string(role), boolToInt(u.Subscribed), created,
	)
	return err
}

// GetUser returns a user by chat ID or ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, username, first_name, last_name, role, is_subscribed, created_at
		FROM users
		WHERE chat_id = ?`,
		chatID,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*domain.User, error) {
	var (
		u          domain.User
		role       string
		subscribed int
		createdAt  int64
	)
	if err := s.Scan(&u.ChatID, &u.Username, &u.FirstName, &u.LastName, &role, &subscribed, &createdAt); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	u.Subscribed = subscribed != 0
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

// SetSubscribed toggles the subscription flag for a user.
func (r *SQLiteRepo) SetSubscribed(ctx context.Context, chatID string, subscribed bool) error {
	return r.updateOne(ctx, `UPDATE users SET is_subscribed = ? WHERE chat_id = ?`, boolToInt(subscribed), chatID)
}

// SetRole changes a user's permission level.
func (r *SQLiteRepo) SetRole(ctx context.Context, chatID string, role domain.UserRole) error {
	return r.updateOne(ctx, `UPDATE users SET role = ? WHERE chat_id = ?`, string(role), chatID)
}

func (r *SQLiteRepo) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubscribers returns chat IDs of subscribed users in insertion order.
func (r *SQLiteRepo) ListSubscribers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id FROM users
		WHERE is_subscribed = 1
		ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// ListAdmins returns users with the admin role.
func (r *SQLiteRepo) ListAdmins(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, username, first_name, last_name, role, is_subscribed, created_at
		FROM users
		WHERE role = ?
		ORDER BY created_at ASC, rowid ASC`,
		string(domain.UserRoleAdmin),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// FindHolidayByDate returns the holiday on date, or nil when there is none.
func (r *SQLiteRepo) FindHolidayByDate(ctx context.Context, date time.Time) (*domain.Holiday, error) {
	key := domain.DateKey(date.In(r.loc))
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT holiday_name FROM holidays WHERE holiday_date = ?`, key).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d, err := parseDate(key, r.loc)
	if err != nil {
		return nil, err
	}
	return &domain.Holiday{Date: d, Name: name}, nil
}

// ListHolidays returns holidays on or after from, ordered by date.
func (r *SQLiteRepo) ListHolidays(ctx context.Context, from time.Time) ([]domain.Holiday, error) {
	return r.queryHolidays(ctx, `
		SELECT holiday_date, holiday_name FROM holidays
		WHERE holiday_date >= ?
		ORDER BY holiday_date ASC`,
		domain.DateKey(from.In(r.loc)),
	)
}

// SearchHolidays matches the query against names and date keys.
func (r *SQLiteRepo) SearchHolidays(ctx context.Context, query string) ([]domain.Holiday, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	return r.queryHolidays(ctx, `
		SELECT holiday_date, holiday_name FROM holidays
		WHERE holiday_name LIKE ? OR holiday_date LIKE ?
		ORDER BY holiday_date ASC`,
		like, like,
	)
}

func (r *SQLiteRepo) queryHolidays(ctx context.Context, query string, args ...any) ([]domain.Holiday, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Holiday
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return nil, err
		}
		d, err := parseDate(key, r.loc)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", key, err)
		}
		res = append(res, domain.Holiday{Date: d, Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// AddHoliday inserts or renames the holiday on h.Date.
func (r *SQLiteRepo) AddHoliday(ctx context.Context, h domain.Holiday) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO holidays (holiday_date, holiday_name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(holiday_date) DO UPDATE SET
			holiday_name = excluded.holiday_name,
			updated_at   = ?`,
		domain.DateKey(h.Date.In(r.loc)), holidayName(h), now.Unix(), toNullInt64(&now),
	)
	return err
}

// DeleteHoliday removes the holiday on date and reports whether one existed.
func (r *SQLiteRepo) DeleteHoliday(ctx context.Context, date time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE holiday_date = ?`, domain.DateKey(date.In(r.loc)))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountUsers returns the number of registered users.
func (r *SQLiteRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountHolidays returns the number of stored holidays.
func (r *SQLiteRepo) CountHolidays(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM holidays`).Scan(&n)
	return n, err
}

// ReplaceHolidays swaps the whole holiday table in one transaction.
func (r *SQLiteRepo) ReplaceHolidays(ctx context.Context, hs []domain.Holiday) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM holidays`); err != nil {
		_ = tx.Rollback()
		return err
	}
	now := time.Now().UTC().Unix()
	for _, h := range hs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO holidays (holiday_date, holiday_name, created_at)
			VALUES (?, ?, ?)`,
			domain.DateKey(h.Date.In(r.loc)), holidayName(h), now,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func holidayName(h domain.Holiday) string {
	if n := strings.TrimSpace(h.Name); n != "" {
		return n
	}
	return domain.DefaultHolidayName
}
