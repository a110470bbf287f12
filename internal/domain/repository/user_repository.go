package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"studentms/internal/common"
	"studentms/internal/domain/model"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type ListUsersFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]model.User, int, error)
	UpdateProfile(ctx context.Context, id string, profile model.Profile) error
	UpdatePreferences(ctx context.Context, id string, prefs model.Preferences) error
	UpdatePassword(ctx context.Context, id, newHash string, history model.PasswordHistory, changedAt time.Time) error
	RecordLoginFailure(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, *time.Time, error)
	ResetLoginFailures(ctx context.Context, id string, lastLogin time.Time) error
	Ban(ctx context.Context, id, bannedBy, reason string, at time.Time) error
	Unban(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, recentSince time.Time) (*model.UserStats, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, role, profile, preferences,
	password_changed_at, password_history, failed_login_attempts, locked_until,
	two_factor_enabled, two_factor_secret, last_login,
	is_banned, banned_at, banned_by, ban_reason, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	user := &model.User{}
	var twoFactorSecret, banReason sql.NullString
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Role,
		&user.Profile, &user.Preferences,
		&user.PasswordChangedAt, &user.PasswordHistory, &user.FailedLoginAttempts, &user.LockedUntil,
		&user.TwoFactorEnabled, &twoFactorSecret, &user.LastLogin,
		&user.IsBanned, &user.BannedAt, &user.BannedBy, &banReason, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.TwoFactorSecret = twoFactorSecret.String
	user.BanReason = banReason.String
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, email, hashed_password, role, profile, preferences)
	          VALUES ($1, $2, lower($3), $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword, user.Role, user.Profile, user.Preferences)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return common.NewError(400, common.CodeDuplicateEmail, "User with this email already exists")
			}
			return common.NewError(400, common.CodeDuplicateUsername, "User with this username already exists")
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context, filter ListUsersFilter) ([]model.User, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if filter.Role != "" {
		where = append(where, fmt.Sprintf("role = $%d", idx))
		args = append(args, filter.Role)
		idx++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf(
			"(username ILIKE $%d OR email ILIKE $%d OR profile->>'first_name' ILIKE $%d OR profile->>'last_name' ILIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, "%"+filter.Search+"%")
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM users` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List count: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + whereClause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *pgUserRepository) UpdateProfile(ctx context.Context, id string, profile model.Profile) error {
	query := `UPDATE users SET profile = $2, updated_at = now() WHERE id = $1`
	return r.execExpectingMatch(ctx, query, id, profile)
}

func (r *pgUserRepository) UpdatePreferences(ctx context.Context, id string, prefs model.Preferences) error {
	query := `UPDATE users SET preferences = $2, updated_at = now() WHERE id = $1`
	return r.execExpectingMatch(ctx, query, id, prefs)
}

// UpdatePassword persists the new hash together with the already-updated history and
// the changed-at timestamp in a single statement.
func (r *pgUserRepository) UpdatePassword(ctx context.Context, id, newHash string, history model.PasswordHistory, changedAt time.Time) error {
	query := `UPDATE users SET hashed_password = $2, password_history = $3,
	          password_changed_at = $4, updated_at = now() WHERE id = $1`
	return r.execExpectingMatch(ctx, query, id, newHash, history, changedAt)
}

// RecordLoginFailure is an atomic read-modify-write: the increment and the conditional
// lock happen in one statement so concurrent failed attempts cannot lose updates.
func (r *pgUserRepository) RecordLoginFailure(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, *time.Time, error) {
	query := `UPDATE users SET
	            failed_login_attempts = failed_login_attempts + 1,
	            locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3 ELSE locked_until END,
	            updated_at = now()
	          WHERE id = $1
	          RETURNING failed_login_attempts, locked_until`
	var attempts int
	var lockedUntil *time.Time
	err := r.db.QueryRowContext(ctx, query, id, threshold, lockUntil).Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, common.ErrNotFound
		}
		return 0, nil, fmt.Errorf("pgUserRepository.RecordLoginFailure: %w", err)
	}
	return attempts, lockedUntil, nil
}

func (r *pgUserRepository) ResetLoginFailures(ctx context.Context, id string, lastLogin time.Time) error {
	query := `UPDATE users SET failed_login_attempts = 0, locked_until = NULL,
	          last_login = $2, updated_at = now() WHERE id = $1`
	return r.execExpectingMatch(ctx, query, id, lastLogin)
}

func (r *pgUserRepository) Ban(ctx context.Context, id, bannedBy, reason string, at time.Time) error {
	query := `UPDATE users SET is_banned = TRUE, banned_at = $2, banned_by = $3,
	          ban_reason = $4, updated_at = now() WHERE id = $1`
	return r.execExpectingMatch(ctx, query, id, at, bannedBy, reason)
}

func (r *pgUserRepository) Unban(ctx context.Context, id string) error {
	query := `UPDATE users SET is_banned = FALSE, banned_at = NULL, banned_by = NULL,
	          ban_reason = NULL, updated_at = now() WHERE id = $1`
	return r.execExpectingMatch(ctx, query, id)
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) error {
	return r.execExpectingMatch(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *pgUserRepository) Stats(ctx context.Context, recentSince time.Time) (*model.UserStats, error) {
	query := `SELECT
	            count(*),
	            count(*) FILTER (WHERE role = 'Admin'),
	            count(*) FILTER (WHERE role = 'Faculty'),
	            count(*) FILTER (WHERE is_banned),
	            count(*) FILTER (WHERE NOT is_banned),
	            count(*) FILTER (WHERE created_at >= $1)
	          FROM users`
	stats := &model.UserStats{}
	err := r.db.QueryRowContext(ctx, query, recentSince).Scan(
		&stats.TotalUsers, &stats.TotalAdmins, &stats.TotalFaculty,
		&stats.BannedUsers, &stats.ActiveUsers, &stats.RecentUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.Stats: %w", err)
	}
	return stats, nil
}

func (r *pgUserRepository) execExpectingMatch(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgUserRepository exec: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
