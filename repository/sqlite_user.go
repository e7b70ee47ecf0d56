package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/akinalp/forum/database"
	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg"
)

type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo returns the SQLite UserRepository. db may be a *sql.DB
// or a *sql.Tx.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const userColumns = `id, username, display_name, avatar_url, password_hash, status,
	is_moderator, language, post_count, login_count, last_login_at, created_at`

func scanUser(s scanner) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime
	err := s.Scan(
		&user.ID, &user.Username, &user.DisplayName, &user.AvatarURL, &user.PasswordHash, &user.Status,
		&user.IsModerator, &user.Language, &user.PostCount, &user.LoginCount, &lastLogin, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return user, nil
}

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.Status == "" {
		user.Status = models.UserStatusOffline
	}
	if user.Language == "" {
		user.Language = "en"
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, display_name, avatar_url, password_hash, status, is_moderator, language)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		user.Username, user.DisplayName, user.AvatarURL, user.PasswordHash,
		user.Status, user.IsModerator, user.Language,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username already taken", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetByUsername matches case-insensitively (the column is COLLATE NOCASE).
func (r *sqliteUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

func (r *sqliteUserRepo) UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET status = ? WHERE id = ?`, status, userID)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return expectOneRow(result)
}

func (r *sqliteUserRepo) ResetStatuses(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = ? WHERE status <> ?`, models.UserStatusOffline, models.UserStatusOffline,
	); err != nil {
		return fmt.Errorf("failed to reset statuses: %w", err)
	}
	return nil
}

func (r *sqliteUserRepo) SetModerator(ctx context.Context, userID int64, moderator bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET is_moderator = ? WHERE id = ?`, moderator, userID)
	if err != nil {
		return fmt.Errorf("failed to update moderator flag: %w", err)
	}
	return expectOneRow(result)
}

func (r *sqliteUserRepo) RecordLogin(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO user_logins (user_id) VALUES (?)`, userID,
	); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET login_count = login_count + 1, last_login_at = CURRENT_TIMESTAMP
		WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to update login count: %w", err)
	}
	return expectOneRow(result)
}

func (r *sqliteUserRepo) IncrementPostCount(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET post_count = post_count + 1 WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to update post count: %w", err)
	}
	return expectOneRow(result)
}

func buildUserFilter(c UserCriteria) (string, []any) {
	var conds []string
	var args []any

	if text := strings.TrimSpace(c.Text); text != "" {
		pattern := "%" + escapeLike(text) + "%"
		conds = append(conds, `(username LIKE ? ESCAPE '\' OR display_name LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if c.OnlyOnline {
		conds = append(conds, `status = ?`)
		args = append(args, models.UserStatusOnline)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

func (r *sqliteUserRepo) Search(ctx context.Context, c UserCriteria, limit, offset int) ([]models.User, error) {
	where, args := buildUserFilter(c)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users`+where+` ORDER BY username COLLATE NOCASE ASC LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.PasswordHash = ""
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *sqliteUserRepo) CountMatching(ctx context.Context, c UserCriteria) (int, error) {
	where, args := buildUserFilter(c)

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *sqliteUserRepo) TopByPosts(ctx context.Context, sinceDays, limit int) ([]models.UserStat, error) {
	if sinceDays <= 0 {
		return r.topStats(ctx, `
			SELECT id, username, display_name, post_count
			FROM users WHERE post_count > 0
			ORDER BY post_count DESC, id ASC LIMIT ?`, limit)
	}
	return r.topStats(ctx, `
		SELECT u.id, u.username, u.display_name, COUNT(m.id) AS score
		FROM users u
		JOIN forum_messages m ON m.author_id = u.id
		WHERE m.created_at >= datetime('now', ?)
		GROUP BY u.id
		ORDER BY score DESC, u.id ASC LIMIT ?`, sinceModifier(sinceDays), limit)
}

func (r *sqliteUserRepo) TopByLogins(ctx context.Context, sinceDays, limit int) ([]models.UserStat, error) {
	if sinceDays <= 0 {
		return r.topStats(ctx, `
			SELECT id, username, display_name, login_count
			FROM users WHERE login_count > 0
			ORDER BY login_count DESC, id ASC LIMIT ?`, limit)
	}
	return r.topStats(ctx, `
		SELECT u.id, u.username, u.display_name, COUNT(l.id) AS score
		FROM users u
		JOIN user_logins l ON l.user_id = u.id
		WHERE l.created_at >= datetime('now', ?)
		GROUP BY u.id
		ORDER BY score DESC, u.id ASC LIMIT ?`, sinceModifier(sinceDays), limit)
}

func (r *sqliteUserRepo) topStats(ctx context.Context, query string, args ...any) ([]models.UserStat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to rank users: %w", err)
	}
	defer rows.Close()

	stats := []models.UserStat{}
	for rows.Next() {
		var s models.UserStat
		if err := rows.Scan(&s.UserID, &s.Username, &s.DisplayName, &s.Score); err != nil {
			return nil, fmt.Errorf("failed to scan user stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user stats: %w", err)
	}
	return stats, nil
}

func (r *sqliteUserRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// sinceModifier builds the datetime() modifier for "the last n days".
func sinceModifier(days int) string {
	return fmt.Sprintf("-%d days", days)
}

// isUniqueViolation reports a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
