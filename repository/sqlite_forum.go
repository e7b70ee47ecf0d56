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

type sqliteForumRepo struct {
	db database.TxQuerier
}

func NewSQLiteForumRepo(db database.TxQuerier) ForumRepository {
	return &sqliteForumRepo{db: db}
}

const forumSelect = `
	SELECT m.id, m.parent_id, m.topic_id, m.author_id, m.title, m.content,
	       m.is_approved, m.reply_count, m.created_at,
	       u.id, u.username, u.display_name, u.avatar_url, u.status, u.is_moderator
	FROM forum_messages m
	JOIN users u ON u.id = m.author_id`

func (r *sqliteForumRepo) Create(ctx context.Context, msg *models.ForumMessage) error {
	topicID := int64(0)
	if msg.ParentID != 0 {
		err := r.db.QueryRowContext(ctx,
			`SELECT topic_id FROM forum_messages WHERE id = ?`, msg.ParentID,
		).Scan(&topicID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: parent message", pkg.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get parent message: %w", err)
		}
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO forum_messages (parent_id, topic_id, author_id, title, content, is_approved)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		msg.ParentID, topicID, msg.AuthorID, msg.Title, msg.Content, msg.IsApproved,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create forum message: %w", err)
	}

	if msg.ParentID == 0 {
		topicID = msg.ID
		if _, err := r.db.ExecContext(ctx,
			`UPDATE forum_messages SET topic_id = id WHERE id = ?`, msg.ID,
		); err != nil {
			return fmt.Errorf("failed to set topic id: %w", err)
		}
	}
	msg.TopicID = topicID
	return nil
}

func (r *sqliteForumRepo) GetByID(ctx context.Context, id int64) (*models.ForumMessage, error) {
	row := r.db.QueryRowContext(ctx, forumSelect+` WHERE m.id = ?`, id)

	msg, err := scanForumMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get forum message: %w", err)
	}
	return msg, nil
}

func (r *sqliteForumRepo) IncrementReplyCount(ctx context.Context, topicID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE forum_messages SET reply_count = reply_count + 1 WHERE id = ?`, topicID)
	if err != nil {
		return fmt.Errorf("failed to increment reply count: %w", err)
	}
	return expectOneRow(result)
}

func (r *sqliteForumRepo) Approve(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE forum_messages SET is_approved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to approve forum message: %w", err)
	}
	return expectOneRow(result)
}

func (r *sqliteForumRepo) Search(ctx context.Context, c ForumCriteria, limit, offset int) ([]models.ForumMessage, error) {
	from, where, args, ok := buildForumFilter(c)
	if !ok {
		return []models.ForumMessage{}, nil
	}

	order := "ASC"
	if c.NewestFirst {
		order = "DESC"
	}

	query := forumSelect + from + where + ` ORDER BY m.id ` + order + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search forum messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.ForumMessage, 0, limit)
	for rows.Next() {
		msg, err := scanForumMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forum message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate forum messages: %w", err)
	}
	return messages, nil
}

func (r *sqliteForumRepo) Count(ctx context.Context, c ForumCriteria) (int, error) {
	from, where, args, ok := buildForumFilter(c)
	if !ok {
		return 0, nil
	}

	var count int
	query := `SELECT COUNT(*) FROM forum_messages m` + from + where
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count forum messages: %w", err)
	}
	return count, nil
}

// buildForumFilter returns the extra joins, the WHERE clause and its
// arguments. ok is false when the criteria can never match, e.g. a search
// text made only of FTS operators.
func buildForumFilter(c ForumCriteria) (from, where string, args []any, ok bool) {
	var conds []string

	if strings.TrimSpace(c.Text) != "" {
		match := sanitizeFTSQuery(c.Text)
		if match == "" {
			return "", "", nil, false
		}
		from = ` JOIN forum_messages_fts fts ON fts.rowid = m.id`
		conds = append(conds, `forum_messages_fts MATCH ?`)
		args = append(args, match)
	}
	if c.AuthorID != nil {
		conds = append(conds, `m.author_id = ?`)
		args = append(args, *c.AuthorID)
	}
	if c.ParentID != nil {
		conds = append(conds, `m.parent_id = ?`)
		args = append(args, *c.ParentID)
	}
	if c.MessageID != nil {
		conds = append(conds, `m.id = ?`)
		args = append(args, *c.MessageID)
	}
	if c.TopicOf != nil {
		conds = append(conds, `m.topic_id = (SELECT topic_id FROM forum_messages WHERE id = ?)`)
		args = append(args, *c.TopicOf)
	}
	if c.OnlyTopics {
		conds = append(conds, `m.parent_id = 0`)
	}
	if c.ApprovedOnly {
		conds = append(conds, `m.is_approved = 1`)
	}

	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, " AND ")
	}
	return from, where, args, true
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanForumMessage(s scanner) (*models.ForumMessage, error) {
	msg := &models.ForumMessage{}
	author := &models.User{}
	err := s.Scan(
		&msg.ID, &msg.ParentID, &msg.TopicID, &msg.AuthorID, &msg.Title, &msg.Content,
		&msg.IsApproved, &msg.ReplyCount, &msg.CreatedAt,
		&author.ID, &author.Username, &author.DisplayName, &author.AvatarURL, &author.Status, &author.IsModerator,
	)
	if err != nil {
		return nil, err
	}
	msg.Author = author
	return msg, nil
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
