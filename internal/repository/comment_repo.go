package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/engagemate-api/internal/database"
	"github.com/engagemate-api/internal/models"
	"github.com/lib/pq"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

const commentColumns = `id, post_id, author_id, author_name, author_handle, author_avatar, text,
	status, reply, dm_sent, dm_content, rule_id, reply_fallback, dm_fallback, created_at, updated_at`

// Create inserts a new comment
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, author_name, author_handle, author_avatar,
			text, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.Author.Name, comment.Author.Handle,
		comment.Author.Avatar, comment.Text, comment.Status, comment.CreatedAt, time.Now(),
	)
	return err
}

// BatchInsert inserts multiple comments, including completed ones, using PostgreSQL COPY
func (r *commentRepo) BatchInsert(ctx context.Context, comments []*models.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("comments",
		"id", "post_id", "author_id", "author_name", "author_handle", "author_avatar", "text",
		"status", "reply", "dm_sent", "dm_content", "rule_id", "reply_fallback", "dm_fallback",
		"created_at", "updated_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range comments {
		_, err := stmt.ExecContext(ctx,
			c.ID, c.PostID, c.AuthorID, c.Author.Name, c.Author.Handle, c.Author.Avatar, c.Text,
			string(c.Status), nullString(c.Reply), c.DMSent, nullString(c.DMContent), nullString(c.RuleID),
			c.ReplyFallback, c.DMFallback, c.CreatedAt, now,
		)
		if err != nil {
			return 0, err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(comments), nil
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPost retrieves the comments of a post, most recent first
func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}

	return comments, rows.Err()
}

// GetPending retrieves the oldest pending comments
func (r *commentRepo) GetPending(ctx context.Context, limit int) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE status = 'pending' ORDER BY created_at LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// MarkProcessing atomically moves a pending comment to processing
func (r *commentRepo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE comments SET status = 'processing', updated_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Complete stores the automation outcome of a processing comment
func (r *commentRepo) Complete(ctx context.Context, comment *models.Comment) error {
	query := `
		UPDATE comments SET
			status = 'completed', reply = $1, dm_sent = $2, dm_content = $3, rule_id = $4,
			reply_fallback = $5, dm_fallback = $6, updated_at = $7
		WHERE id = $8 AND status = 'processing'
	`
	result, err := r.db.ExecContext(ctx, query,
		nullString(comment.Reply), comment.DMSent, nullString(comment.DMContent), nullString(comment.RuleID),
		comment.ReplyFallback, comment.DMFallback, time.Now(), comment.ID,
	)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotProcessing
	}
	return nil
}

// Stats aggregates comment counters
func (r *commentRepo) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{Comments: map[models.CommentStatus]int{
		models.CommentStatusPending:    0,
		models.CommentStatusProcessing: 0,
		models.CommentStatusCompleted:  0,
	}}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM comments GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.Comments[models.CommentStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE dm_sent),
			COUNT(*) FILTER (WHERE reply_fallback),
			COUNT(*) FILTER (WHERE dm_fallback)
		FROM comments
	`
	err = r.db.QueryRowContext(ctx, query).Scan(&stats.DMsSent, &stats.ReplyFallbacks, &stats.DMFallbacks)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	var status string
	var reply, dmContent, ruleID sql.NullString

	err := row.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Author.Name, &c.Author.Handle, &c.Author.Avatar, &c.Text,
		&status, &reply, &c.DMSent, &dmContent, &ruleID, &c.ReplyFallback, &c.DMFallback,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Author.ID = c.AuthorID
	c.Status = models.CommentStatus(status)
	c.Reply = reply.String
	c.DMContent = dmContent.String
	c.RuleID = ruleID.String
	return &c, nil
}
