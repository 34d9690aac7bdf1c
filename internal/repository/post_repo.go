package repository

import (
	"context"
	"database/sql"

	"github.com/engagemate-api/internal/database"
	"github.com/engagemate-api/internal/models"
)

// postRepo is the concrete implementation of PostRepository
type postRepo struct {
	db *database.DB
}

// NewPostRepo creates a new post repository
func NewPostRepo(db *database.DB) PostRepository {
	return &postRepo{db: db}
}

// Create inserts a new post
func (r *postRepo) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, content, image, likes, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.Content, nullString(post.Image), post.Likes, post.CreatedAt,
	)
	return err
}

// GetByID retrieves a post by ID, without its comments
func (r *postRepo) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT id, content, image, likes, created_at FROM posts WHERE id = $1`

	var post models.Post
	var image sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.Content, &image, &post.Likes, &post.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	post.Image = image.String
	return &post, nil
}

// List retrieves all posts, newest first
func (r *postRepo) List(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT id, content, image, likes, created_at FROM posts ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		var post models.Post
		var image sql.NullString
		if err := rows.Scan(&post.ID, &post.Content, &image, &post.Likes, &post.CreatedAt); err != nil {
			return nil, err
		}
		post.Image = image.String
		posts = append(posts, &post)
	}

	return posts, rows.Err()
}

// Exists checks if a post with the given ID exists
func (r *postRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// Count returns the total number of posts
func (r *postRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
