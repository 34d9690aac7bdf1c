package repository

import (
	"context"
	"errors"

	"github.com/engagemate-api/internal/database"
	"github.com/engagemate-api/internal/models"
)

// Settings keys of the configuration mirror
const (
	SettingsKeyRules   = "rules"
	SettingsKeyAssets  = "assets"
	SettingsKeyPersona = "userProfile"
)

// ErrNotProcessing is returned when completing a comment that is not processing
var ErrNotProcessing = errors.New("comment is not processing")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	BatchInsert(ctx context.Context, comments []*models.Comment) (int, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	GetPending(ctx context.Context, limit int) ([]*models.Comment, error)
	MarkProcessing(ctx context.Context, id string) (bool, error)
	Complete(ctx context.Context, comment *models.Comment) error
	Stats(ctx context.Context) (*models.Stats, error)
}

// SettingsRepository stores JSON blobs by key
type SettingsRepository interface {
	// Get decodes the blob stored under key into dest and reports whether it existed
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Put(ctx context.Context, key string, value interface{}) error
	// PutAll stores every entry of values or none of them
	PutAll(ctx context.Context, values map[string]interface{}) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Post     PostRepository
	Comment  CommentRepository
	Settings SettingsRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Post:     NewPostRepo(db),
		Comment:  NewCommentRepo(db),
		Settings: NewSettingsRepo(db),
	}
}
