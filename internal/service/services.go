package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/engagemate-api/internal/automation"
	"github.com/engagemate-api/internal/config"
	"github.com/engagemate-api/internal/generation"
	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/repository"
	"github.com/engagemate-api/internal/validation"
	"github.com/rs/zerolog"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrRuleNotFound  = errors.New("rule not found")
	ErrAssetNotFound = errors.New("asset not found")
	// ErrCommentClaimed means another worker already moved the comment to processing
	ErrCommentClaimed = errors.New("comment already claimed")
)

// ValidationFailedError carries field errors for a rejected request
type ValidationFailedError struct {
	Errors []validation.ValidationError
}

func (e *ValidationFailedError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		fields = append(fields, err.Field+": "+err.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, "; "))
}

func validationFailed(errs []validation.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationFailedError{Errors: errs}
}

// PostService defines the interface for posts and comment submission
type PostService interface {
	ListPosts(ctx context.Context) ([]*models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error)
	// SubmitComment stores draft as a pending comment. With wait set the
	// automation runs before returning and the completed post is returned.
	SubmitComment(ctx context.Context, postID string, draft *models.CommentDraft, wait bool) (*models.Post, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// SettingsService owns the rule set, asset catalog and persona
type SettingsService interface {
	Init(ctx context.Context) error
	Snapshot() models.AutomationConfig
	Replace(ctx context.Context, cfg models.AutomationConfig) error

	ListRules() []models.AutomationRule
	CreateRule(ctx context.Context, rule models.AutomationRule) (models.AutomationRule, error)
	UpdateRule(ctx context.Context, id string, rule models.AutomationRule) (models.AutomationRule, error)
	ToggleRule(ctx context.Context, id string) (models.AutomationRule, error)
	DeleteRule(ctx context.Context, id string) error

	ListAssets() []models.Asset
	CreateAsset(ctx context.Context, asset models.Asset) (models.Asset, error)
	UpdateAsset(ctx context.Context, id string, asset models.Asset) (models.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	RecordDelivery(ctx context.Context, assetID string) error

	GetPersona() models.Persona
	UpdatePersona(ctx context.Context, persona models.Persona) (models.Persona, error)
}

// CommentProcessor runs the automation for pending comments in the background
type CommentProcessor interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
}

// Services holds all service interfaces
type Services struct {
	Post      PostService
	Settings  SettingsService
	Processor CommentProcessor
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, gen generation.Generator, cfg *config.Config, log zerolog.Logger) *Services {
	pipeline := automation.NewPipeline(gen, automation.Options{
		ConcurrentGeneration: cfg.Pipeline.ConcurrentGeneration,
	}, log)

	settingsSvc := newSettingsService(repos.Settings, log)
	recorder := newCommentRecorder(repos, settingsSvc, log)

	return &Services{
		Post:      newPostService(repos, pipeline, settingsSvc, recorder, log),
		Settings:  settingsSvc,
		Processor: newCommentProcessor(repos, pipeline, settingsSvc, recorder, &cfg.Pipeline, log),
	}
}
