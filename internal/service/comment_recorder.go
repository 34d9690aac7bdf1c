package service

import (
	"context"
	"fmt"

	"github.com/engagemate-api/internal/automation"
	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/repository"
	"github.com/rs/zerolog"
)

// commentRecorder persists the snapshots the pipeline emits
type commentRecorder struct {
	repos    *repository.Repositories
	settings SettingsService
	log      zerolog.Logger
}

func newCommentRecorder(repos *repository.Repositories, settings SettingsService, log zerolog.Logger) *commentRecorder {
	return &commentRecorder{
		repos:    repos,
		settings: settings,
		log:      log.With().Str("component", "comment_recorder").Logger(),
	}
}

// insertOnProcessing stores a comment that was never persisted as pending:
// the row is created when the pipeline moves it to processing. Writes ignore
// cancellation of ctx so a comment that reached processing is always completed.
func (r *commentRecorder) insertOnProcessing(ctx context.Context, _ models.Post, c models.Comment) error {
	ctx = context.WithoutCancel(ctx)
	switch c.Status {
	case models.CommentStatusProcessing:
		return r.repos.Comment.Create(ctx, &c)
	case models.CommentStatusCompleted:
		return r.repos.Comment.Complete(ctx, &c)
	}
	return nil
}

// claimOnProcessing moves an already stored pending comment to processing.
// Losing the claim aborts the run with ErrCommentClaimed.
func (r *commentRecorder) claimOnProcessing(ctx context.Context, _ models.Post, c models.Comment) error {
	switch c.Status {
	case models.CommentStatusProcessing:
		claimed, err := r.repos.Comment.MarkProcessing(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("failed to claim comment %s: %w", c.ID, err)
		}
		if !claimed {
			return ErrCommentClaimed
		}
	case models.CommentStatusCompleted:
		return r.repos.Comment.Complete(ctx, &c)
	}
	return nil
}

// recordDelivery bumps the delivered asset's counter after a DM was produced
func (r *commentRecorder) recordDelivery(ctx context.Context, result automation.Result) {
	if !result.DMSent() || result.Asset == nil {
		return
	}
	if err := r.settings.RecordDelivery(ctx, result.Asset.ID); err != nil {
		r.log.Warn().Err(err).
			Str("comment_id", result.CommentID).
			Str("asset_id", result.Asset.ID).
			Msg("Failed to record asset delivery")
	}
}

// loadPost reads a post together with its comments, most recent first
func loadPost(ctx context.Context, repos *repository.Repositories, id string) (*models.Post, error) {
	post, err := repos.Post.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comments, err := repos.Comment.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return post, nil
}
