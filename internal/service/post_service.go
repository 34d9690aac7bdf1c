package service

import (
	"context"
	"fmt"
	"time"

	"github.com/engagemate-api/internal/automation"
	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/repository"
	"github.com/engagemate-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// postService is the concrete implementation of PostService
type postService struct {
	repos    *repository.Repositories
	pipeline *automation.Pipeline
	settings SettingsService
	recorder *commentRecorder
	log      zerolog.Logger
}

// newPostService creates a new PostService
func newPostService(repos *repository.Repositories, pipeline *automation.Pipeline, settings SettingsService,
	recorder *commentRecorder, log zerolog.Logger) *postService {
	return &postService{
		repos:    repos,
		pipeline: pipeline,
		settings: settings,
		recorder: recorder,
		log:      log.With().Str("service", "post").Logger(),
	}
}

// listCommentsParallelism bounds concurrent comment queries in ListPosts
const listCommentsParallelism = 8

// ListPosts returns every post with its comments
func (s *postService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.repos.Post.List(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listCommentsParallelism)
	for _, post := range posts {
		g.Go(func() error {
			comments, err := s.repos.Comment.ListByPost(gctx, post.ID)
			if err != nil {
				return fmt.Errorf("failed to load comments of post %s: %w", post.ID, err)
			}
			post.Comments = comments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns one post with its comments
func (s *postService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return loadPost(ctx, s.repos, id)
}

// CreatePost stores a new post
func (s *postService) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	if err := validationFailed(validation.NewValidator().ValidatePost(req)); err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        uuid.New().String(),
		Content:   req.Content,
		Image:     req.Image,
		Likes:     req.Likes,
		CreatedAt: time.Now(),
		Comments:  []models.Comment{},
	}
	if err := s.repos.Post.Create(ctx, post); err != nil {
		return nil, err
	}

	s.log.Info().Str("post_id", post.ID).Msg("Post created")
	return post, nil
}

// SubmitComment validates draft and either queues it for the processor or
// runs the automation inline
func (s *postService) SubmitComment(ctx context.Context, postID string, draft *models.CommentDraft, wait bool) (*models.Post, error) {
	if err := validationFailed(validation.NewValidator().ValidateCommentDraft(draft)); err != nil {
		return nil, err
	}

	post, err := loadPost(ctx, s.repos, postID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	author := draft.Author
	if author.ID == "" {
		author.ID = uuid.New().String()
	}
	comment := models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  author.ID,
		Author:    author,
		Text:      draft.Text,
		Status:    models.CommentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if !wait {
		if err := s.repos.Comment.Create(ctx, &comment); err != nil {
			return nil, err
		}
		snapshot := post.Clone()
		snapshot.Comments = append([]models.Comment{comment}, snapshot.Comments...)

		s.log.Info().Str("post_id", postID).Str("comment_id", comment.ID).Msg("Comment queued for automation")
		return &snapshot, nil
	}

	// Generation follows ctx and falls back when the client goes away; the
	// rows written by the recorder do not.
	final, result, err := s.pipeline.SubmitComment(ctx, *post, comment, s.settings.Snapshot(), s.recorder.insertOnProcessing)
	if err != nil {
		return nil, err
	}
	s.recorder.recordDelivery(context.WithoutCancel(ctx), result)

	return &final, nil
}

// Stats aggregates post and comment counters
func (s *postService) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := s.repos.Comment.Stats(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.repos.Post.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.Posts = posts
	return stats, nil
}
