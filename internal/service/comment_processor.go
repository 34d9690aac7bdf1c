package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/engagemate-api/internal/automation"
	"github.com/engagemate-api/internal/config"
	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/repository"
	"github.com/rs/zerolog"
)

// commentProcessor is the concrete implementation of CommentProcessor
type commentProcessor struct {
	repos        *repository.Repositories
	pipeline     *automation.Pipeline
	settings     SettingsService
	recorder     *commentRecorder
	pollInterval time.Duration
	log          zerolog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	wg           sync.WaitGroup
	running      bool
	// stopped is set once StopProcessor ran; the processor never starts after it
	stopped bool
	mu      sync.Mutex
	// sem bounds how many comments are processed at once
	sem chan struct{}
}

// newCommentProcessor creates a processor whose pool is sized for I/O-bound
// generation calls unless cfg.MaxWorkers is set
func newCommentProcessor(repos *repository.Repositories, pipeline *automation.Pipeline, settings SettingsService,
	recorder *commentRecorder, cfg *config.PipelineConfig, log zerolog.Logger) *commentProcessor {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers == 0 {
		maxWorkers = runtime.NumCPU() * 4
		if maxWorkers < 4 {
			maxWorkers = 4
		}
		if maxWorkers > 32 {
			maxWorkers = 32
		}
	}

	log.Info().Int("max_workers", maxWorkers).Msg("Initializing comment processor worker pool")

	return &commentProcessor{
		repos:        repos,
		pipeline:     pipeline,
		settings:     settings,
		recorder:     recorder,
		pollInterval: cfg.PollInterval,
		log:          log.With().Str("service", "processor").Logger(),
		sem:          make(chan struct{}, maxWorkers),
	}
}

// StartProcessor polls for pending comments until ctx is cancelled or
// StopProcessor is called. It returns at once if StopProcessor already ran.
func (p *commentProcessor) StartProcessor(ctx context.Context) {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()
	defer close(done)

	p.log.Info().Dur("poll_interval", p.pollInterval).Msg("Comment processor started")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			p.log.Info().Msg("Comment processor stopping")
			return
		case <-ticker.C:
			p.processPendingComments()
		}
	}
}

// StopProcessor stops polling and waits for in-flight comments
func (p *commentProcessor) StopProcessor() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopped = true
	if !p.running {
		return
	}

	p.cancel()
	// The poll loop must exit before waiting so no worker is added mid-Wait
	<-p.done
	p.wg.Wait()
	p.running = false
	p.log.Info().Msg("Comment processor stopped")
}

// processPendingComments dispatches pending comments to the worker pool
func (p *commentProcessor) processPendingComments() {
	comments, err := p.repos.Comment.GetPending(p.ctx, cap(p.sem))
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to get pending comments")
		return
	}

	for _, comment := range comments {
		// Blocks while every worker is busy
		select {
		case p.sem <- struct{}{}:
		case <-p.ctx.Done():
			return
		}

		p.wg.Add(1)
		go func(c *models.Comment) {
			defer p.wg.Done()
			defer func() { <-p.sem }()

			defer func() {
				if r := recover(); r != nil {
					p.log.Error().
						Interface("panic", r).
						Str("comment_id", c.ID).
						Msg("Comment processing panicked - recovered")
					p.completeWithFallback(c)
				}
			}()
			p.processComment(c)
		}(comment)
	}
}

// processComment runs the pipeline for one stored pending comment
func (p *commentProcessor) processComment(c *models.Comment) {
	select {
	case <-p.ctx.Done():
		p.log.Warn().Str("comment_id", c.ID).Msg("Comment processing cancelled due to shutdown")
		return
	default:
	}

	post, err := loadPost(p.ctx, p.repos, c.PostID)
	if err != nil {
		p.log.Error().Err(err).Str("comment_id", c.ID).Str("post_id", c.PostID).Msg("Failed to load post")
		return
	}

	// Generation runs detached from shutdown so a claimed comment always completes
	ctx := context.WithoutCancel(p.ctx)
	_, result, err := p.pipeline.ProcessComment(ctx, *post, c.ID, p.settings.Snapshot(), p.recorder.claimOnProcessing)
	switch {
	case errors.Is(err, ErrCommentClaimed), errors.Is(err, automation.ErrInvalidTransition):
		p.log.Debug().Str("comment_id", c.ID).Msg("Comment already picked up")
		return
	case err != nil:
		p.log.Error().Err(err).Str("comment_id", c.ID).Msg("Comment processing failed")
		return
	}

	p.recorder.recordDelivery(ctx, result)
}

// completeWithFallback finishes a comment whose run panicked so it does not
// stay in processing
func (p *commentProcessor) completeWithFallback(c *models.Comment) {
	ctx := context.WithoutCancel(p.ctx)
	stored, err := p.repos.Comment.GetByID(ctx, c.ID)
	if err != nil || stored == nil || stored.Status != models.CommentStatusProcessing {
		return
	}

	stored.Status = models.CommentStatusCompleted
	stored.Reply = automation.FallbackReply
	stored.ReplyFallback = true
	if err := p.repos.Comment.Complete(ctx, stored); err != nil {
		p.log.Error().Err(err).Str("comment_id", c.ID).Msg("Failed to complete comment after panic")
	}
}
