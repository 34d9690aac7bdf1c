// Package automation implements the comment automation pipeline: match a
// comment against keyword rules, generate a persona-styled reply and, when a
// rule's asset exists, a direct message delivering it.
package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/engagemate-api/internal/generation"
	"github.com/engagemate-api/internal/models"
	"github.com/rs/zerolog"
)

var (
	// ErrCommentNotFound is returned when the post has no comment with the given id
	ErrCommentNotFound = errors.New("comment not found")
	// ErrInvalidTransition is returned when a comment cannot enter processing
	ErrInvalidTransition = errors.New("invalid comment status transition")
)

// SnapshotFunc receives each post snapshot the pipeline produces together
// with the comment that changed. An error returned for the pending or
// processing snapshot stops the run before any text is generated.
type SnapshotFunc func(ctx context.Context, post models.Post, comment models.Comment) error

// Options tunes pipeline behavior
type Options struct {
	// ConcurrentGeneration runs reply and DM generation at the same time
	ConcurrentGeneration bool
}

// Outcome is the result of one generation request
type Outcome struct {
	Text         string
	FallbackUsed bool
	Err          error
}

// Result describes what the pipeline did for one comment
type Result struct {
	CommentID string
	Rule      *models.AutomationRule
	Asset     *models.Asset
	Reply     Outcome
	DM        *Outcome
	Duration  time.Duration
}

// DMSent reports whether a direct message was produced
func (r Result) DMSent() bool {
	return r.DM != nil
}

// Pipeline drives comments from pending to completed
type Pipeline struct {
	gen  generation.Generator
	opts Options
	log  zerolog.Logger
}

// NewPipeline creates a pipeline that generates text with gen
func NewPipeline(gen generation.Generator, opts Options, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		gen:  gen,
		opts: opts,
		log:  log.With().Str("component", "pipeline").Logger(),
	}
}

// SubmitComment prepends draft to the post as a pending comment, emits that
// snapshot, then processes it
func (p *Pipeline) SubmitComment(ctx context.Context, post models.Post, draft models.Comment,
	cfg models.AutomationConfig, emit SnapshotFunc) (models.Post, Result, error) {
	draft.Status = models.CommentStatusPending

	snapshot := post.Clone()
	snapshot.Comments = append([]models.Comment{draft}, snapshot.Comments...)

	if err := emitSnapshot(ctx, emit, snapshot, draft); err != nil {
		return snapshot, Result{CommentID: draft.ID}, err
	}

	return p.ProcessComment(ctx, snapshot, draft.ID, cfg, emit)
}

// ProcessComment runs the automation for one comment of post. Generation
// failures are replaced with fallback text and never returned; the returned
// error only reports a missing comment, a comment that is not pending, or a
// failing snapshot callback.
func (p *Pipeline) ProcessComment(ctx context.Context, post models.Post, commentID string,
	cfg models.AutomationConfig, emit SnapshotFunc) (models.Post, Result, error) {
	start := time.Now()
	result := Result{CommentID: commentID}

	idx := post.FindComment(commentID)
	if idx < 0 {
		return post, result, fmt.Errorf("%w: %s", ErrCommentNotFound, commentID)
	}
	comment := post.Comments[idx]
	if !comment.Status.CanTransition(models.CommentStatusProcessing) {
		return post, result, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition,
			comment.Status, models.CommentStatusProcessing)
	}

	rule, matched := FindMatchingRule(cfg.Rules, comment.Text)
	if matched {
		result.Rule = &rule
	}

	comment.Status = models.CommentStatusProcessing
	snapshot := replaceComment(post, idx, comment)
	if err := emitSnapshot(ctx, emit, snapshot, comment); err != nil {
		return snapshot, result, err
	}

	if matched {
		if asset, ok := FindAsset(cfg.Assets, rule.AssetID); ok {
			result.Asset = &asset
		} else {
			p.log.Warn().
				Str("comment_id", commentID).
				Str("rule_id", rule.ID).
				Str("asset_id", rule.AssetID).
				Msg("Matched rule references unknown asset, skipping DM")
		}
	}

	p.generate(ctx, snapshot.Content, comment, cfg.Persona, &result)

	comment.Status = models.CommentStatusCompleted
	comment.Reply = result.Reply.Text
	comment.ReplyFallback = result.Reply.FallbackUsed
	comment.RuleID = rule.ID
	comment.DMSent = result.DMSent()
	comment.DMContent = ""
	comment.DMFallback = false
	if result.DM != nil {
		comment.DMContent = result.DM.Text
		comment.DMFallback = result.DM.FallbackUsed
	}
	comment.UpdatedAt = time.Now()

	final := replaceComment(snapshot, idx, comment)
	result.Duration = time.Since(start)

	p.log.Info().
		Str("comment_id", commentID).
		Str("post_id", post.ID).
		Bool("matched", matched).
		Str("rule_id", rule.ID).
		Bool("dm_sent", comment.DMSent).
		Bool("reply_fallback", comment.ReplyFallback).
		Bool("dm_fallback", comment.DMFallback).
		Dur("duration", result.Duration).
		Msg("Comment automation completed")

	return final, result, emitSnapshot(ctx, emit, final, comment)
}

// generate fills result.Reply and, when an asset was resolved, result.DM
func (p *Pipeline) generate(ctx context.Context, postContent string, comment models.Comment,
	persona models.Persona, result *Result) {
	instruction := ""
	if result.Rule != nil {
		instruction = result.Rule.CustomInstruction
	}

	reply := func() {
		result.Reply = p.reply(ctx, generation.ReplyRequest{
			PostContent:       postContent,
			CommentText:       comment.Text,
			CommenterName:     comment.Author.Name,
			Persona:           persona,
			CustomInstruction: instruction,
		}, comment.ID)
	}

	if result.Asset == nil {
		reply()
		return
	}

	asset := *result.Asset
	dm := func() {
		out := p.directMessage(ctx, generation.DirectMessageRequest{
			CommenterName: comment.Author.Name,
			AssetName:     asset.Name,
			AssetURL:      asset.URL,
			Persona:       persona,
		}, comment.ID)
		result.DM = &out
	}

	if !p.opts.ConcurrentGeneration {
		reply()
		dm()
		return
	}

	// Each closure writes its own field of result
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		reply()
	}()
	go func() {
		defer wg.Done()
		dm()
	}()
	wg.Wait()
}

func (p *Pipeline) reply(ctx context.Context, req generation.ReplyRequest, commentID string) Outcome {
	text, err := p.gen.GenerateReply(ctx, req)
	if err != nil {
		p.log.Warn().Err(err).Str("comment_id", commentID).Msg("Reply generation failed, using fallback")
		return Outcome{Text: FallbackReply, FallbackUsed: true, Err: err}
	}
	return Outcome{Text: text}
}

func (p *Pipeline) directMessage(ctx context.Context, req generation.DirectMessageRequest, commentID string) Outcome {
	text, err := p.gen.GenerateDirectMessage(ctx, req)
	if err != nil {
		p.log.Warn().Err(err).Str("comment_id", commentID).Msg("DM generation failed, using fallback")
		return Outcome{
			Text:         FallbackDirectMessage(req.CommenterName, req.AssetName, req.AssetURL),
			FallbackUsed: true,
			Err:          err,
		}
	}
	return Outcome{Text: EnsureURL(text, req.AssetURL)}
}

func replaceComment(post models.Post, idx int, comment models.Comment) models.Post {
	out := post.Clone()
	out.Comments[idx] = comment
	return out
}

func emitSnapshot(ctx context.Context, emit SnapshotFunc, post models.Post, comment models.Comment) error {
	if emit == nil {
		return nil
	}
	return emit(ctx, post, comment)
}
