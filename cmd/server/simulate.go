package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/engagemate-api/internal/automation"
	"github.com/engagemate-api/internal/generation"
	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/seed"
	"github.com/engagemate-api/internal/validation"
	"github.com/engagemate-api/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the automation for one comment in memory and print every snapshot",
		Long: "Loads posts and configuration from a seed file, submits a comment to the given post " +
			"and prints the comment as JSON each time its status changes. No database is used.",
		Args: cobra.NoArgs,
		RunE: runSimulate,
	}

	cmd.Flags().String("file", "seeds/demo.yaml", "Seed file")
	cmd.Flags().String("post", "101", "Post id to comment on")
	cmd.Flags().String("text", "", "Comment text")
	cmd.Flags().String("name", "Guest User", "Commenter name")
	cmd.MarkFlagRequired("text")

	rootCmd.AddCommand(cmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	postID, _ := cmd.Flags().GetString("post")
	text, _ := cmd.Flags().GetString("text")
	name, _ := cmd.Flags().GetString("name")

	cfg, _, err := setup()
	if err != nil {
		return err
	}
	// Snapshots go to stdout, logs to stderr
	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format, os.Getenv("ENV"))

	f, err := seed.Load(path)
	if err != nil {
		return err
	}
	posts, err := f.BuildPosts(time.Now())
	if err != nil {
		return err
	}

	var post *models.Post
	for i := range posts {
		if posts[i].ID == postID {
			post = &posts[i]
			break
		}
	}
	if post == nil {
		return fmt.Errorf("post %s not found in %s", postID, path)
	}

	gen, err := generation.New(&cfg.Generation, log)
	if err != nil {
		return err
	}
	pipeline := automation.NewPipeline(gen, automation.Options{
		ConcurrentGeneration: cfg.Pipeline.ConcurrentGeneration,
	}, log)

	out := cmd.OutOrStdout()
	emit := func(ctx context.Context, _ models.Post, c models.Comment) error {
		b, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}

	now := time.Now()
	comment := models.Comment{
		ID:        uuid.New().String(),
		PostID:    post.ID,
		Author:    models.Author{ID: uuid.New().String(), Name: name, Handle: validation.DefaultHandle},
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	comment.AuthorID = comment.Author.ID

	_, result, err := pipeline.SubmitComment(cmd.Context(), *post, comment, f.Config(), emit)
	if err != nil {
		return err
	}

	log.Info().
		Bool("reply_fallback", result.Reply.FallbackUsed).
		Bool("dm_sent", result.DMSent()).
		Dur("duration", result.Duration).
		Msg("Simulation finished")
	return nil
}
