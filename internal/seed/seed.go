// Package seed loads demo fixtures (persona, assets, rules, posts) from YAML.
package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/repository"
	"github.com/engagemate-api/internal/service"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a seed file
type File struct {
	Persona models.Persona          `yaml:"persona"`
	Assets  []models.Asset          `yaml:"assets"`
	Rules   []models.AutomationRule `yaml:"rules"`
	Posts   []Post                  `yaml:"posts"`
}

// Post is a seeded post. Age is how long ago it was published.
type Post struct {
	ID       string    `yaml:"id"`
	Content  string    `yaml:"content"`
	Image    string    `yaml:"image"`
	Likes    int       `yaml:"likes"`
	Age      string    `yaml:"age"`
	Comments []Comment `yaml:"comments"`
}

// Comment is a seeded comment; an empty status means pending
type Comment struct {
	ID        string               `yaml:"id"`
	Author    models.Author        `yaml:"author"`
	Text      string               `yaml:"text"`
	Age       string               `yaml:"age"`
	Status    models.CommentStatus `yaml:"status"`
	Reply     string               `yaml:"reply"`
	DMSent    bool                 `yaml:"dm_sent"`
	DMContent string               `yaml:"dm_content"`
	RuleID    string               `yaml:"rule_id"`
}

// Load reads and decodes a seed file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Config returns the automation configuration described by the file
func (f *File) Config() models.AutomationConfig {
	return models.AutomationConfig{
		Rules:   f.Rules,
		Assets:  f.Assets,
		Persona: f.Persona,
	}.Clone()
}

// BuildPosts converts the seeded posts relative to now. Comments are
// returned most recent first.
func (f *File) BuildPosts(now time.Time) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(f.Posts))
	for _, sp := range f.Posts {
		created, err := ago(now, sp.Age)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", sp.ID, err)
		}

		post := models.Post{
			ID:        sp.ID,
			Content:   sp.Content,
			Image:     sp.Image,
			Likes:     sp.Likes,
			CreatedAt: created,
			Comments:  make([]models.Comment, 0, len(sp.Comments)),
		}

		for _, sc := range sp.Comments {
			at, err := ago(now, sc.Age)
			if err != nil {
				return nil, fmt.Errorf("comment %s: %w", sc.ID, err)
			}
			status := sc.Status
			if status == "" {
				status = models.CommentStatusPending
			}
			post.Comments = append(post.Comments, models.Comment{
				ID:        sc.ID,
				PostID:    sp.ID,
				AuthorID:  sc.Author.ID,
				Author:    sc.Author,
				Text:      sc.Text,
				Status:    status,
				Reply:     sc.Reply,
				DMSent:    sc.DMSent,
				DMContent: sc.DMContent,
				RuleID:    sc.RuleID,
				CreatedAt: at,
				UpdatedAt: at,
			})
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Apply replaces the stored configuration with the file's and inserts posts
// that do not exist yet
func Apply(ctx context.Context, f *File, settings service.SettingsService, repos *repository.Repositories, log zerolog.Logger) error {
	if err := settings.Replace(ctx, f.Config()); err != nil {
		return fmt.Errorf("failed to store configuration: %w", err)
	}

	posts, err := f.BuildPosts(time.Now())
	if err != nil {
		return err
	}

	for i := range posts {
		post := &posts[i]
		exists, err := repos.Post.Exists(ctx, post.ID)
		if err != nil {
			return err
		}
		if exists {
			log.Info().Str("post_id", post.ID).Msg("Post already present, skipping")
			continue
		}

		if err := repos.Post.Create(ctx, post); err != nil {
			return fmt.Errorf("failed to create post %s: %w", post.ID, err)
		}

		comments := make([]*models.Comment, 0, len(post.Comments))
		for j := range post.Comments {
			comments = append(comments, &post.Comments[j])
		}
		inserted, err := repos.Comment.BatchInsert(ctx, comments)
		if err != nil {
			return fmt.Errorf("failed to insert comments of post %s: %w", post.ID, err)
		}

		log.Info().
			Str("post_id", post.ID).
			Int("comments", inserted).
			Msg("Seeded post")
	}

	log.Info().
		Int("rules", len(f.Rules)).
		Int("assets", len(f.Assets)).
		Int("posts", len(f.Posts)).
		Msg("Seed applied")
	return nil
}

func ago(now time.Time, age string) (time.Time, error) {
	if age == "" {
		return now, nil
	}
	d, err := time.ParseDuration(age)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid age %q: %w", age, err)
	}
	return now.Add(-d), nil
}
