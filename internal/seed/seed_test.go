package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/engagemate-api/internal/mocks"
	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/seed"
	"github.com/engagemate-api/internal/service"
	"github.com/rs/zerolog"
)

func TestLoad_DemoFile(t *testing.T) {
	f, err := seed.Load(filepath.Join("..", "..", "seeds", "demo.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if f.Persona.Name != "Alex Creator" {
		t.Errorf("Expected persona Alex Creator, got %q", f.Persona.Name)
	}
	if len(f.Assets) != 2 || f.Assets[0].Kind != models.AssetKindPDF {
		t.Errorf("Expected 2 assets starting with a PDF, got %+v", f.Assets)
	}
	if len(f.Rules) != 3 || !f.Rules[0].IsActive {
		t.Errorf("Expected 3 active rules, got %+v", f.Rules)
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	posts, err := f.BuildPosts(now)
	if err != nil {
		t.Fatalf("BuildPosts failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
	if !posts[0].CreatedAt.Equal(now.Add(-2 * time.Hour)) {
		t.Errorf("Expected post 101 two hours old, got %v", posts[0].CreatedAt)
	}

	c := posts[0].Comments[0]
	if c.Status != models.CommentStatusCompleted || !c.DMSent || c.Author.Handle != "@sarahj" {
		t.Errorf("Unexpected seeded comment %+v", c)
	}
}

func TestBuildPosts_InvalidAge(t *testing.T) {
	f := &seed.File{Posts: []seed.Post{{ID: "1", Age: "yesterday"}}}
	if _, err := f.BuildPosts(time.Now()); err == nil {
		t.Errorf("Expected invalid age to fail")
	}
}

func TestBuildPosts_DefaultsToPending(t *testing.T) {
	f := &seed.File{Posts: []seed.Post{{ID: "1", Comments: []seed.Comment{{ID: "c", Text: "guide"}}}}}
	posts, err := f.BuildPosts(time.Now())
	if err != nil {
		t.Fatalf("BuildPosts failed: %v", err)
	}
	if posts[0].Comments[0].Status != models.CommentStatusPending {
		t.Errorf("Expected pending, got %s", posts[0].Comments[0].Status)
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	content := `
persona:
  name: Sam
  title: Founder
  bio: Building in public.
  writing_style: Short.
assets:
  - id: a1
    name: Deck
    kind: LINK
    url: https://example.com/deck
rules:
  - id: r1
    keyword: deck
    asset_id: a1
    is_active: true
posts:
  - id: p1
    content: New deck is out
    comments:
      - id: c1
        author: {name: Guest, handle: "@guest"}
        text: deck please
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := seed.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	repos, posts, comments, _ := mocks.NewMockRepositories()
	settings := service.NewSettingsService(repos.Settings, zerolog.Nop())
	ctx := context.Background()

	if err := seed.Apply(ctx, f, settings, repos, zerolog.Nop()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if settings.GetPersona().Name != "Sam" || len(settings.ListRules()) != 1 {
		t.Errorf("Expected seeded configuration, got %+v", settings.Snapshot())
	}
	if len(posts.Posts) != 1 || comments.Status("c1") != models.CommentStatusPending {
		t.Errorf("Expected post and pending comment to be stored")
	}

	// Applying twice keeps existing posts
	if err := seed.Apply(ctx, f, settings, repos, zerolog.Nop()); err != nil {
		t.Fatalf("Second Apply failed: %v", err)
	}
	if len(comments.Comments) != 1 {
		t.Errorf("Expected comments not to be duplicated, got %d", len(comments.Comments))
	}
}

func TestApply_InvalidConfig(t *testing.T) {
	repos, _, _, _ := mocks.NewMockRepositories()
	settings := service.NewSettingsService(repos.Settings, zerolog.Nop())

	f := &seed.File{Rules: []models.AutomationRule{{ID: "r1"}}}
	if err := seed.Apply(context.Background(), f, settings, repos, zerolog.Nop()); err == nil {
		t.Errorf("Expected invalid configuration to be rejected")
	}
}
