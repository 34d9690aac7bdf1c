package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/engagemate-api/internal/automation"
	"github.com/engagemate-api/internal/config"
	"github.com/engagemate-api/internal/generation"
	"github.com/engagemate-api/internal/mocks"
	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/repository"
	"github.com/engagemate-api/internal/service"
	"github.com/rs/zerolog"
)

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			PollInterval: 10 * time.Millisecond,
			MaxWorkers:   4,
		},
	}
}

type fixture struct {
	services *service.Services
	posts    *mocks.MockPostRepository
	comments *mocks.MockCommentRepository
	settings *mocks.MockSettingsRepository
	gen      *mocks.MockGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, posts, comments, settings := mocks.NewMockRepositories()
	gen := mocks.NewMockGenerator()
	services := service.NewServices(repos, gen, testConfig(), zerolog.Nop())
	if err := services.Settings.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	posts.Create(context.Background(), &models.Post{ID: "101", Content: "Consistency is key."})
	return &fixture{services: services, posts: posts, comments: comments, settings: settings, gen: gen}
}

func TestSettingsService_InitSeedsDefaults(t *testing.T) {
	repo := mocks.NewMockSettingsRepository()
	svc := service.NewSettingsService(repo, zerolog.Nop())

	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, key := range []string{repository.SettingsKeyRules, repository.SettingsKeyAssets, repository.SettingsKeyPersona} {
		if _, ok := repo.Values[key]; !ok {
			t.Errorf("Expected default %s to be stored", key)
		}
	}
	if len(svc.ListRules()) != 3 || len(svc.ListAssets()) != 2 {
		t.Errorf("Expected default rules and assets, got %d and %d", len(svc.ListRules()), len(svc.ListAssets()))
	}
}

func TestSettingsService_InitLoadsStoredBlobs(t *testing.T) {
	repo := mocks.NewMockSettingsRepository()
	ctx := context.Background()
	repo.Put(ctx, repository.SettingsKeyRules, []models.AutomationRule{{ID: "r1", Keyword: "deck", AssetID: "1", IsActive: true}})
	repo.Put(ctx, repository.SettingsKeyAssets, []models.Asset{})
	putsBefore := repo.PutCalls

	svc := service.NewSettingsService(repo, zerolog.Nop())
	if err := svc.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	rules := svc.ListRules()
	if len(rules) != 1 || rules[0].Keyword != "deck" {
		t.Errorf("Expected stored rules, got %+v", rules)
	}
	if len(svc.ListAssets()) != 0 {
		t.Errorf("Expected stored empty catalog to be kept, got %+v", svc.ListAssets())
	}
	if svc.GetPersona().Name != "Alex Creator" {
		t.Errorf("Expected default persona for missing blob, got %q", svc.GetPersona().Name)
	}
	if repo.PutCalls != putsBefore+1 {
		t.Errorf("Expected only the persona to be seeded, got %d writes", repo.PutCalls-putsBefore)
	}
}

func TestSettingsService_RuleLifecyclePersists(t *testing.T) {
	repo := mocks.NewMockSettingsRepository()
	svc := service.NewSettingsService(repo, zerolog.Nop())
	ctx := context.Background()
	svc.Init(ctx)

	rule, err := svc.CreateRule(ctx, models.AutomationRule{Keyword: "template", IsActive: true})
	if err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}
	if rule.ID == "" || rule.AssetID != "1" {
		t.Errorf("Expected generated id and first asset, got %+v", rule)
	}

	// Reload from the store to prove the blob was written
	reloaded := service.NewSettingsService(repo, zerolog.Nop())
	reloaded.Init(ctx)
	if len(reloaded.ListRules()) != 4 {
		t.Errorf("Expected 4 persisted rules, got %d", len(reloaded.ListRules()))
	}

	toggled, err := svc.ToggleRule(ctx, rule.ID)
	if err != nil || toggled.IsActive {
		t.Errorf("Expected rule to be deactivated, got %+v, %v", toggled, err)
	}

	if err := svc.DeleteRule(ctx, rule.ID); err != nil {
		t.Fatalf("DeleteRule failed: %v", err)
	}
	if err := svc.DeleteRule(ctx, rule.ID); !errors.Is(err, service.ErrRuleNotFound) {
		t.Errorf("Expected ErrRuleNotFound, got %v", err)
	}
}

func TestSettingsService_ValidationAndStoreErrors(t *testing.T) {
	repo := mocks.NewMockSettingsRepository()
	svc := service.NewSettingsService(repo, zerolog.Nop())
	ctx := context.Background()
	svc.Init(ctx)

	_, err := svc.CreateAsset(ctx, models.Asset{Name: "Deck", Kind: "VIDEO", URL: "nope"})
	var validationErr *service.ValidationFailedError
	if !errors.As(err, &validationErr) || len(validationErr.Errors) != 2 {
		t.Errorf("Expected kind and url validation errors, got %v", err)
	}

	repo.PutError = errors.New("db down")
	if _, err := svc.UpdatePersona(ctx, models.Persona{Name: "A", Title: "B", Bio: "C", WritingStyle: "D"}); err == nil {
		t.Errorf("Expected store error")
	}
	if svc.GetPersona().Name != "Alex Creator" {
		t.Errorf("Expected in-memory persona unchanged after failed save, got %q", svc.GetPersona().Name)
	}
}

func TestSettingsService_ReplaceWritesAllOrNothing(t *testing.T) {
	repo := mocks.NewMockSettingsRepository()
	svc := service.NewSettingsService(repo, zerolog.Nop())
	ctx := context.Background()
	if err := svc.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	next := service.DefaultConfig()
	next.Rules[0].Keyword = "playbook"
	next.Persona.Name = "Sam Builder"

	repo.KeyErrors = map[string]error{repository.SettingsKeyAssets: errors.New("db down")}
	if err := svc.Replace(ctx, next); err == nil {
		t.Fatalf("Expected Replace to fail")
	}

	var rules []models.AutomationRule
	if _, err := repo.Get(ctx, repository.SettingsKeyRules, &rules); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rules[0].Keyword != "guide" {
		t.Errorf("Expected stored rules unchanged after failed Replace, got %q", rules[0].Keyword)
	}
	var persona models.Persona
	repo.Get(ctx, repository.SettingsKeyPersona, &persona)
	if persona.Name != "Alex Creator" {
		t.Errorf("Expected stored persona unchanged, got %q", persona.Name)
	}
	if svc.ListRules()[0].Keyword != "guide" {
		t.Errorf("Expected in-memory rules unchanged, got %q", svc.ListRules()[0].Keyword)
	}

	repo.KeyErrors = nil
	if err := svc.Replace(ctx, next); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	repo.Get(ctx, repository.SettingsKeyRules, &rules)
	if rules[0].Keyword != "playbook" || svc.GetPersona().Name != "Sam Builder" {
		t.Errorf("Expected new configuration stored, got rules %+v persona %q", rules, svc.GetPersona().Name)
	}
}

func TestSettingsService_UpdateAssetKeepsDeliveryCount(t *testing.T) {
	svc := service.NewSettingsService(mocks.NewMockSettingsRepository(), zerolog.Nop())
	ctx := context.Background()
	svc.Init(ctx)

	updated, err := svc.UpdateAsset(ctx, "1", models.Asset{Name: "Guide v2", Kind: models.AssetKindPDF, URL: "https://example.com/v2.pdf", DeliveryCount: 0})
	if err != nil {
		t.Fatalf("UpdateAsset failed: %v", err)
	}
	if updated.DeliveryCount != 124 {
		t.Errorf("Expected delivery count 124, got %d", updated.DeliveryCount)
	}

	if err := svc.RecordDelivery(ctx, "1"); err != nil {
		t.Fatalf("RecordDelivery failed: %v", err)
	}
	if svc.ListAssets()[0].DeliveryCount != 125 {
		t.Errorf("Expected 125 deliveries, got %d", svc.ListAssets()[0].DeliveryCount)
	}
}

func TestSettingsService_SnapshotIsIsolated(t *testing.T) {
	svc := service.NewSettingsService(mocks.NewMockSettingsRepository(), zerolog.Nop())
	svc.Init(context.Background())

	snap := svc.Snapshot()
	snap.Rules[0].Keyword = "mutated"

	if svc.ListRules()[0].Keyword != "guide" {
		t.Errorf("Expected snapshot mutation not to leak, got %q", svc.ListRules()[0].Keyword)
	}
}

func TestPostService_SubmitCommentQueues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{
		Author: models.Author{Name: "Guest User"},
		Text:   "guide please",
	}, false)
	if err != nil {
		t.Fatalf("SubmitComment failed: %v", err)
	}

	if len(post.Comments) != 1 || post.Comments[0].Status != models.CommentStatusPending {
		t.Fatalf("Expected one pending comment, got %+v", post.Comments)
	}
	if post.Comments[0].Author.Handle != "@guest_user" {
		t.Errorf("Expected default handle, got %q", post.Comments[0].Author.Handle)
	}
	if replies, _ := f.gen.Calls(); replies != 0 {
		t.Errorf("Expected no generation before processing, got %d", replies)
	}
	if f.comments.Status(post.Comments[0].ID) != models.CommentStatusPending {
		t.Errorf("Expected stored pending comment")
	}
}

func TestPostService_SubmitCommentWait(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{
		Author: models.Author{Name: "Guest User"},
		Text:   "Can I get the GUIDE?",
	}, true)
	if err != nil {
		t.Fatalf("SubmitComment failed: %v", err)
	}

	got := post.Comments[0]
	if got.Status != models.CommentStatusCompleted || !got.DMSent {
		t.Fatalf("Expected completed comment with DM, got %+v", got)
	}
	if !strings.Contains(got.DMContent, "https://example.com/growth-guide.pdf") {
		t.Errorf("Expected DM to carry the asset URL, got %q", got.DMContent)
	}

	stored, _ := f.comments.GetByID(ctx, got.ID)
	if stored == nil || stored.Status != models.CommentStatusCompleted || stored.Reply != got.Reply {
		t.Errorf("Expected completed comment persisted, got %+v", stored)
	}

	if n := f.services.Settings.ListAssets()[0].DeliveryCount; n != 125 {
		t.Errorf("Expected delivery recorded, got %d", n)
	}
}

func TestPostService_SubmitCommentWaitCompletesAfterClientCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client disconnects while the reply is being generated
	f.gen.ReplyFunc = func(ctx context.Context, req generation.ReplyRequest) (string, error) {
		cancel()
		return "", ctx.Err()
	}
	f.gen.DMFunc = func(ctx context.Context, req generation.DirectMessageRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	post, err := f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{
		Author: models.Author{Name: "Guest User"},
		Text:   "guide please",
	}, true)
	if err != nil {
		t.Fatalf("SubmitComment failed: %v", err)
	}

	id := post.Comments[0].ID
	stored, _ := f.comments.GetByID(context.Background(), id)
	if stored == nil || stored.Status != models.CommentStatusCompleted {
		t.Fatalf("Expected comment completed despite cancellation, got %+v", stored)
	}
	if !stored.ReplyFallback || stored.Reply != automation.FallbackReply {
		t.Errorf("Expected fallback reply, got %q", stored.Reply)
	}
	if !stored.DMSent || !stored.DMFallback || !strings.Contains(stored.DMContent, "https://example.com/growth-guide.pdf") {
		t.Errorf("Expected fallback DM with asset URL, got %+v", stored)
	}
	if n := f.services.Settings.ListAssets()[0].DeliveryCount; n != 125 {
		t.Errorf("Expected delivery recorded, got %d", n)
	}
}

func TestPostService_ListPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.posts.Create(ctx, &models.Post{ID: "102", Content: "New calendar template", CreatedAt: time.Now().Add(time.Hour)})

	f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{Author: models.Author{Name: "A"}, Text: "nice"}, false)
	f.services.Post.SubmitComment(ctx, "102", &models.CommentDraft{Author: models.Author{Name: "B"}, Text: "calendar"}, false)
	f.services.Post.SubmitComment(ctx, "102", &models.CommentDraft{Author: models.Author{Name: "C"}, Text: "me too"}, false)

	posts, err := f.services.Post.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != "102" {
		t.Fatalf("Expected 2 posts with 102 first, got %+v", posts)
	}
	if len(posts[0].Comments) != 2 || len(posts[1].Comments) != 1 {
		t.Errorf("Expected 2 and 1 comments, got %d and %d", len(posts[0].Comments), len(posts[1].Comments))
	}

	f.comments.ListError = errors.New("db down")
	if _, err := f.services.Post.ListPosts(ctx); err == nil {
		t.Errorf("Expected comment load error to be returned")
	}
}

func TestPostService_SubmitCommentErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.services.Post.SubmitComment(ctx, "missing", &models.CommentDraft{Author: models.Author{Name: "A"}, Text: "hi"}, false)
	if !errors.Is(err, service.ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got %v", err)
	}

	_, err = f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{Text: ""}, false)
	var validationErr *service.ValidationFailedError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestPostService_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{Author: models.Author{Name: "A"}, Text: "guide"}, true)
	f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{Author: models.Author{Name: "B"}, Text: "nice"}, false)

	stats, err := f.services.Post.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Posts != 1 || stats.DMsSent != 1 {
		t.Errorf("Expected 1 post and 1 DM, got %+v", stats)
	}
	if stats.Comments[models.CommentStatusPending] != 1 || stats.Comments[models.CommentStatusCompleted] != 1 {
		t.Errorf("Unexpected status counts: %v", stats.Comments)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Condition not met within %v", timeout)
}

func TestCommentProcessor_CompletesPendingComments(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ids := make([]string, 0, 6)
	for _, text := range []string{"guide", "calendar", "hello", "pdf please", "nice", "GUIDE"} {
		post, err := f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{Author: models.Author{Name: "Guest"}, Text: text}, false)
		if err != nil {
			t.Fatalf("SubmitComment failed: %v", err)
		}
		ids = append(ids, post.Comments[0].ID)
	}

	go f.services.Processor.StartProcessor(ctx)
	defer f.services.Processor.StopProcessor()

	waitFor(t, 2*time.Second, func() bool {
		for _, id := range ids {
			if f.comments.Status(id) != models.CommentStatusCompleted {
				return false
			}
		}
		return true
	})

	replies, dms := f.gen.Calls()
	if replies != 6 {
		t.Errorf("Expected each comment processed once, got %d replies", replies)
	}
	if dms != 4 {
		t.Errorf("Expected 4 DMs, got %d", dms)
	}
}

func TestCommentProcessor_FailuresStillComplete(t *testing.T) {
	f := newFixture(t)
	f.gen.ReplyError = errors.New("provider down")
	f.gen.DMError = errors.New("provider down")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	post, _ := f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{Author: models.Author{Name: "Sarah"}, Text: "guide"}, false)
	id := post.Comments[0].ID

	go f.services.Processor.StartProcessor(ctx)
	defer f.services.Processor.StopProcessor()

	waitFor(t, 2*time.Second, func() bool { return f.comments.Status(id) == models.CommentStatusCompleted })

	stored, _ := f.comments.GetByID(ctx, id)
	if stored.Reply != automation.FallbackReply || !stored.ReplyFallback {
		t.Errorf("Expected fallback reply, got %q", stored.Reply)
	}
	if !stored.DMFallback || !strings.Contains(stored.DMContent, "https://example.com/growth-guide.pdf") {
		t.Errorf("Expected fallback DM with URL, got %q", stored.DMContent)
	}
}

func TestCommentProcessor_PanicCompletesWithFallback(t *testing.T) {
	f := newFixture(t)
	f.gen.ReplyFunc = func(ctx context.Context, req generation.ReplyRequest) (string, error) {
		panic("boom")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	post, _ := f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{Author: models.Author{Name: "Sarah"}, Text: "hello"}, false)
	id := post.Comments[0].ID

	go f.services.Processor.StartProcessor(ctx)
	defer f.services.Processor.StopProcessor()

	waitFor(t, 2*time.Second, func() bool { return f.comments.Status(id) == models.CommentStatusCompleted })

	stored, _ := f.comments.GetByID(ctx, id)
	if stored.Reply != automation.FallbackReply {
		t.Errorf("Expected fallback reply after panic, got %q", stored.Reply)
	}
}

func TestCommentProcessor_ClaimsAreExclusive(t *testing.T) {
	repos, posts, comments, _ := mocks.NewMockRepositories()
	gen := mocks.NewMockGenerator()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	posts.Create(ctx, &models.Post{ID: "101"})

	// Two processors over the same store, like two server replicas
	a := service.NewServices(repos, gen, testConfig(), zerolog.Nop())
	b := service.NewServices(repos, gen, testConfig(), zerolog.Nop())
	a.Settings.Init(ctx)
	b.Settings.Init(ctx)

	ids := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		post, err := a.Post.SubmitComment(ctx, "101", &models.CommentDraft{Author: models.Author{Name: "Guest"}, Text: "hello"}, false)
		if err != nil {
			t.Fatalf("SubmitComment failed: %v", err)
		}
		ids = append(ids, post.Comments[0].ID)
	}

	var wg sync.WaitGroup
	for _, svc := range []*service.Services{a, b} {
		wg.Add(1)
		go func(p service.CommentProcessor) {
			defer wg.Done()
			p.StartProcessor(ctx)
		}(svc.Processor)
	}

	waitFor(t, 3*time.Second, func() bool {
		for _, id := range ids {
			if comments.Status(id) != models.CommentStatusCompleted {
				return false
			}
		}
		return true
	})

	a.Processor.StopProcessor()
	b.Processor.StopProcessor()
	wg.Wait()

	if replies, _ := gen.Calls(); replies != 20 {
		t.Errorf("Expected each comment generated exactly once, got %d", replies)
	}
}

func TestCommentProcessor_StopWithoutStart(t *testing.T) {
	f := newFixture(t)
	// Must not block or panic
	f.services.Processor.StopProcessor()
}

func TestCommentProcessor_StopBeforeStartKeepsItStopped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.services.Post.SubmitComment(ctx, "101", &models.CommentDraft{Author: models.Author{Name: "Guest"}, Text: "guide"}, false)
	if err != nil {
		t.Fatalf("SubmitComment failed: %v", err)
	}

	f.services.Processor.StopProcessor()

	returned := make(chan struct{})
	go func() {
		f.services.Processor.StartProcessor(ctx)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatalf("Expected StartProcessor to return after StopProcessor")
	}

	if f.comments.Status(post.Comments[0].ID) != models.CommentStatusPending {
		t.Errorf("Expected comment to stay pending")
	}
	if replies, _ := f.gen.Calls(); replies != 0 {
		t.Errorf("Expected no generation, got %d", replies)
	}
}
