package mocks

import (
	"context"
	"sync"

	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/service"
)

// MockPostService is a mock implementation of PostService
type MockPostService struct {
	mu             sync.Mutex
	Posts          map[string]*models.Post
	CreateError    error
	SubmitFunc     func(ctx context.Context, postID string, draft *models.CommentDraft, wait bool) (*models.Post, error)
	SubmittedWaits []bool
	StatsResult    *models.Stats
}

// Verify interface compliance
var _ service.PostService = (*MockPostService)(nil)

func NewMockPostService() *MockPostService {
	return &MockPostService{
		Posts: make(map[string]*models.Post),
		StatsResult: &models.Stats{
			Comments: make(map[models.CommentStatus]int),
		},
	}
}

func (m *MockPostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]*models.Post, 0, len(m.Posts))
	for _, p := range m.Posts {
		posts = append(posts, p)
	}
	return posts, nil
}

func (m *MockPostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Posts[id]
	if !ok {
		return nil, service.ErrPostNotFound
	}
	return p, nil
}

func (m *MockPostService) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	post := &models.Post{
		ID:       "test-post-id",
		Content:  req.Content,
		Image:    req.Image,
		Likes:    req.Likes,
		Comments: []models.Comment{},
	}
	m.Posts[post.ID] = post
	return post, nil
}

func (m *MockPostService) SubmitComment(ctx context.Context, postID string, draft *models.CommentDraft, wait bool) (*models.Post, error) {
	m.mu.Lock()
	m.SubmittedWaits = append(m.SubmittedWaits, wait)
	m.mu.Unlock()

	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, postID, draft, wait)
	}

	post, err := m.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	status := models.CommentStatusPending
	if wait {
		status = models.CommentStatusCompleted
	}
	out := post.Clone()
	out.Comments = append([]models.Comment{{
		ID:     "test-comment-id",
		PostID: postID,
		Author: draft.Author,
		Text:   draft.Text,
		Status: status,
	}}, out.Comments...)
	return &out, nil
}

func (m *MockPostService) Stats(ctx context.Context) (*models.Stats, error) {
	return m.StatsResult, nil
}

// MockSettingsService is an in-memory SettingsService without validation
type MockSettingsService struct {
	mu          sync.Mutex
	Config      models.AutomationConfig
	Err         error
	Deliveries  []string
	ReplaceCall int
}

// Verify interface compliance
var _ service.SettingsService = (*MockSettingsService)(nil)

func NewMockSettingsService(cfg models.AutomationConfig) *MockSettingsService {
	return &MockSettingsService{Config: cfg.Clone()}
}

func (m *MockSettingsService) Init(ctx context.Context) error {
	return m.Err
}

func (m *MockSettingsService) Snapshot() models.AutomationConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Config.Clone()
}

func (m *MockSettingsService) Replace(ctx context.Context, cfg models.AutomationConfig) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplaceCall++
	m.Config = cfg.Clone()
	return nil
}

func (m *MockSettingsService) ListRules() []models.AutomationRule {
	return m.Snapshot().Rules
}

func (m *MockSettingsService) CreateRule(ctx context.Context, rule models.AutomationRule) (models.AutomationRule, error) {
	if m.Err != nil {
		return models.AutomationRule{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rule.ID == "" {
		rule.ID = "test-rule-id"
	}
	m.Config.Rules = append(m.Config.Rules, rule)
	return rule, nil
}

func (m *MockSettingsService) ruleIndex(id string) int {
	for i, r := range m.Config.Rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (m *MockSettingsService) UpdateRule(ctx context.Context, id string, rule models.AutomationRule) (models.AutomationRule, error) {
	if m.Err != nil {
		return models.AutomationRule{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.ruleIndex(id)
	if i < 0 {
		return models.AutomationRule{}, service.ErrRuleNotFound
	}
	rule.ID = id
	m.Config.Rules[i] = rule
	return rule, nil
}

func (m *MockSettingsService) ToggleRule(ctx context.Context, id string) (models.AutomationRule, error) {
	if m.Err != nil {
		return models.AutomationRule{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.ruleIndex(id)
	if i < 0 {
		return models.AutomationRule{}, service.ErrRuleNotFound
	}
	m.Config.Rules[i].IsActive = !m.Config.Rules[i].IsActive
	return m.Config.Rules[i], nil
}

func (m *MockSettingsService) DeleteRule(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.ruleIndex(id)
	if i < 0 {
		return service.ErrRuleNotFound
	}
	m.Config.Rules = append(m.Config.Rules[:i], m.Config.Rules[i+1:]...)
	return nil
}

func (m *MockSettingsService) ListAssets() []models.Asset {
	return m.Snapshot().Assets
}

func (m *MockSettingsService) assetIndex(id string) int {
	for i, a := range m.Config.Assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (m *MockSettingsService) CreateAsset(ctx context.Context, asset models.Asset) (models.Asset, error) {
	if m.Err != nil {
		return models.Asset{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if asset.ID == "" {
		asset.ID = "test-asset-id"
	}
	asset.DeliveryCount = 0
	m.Config.Assets = append(m.Config.Assets, asset)
	return asset, nil
}

func (m *MockSettingsService) UpdateAsset(ctx context.Context, id string, asset models.Asset) (models.Asset, error) {
	if m.Err != nil {
		return models.Asset{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.assetIndex(id)
	if i < 0 {
		return models.Asset{}, service.ErrAssetNotFound
	}
	asset.ID = id
	asset.DeliveryCount = m.Config.Assets[i].DeliveryCount
	m.Config.Assets[i] = asset
	return asset, nil
}

func (m *MockSettingsService) DeleteAsset(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.assetIndex(id)
	if i < 0 {
		return service.ErrAssetNotFound
	}
	m.Config.Assets = append(m.Config.Assets[:i], m.Config.Assets[i+1:]...)
	return nil
}

func (m *MockSettingsService) RecordDelivery(ctx context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deliveries = append(m.Deliveries, assetID)
	if i := m.assetIndex(assetID); i >= 0 {
		m.Config.Assets[i].DeliveryCount++
	}
	return nil
}

func (m *MockSettingsService) GetPersona() models.Persona {
	return m.Snapshot().Persona
}

func (m *MockSettingsService) UpdatePersona(ctx context.Context, persona models.Persona) (models.Persona, error) {
	if m.Err != nil {
		return models.Persona{}, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Config.Persona = persona
	return persona, nil
}

// MockCommentProcessor records start and stop calls
type MockCommentProcessor struct {
	mu      sync.Mutex
	Started bool
	Stopped bool
}

// Verify interface compliance
var _ service.CommentProcessor = (*MockCommentProcessor)(nil)

func (m *MockCommentProcessor) StartProcessor(ctx context.Context) {
	m.mu.Lock()
	m.Started = true
	m.mu.Unlock()
	<-ctx.Done()
}

func (m *MockCommentProcessor) StopProcessor() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stopped = true
}
