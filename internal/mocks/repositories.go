package mocks

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/repository"
)

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	mu          sync.Mutex
	Posts       map[string]*models.Post
	InsertError error
	GetError    error
}

var _ repository.PostRepository = (*MockPostRepository)(nil)

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		Posts: make(map[string]*models.Post),
	}
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	p := *post
	p.Comments = nil
	m.Posts[post.ID] = &p
	return nil
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	p, ok := m.Posts[id]
	if !ok {
		return nil, nil
	}
	out := *p
	return &out, nil
}

func (m *MockPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]*models.Post, 0, len(m.Posts))
	for _, p := range m.Posts {
		out := *p
		posts = append(posts, &out)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (m *MockPostRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.Posts[id]
	return exists, nil
}

func (m *MockPostRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Posts), nil
}

// MockCommentRepository is a mock implementation of CommentRepository.
// MarkProcessing and Complete enforce the same status guards as the
// PostgreSQL implementation, and writes fail on a done context like
// database/sql does.
type MockCommentRepository struct {
	mu                  sync.Mutex
	Comments            map[string]*models.Comment
	InsertError         error
	ListError           error
	CompleteError       error
	MarkProcessingCalls int
	CompleteCalls       int
	// seq orders comments that share a timestamp by insertion
	seq   int
	order map[string]int
}

var _ repository.CommentRepository = (*MockCommentRepository)(nil)

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[string]*models.Comment),
		order:    make(map[string]int),
	}
}

func (m *MockCommentRepository) put(c *models.Comment) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	stored := *c
	m.Comments[c.ID] = &stored
	m.seq++
	m.order[c.ID] = m.seq
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.InsertError != nil {
		return m.InsertError
	}
	m.put(comment)
	return nil
}

func (m *MockCommentRepository) BatchInsert(ctx context.Context, comments []*models.Comment) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	for _, c := range comments {
		m.put(c)
	}
	return len(comments), nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	comments := make([]models.Comment, 0)
	for _, c := range m.Comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return m.order[comments[i].ID] > m.order[comments[j].ID]
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (m *MockCommentRepository) GetPending(ctx context.Context, limit int) ([]*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending := make([]*models.Comment, 0)
	for _, c := range m.Comments {
		if c.Status == models.CommentStatusPending {
			out := *c
			pending = append(pending, &out)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return m.order[pending[i].ID] < m.order[pending[j].ID]
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m *MockCommentRepository) MarkProcessing(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkProcessingCalls++
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c, ok := m.Comments[id]
	if !ok || c.Status != models.CommentStatusPending {
		return false, nil
	}
	c.Status = models.CommentStatusProcessing
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockCommentRepository) Complete(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.CompleteError != nil {
		return m.CompleteError
	}
	c, ok := m.Comments[comment.ID]
	if !ok || c.Status != models.CommentStatusProcessing {
		return repository.ErrNotProcessing
	}
	c.Status = models.CommentStatusCompleted
	c.Reply = comment.Reply
	c.DMSent = comment.DMSent
	c.DMContent = comment.DMContent
	c.RuleID = comment.RuleID
	c.ReplyFallback = comment.ReplyFallback
	c.DMFallback = comment.DMFallback
	c.UpdatedAt = time.Now()
	return nil
}

func (m *MockCommentRepository) Stats(ctx context.Context) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.Stats{Comments: make(map[models.CommentStatus]int)}
	for _, c := range m.Comments {
		stats.Comments[c.Status]++
		if c.DMSent {
			stats.DMsSent++
		}
		if c.ReplyFallback {
			stats.ReplyFallbacks++
		}
		if c.DMFallback {
			stats.DMFallbacks++
		}
	}
	return stats, nil
}

// Status returns the stored status of a comment, or "" if unknown
func (m *MockCommentRepository) Status(id string) models.CommentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Comments[id]; ok {
		return c.Status
	}
	return ""
}

// MockSettingsRepository is a mock implementation of SettingsRepository.
// Values are stored JSON-encoded like the real table.
type MockSettingsRepository struct {
	mu       sync.Mutex
	Values   map[string][]byte
	PutError error
	// KeyErrors fails writes of individual keys
	KeyErrors map[string]error
	PutCalls  int
}

var _ repository.SettingsRepository = (*MockSettingsRepository)(nil)

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		Values: make(map[string][]byte),
	}
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.Values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *MockSettingsRepository) Put(ctx context.Context, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	raw, err := m.encode(ctx, key, value)
	if err != nil {
		return err
	}
	m.Values[key] = raw
	return nil
}

// PutAll writes nothing unless every key can be written
func (m *MockSettingsRepository) PutAll(ctx context.Context, values map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	encoded := make(map[string][]byte, len(values))
	for key, value := range values {
		raw, err := m.encode(ctx, key, value)
		if err != nil {
			return err
		}
		encoded[key] = raw
	}
	for key, raw := range encoded {
		m.Values[key] = raw
	}
	return nil
}

func (m *MockSettingsRepository) encode(ctx context.Context, key string, value interface{}) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.PutError != nil {
		return nil, m.PutError
	}
	if err := m.KeyErrors[key]; err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

// NewMockRepositories wires a fresh set of mock repositories
func NewMockRepositories() (*repository.Repositories, *MockPostRepository, *MockCommentRepository, *MockSettingsRepository) {
	posts := NewMockPostRepository()
	comments := NewMockCommentRepository()
	settings := NewMockSettingsRepository()
	return &repository.Repositories{
		Post:     posts,
		Comment:  comments,
		Settings: settings,
	}, posts, comments, settings
}
