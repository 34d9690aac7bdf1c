package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/engagemate-api/internal/generation"
)

// MockGenerator is a mock implementation of generation.Generator. Without
// funcs it answers with deterministic text derived from the request.
type MockGenerator struct {
	mu         sync.Mutex
	ReplyFunc  func(ctx context.Context, req generation.ReplyRequest) (string, error)
	DMFunc     func(ctx context.Context, req generation.DirectMessageRequest) (string, error)
	ReplyError error
	DMError    error
	Replies    []generation.ReplyRequest
	DMs        []generation.DirectMessageRequest
}

var _ generation.Generator = (*MockGenerator)(nil)

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) GenerateReply(ctx context.Context, req generation.ReplyRequest) (string, error) {
	m.mu.Lock()
	m.Replies = append(m.Replies, req)
	fn, err := m.ReplyFunc, m.ReplyError
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Thanks %s!", req.CommenterName), nil
}

func (m *MockGenerator) GenerateDirectMessage(ctx context.Context, req generation.DirectMessageRequest) (string, error) {
	m.mu.Lock()
	m.DMs = append(m.DMs, req)
	fn, err := m.DMFunc, m.DMError
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Hi %s, here is %s: %s", req.CommenterName, req.AssetName, req.AssetURL), nil
}

// Calls returns how many replies and direct messages were requested
func (m *MockGenerator) Calls() (replies, dms int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Replies), len(m.DMs)
}
