// Package generation produces persona-styled replies and direct messages
// through a hosted large language model.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/engagemate-api/internal/config"
	"github.com/engagemate-api/internal/models"
	"github.com/rs/zerolog"
)

// ErrEmptyCompletion is returned when a provider answers with no text
var ErrEmptyCompletion = errors.New("generation: empty completion")

// Generator is the text generation capability used by the automation pipeline
type Generator interface {
	GenerateReply(ctx context.Context, req ReplyRequest) (string, error)
	GenerateDirectMessage(ctx context.Context, req DirectMessageRequest) (string, error)
}

// ReplyRequest carries what the model needs to answer a public comment
type ReplyRequest struct {
	PostContent       string
	CommentText       string
	CommenterName     string
	Persona           models.Persona
	CustomInstruction string
}

// DirectMessageRequest carries what the model needs to deliver an asset by DM
type DirectMessageRequest struct {
	CommenterName string
	AssetName     string
	AssetURL      string
	Persona       models.Persona
}

// Provider names accepted by New
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
)

// New creates the Generator selected by cfg.Provider
func New(cfg *config.GenerationConfig, log zerolog.Logger) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini:
		return NewGeminiGenerator(cfg, log)
	case ProviderOpenAI, ProviderGroq, "":
		return NewOpenAIGenerator(cfg, log)
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", cfg.Provider)
	}
}

// completion is a provider-neutral chat request
type completion struct {
	system    string
	user      string
	maxTokens int
}

func cleanCompletion(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"")
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
