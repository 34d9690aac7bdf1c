package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/engagemate-api/internal/config"
	"github.com/rs/zerolog"
)

// Defaults target Groq's OpenAI-compatible endpoint
const (
	DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
	DefaultOpenAIModel   = "llama3-70b-8192"
)

// OpenAIGenerator uses any OpenAI-compatible chat completions API
type OpenAIGenerator struct {
	baseURL string
	apiKey  string
	model   string
	cfg     *config.GenerationConfig
	client  *http.Client
	log     zerolog.Logger
}

var _ Generator = (*OpenAIGenerator)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIGenerator creates a generator for an OpenAI-compatible API
func NewOpenAIGenerator(cfg *config.GenerationConfig, log zerolog.Logger) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GENERATION_API_KEY is required for the %s provider", ProviderOpenAI)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAIGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log.With().Str("component", "openai").Str("model", model).Logger(),
	}, nil
}

// GenerateReply generates a public reply to a comment
func (g *OpenAIGenerator) GenerateReply(ctx context.Context, req ReplyRequest) (string, error) {
	return g.generate(ctx, replyCompletion(req))
}

// GenerateDirectMessage generates a DM delivering an asset
func (g *OpenAIGenerator) GenerateDirectMessage(ctx context.Context, req DirectMessageRequest) (string, error) {
	return g.generate(ctx, directMessageCompletion(req))
}

func (g *OpenAIGenerator) generate(ctx context.Context, c completion) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.system},
			{Role: "user", Content: c.user},
		},
		Temperature: g.cfg.Temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat completion error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode chat completion: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	g.log.Debug().Int("max_tokens", c.maxTokens).Msg("Chat completion received")
	return cleanCompletion(result.Choices[0].Message.Content)
}
