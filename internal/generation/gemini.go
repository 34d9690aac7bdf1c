package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/engagemate-api/internal/config"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when GENERATION_MODEL is unset
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator generates text with Google's Gemini API
type GeminiGenerator struct {
	client *genai.Client
	cfg    *config.GenerationConfig
	model  string
	log    zerolog.Logger
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a Gemini-backed generator
func NewGeminiGenerator(cfg *config.GenerationConfig, log zerolog.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GENERATION_API_KEY is required for the gemini provider")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiGenerator{
		client: client,
		cfg:    cfg,
		model:  model,
		log:    log.With().Str("component", "gemini").Str("model", model).Logger(),
	}, nil
}

// GenerateReply generates a public reply to a comment
func (g *GeminiGenerator) GenerateReply(ctx context.Context, req ReplyRequest) (string, error) {
	return g.generate(ctx, replyCompletion(req))
}

// GenerateDirectMessage generates a DM delivering an asset
func (g *GeminiGenerator) GenerateDirectMessage(ctx context.Context, req DirectMessageRequest) (string, error) {
	return g.generate(ctx, directMessageCompletion(req))
}

func (g *GeminiGenerator) generate(ctx context.Context, c completion) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(c.system, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.cfg.Temperature)),
		MaxOutputTokens:   int32(c.maxTokens),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(c.user), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	g.log.Debug().Int("max_tokens", c.maxTokens).Msg("Gemini completion received")
	return cleanCompletion(sb.String())
}
