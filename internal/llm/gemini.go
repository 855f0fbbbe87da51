package llm

import (
	"context"
	"fmt"

	"github.com/oilmacro/scenario-forecast/internal/forecast"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiService implements Service using Google's Gemini API.
type GeminiService struct {
	client    *genai.Client
	model     string
	logger    *zap.Logger
	validKeys []string
}

// NewGeminiService creates the Gemini-backed query parser and explainer.
// validKeys are the scenario keys parsing is normalized against.
func NewGeminiService(ctx context.Context, logger *zap.Logger, apiKey, model string, validKeys []string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiService{
		client:    client,
		model:     model,
		logger:    logger,
		validKeys: validKeys,
	}, nil
}

// ParseQuery maps a free-text question onto scenario parameters. Any
// failure (transport, malformed JSON, out-of-catalog key) degrades to
// the conservative fallback; the caller always gets a usable result.
func (s *GeminiService) ParseQuery(ctx context.Context, query string) ParsedQuery {
	raw, err := s.generate(ctx, parseSystemPrompt(), "Query: "+query, 0.1, 400)
	if err != nil {
		s.logger.Warn("query parse call failed, using fallback",
			zap.String("op", "llm.ParseQuery"),
			zap.Error(err),
		)
		return FallbackQuery(query)
	}
	return decodeParsedQuery(raw, query, s.validKeys)
}

// Explain generates a three-paragraph economic explanation of the
// simulation result, addressed to the user's specific framing.
func (s *GeminiService) Explain(ctx context.Context, result *forecast.RunResult, parsed ParsedQuery) string {
	system, user := explainPrompt(result, parsed)
	text, err := s.generate(ctx, system, user, 0.5, 450)
	if err != nil {
		s.logger.Warn("explanation call failed, using fallback",
			zap.String("op", "llm.Explain"),
			zap.Error(err),
		)
		return Disabled{}.Explain(ctx, result, parsed)
	}
	return text
}

// UncertaintyNote generates a short caveat for the forecast.
func (s *GeminiService) UncertaintyNote(ctx context.Context, result *forecast.RunResult) string {
	text, err := s.generate(ctx, "", uncertaintyPrompt(result), 0.3, 120)
	if err != nil {
		s.logger.Warn("uncertainty note call failed, using fallback",
			zap.String("op", "llm.UncertaintyNote"),
			zap.Error(err),
		)
		return FallbackUncertaintyNote
	}
	return text
}

func (s *GeminiService) generate(ctx context.Context, system, user string, temperature float32, maxTokens int32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(user), config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
