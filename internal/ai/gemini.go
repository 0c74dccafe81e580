package ai

import (
	"context"
	"net/http"

	"github.com/timjtrainor/Apply4Jobs/internal/config"
	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/observability"
	"github.com/timjtrainor/Apply4Jobs/internal/prompts"

	"google.golang.org/genai"
)

// GeminiBackend calls the Gemini API once per Generate
type GeminiBackend struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// Ensure GeminiBackend implements Backend
var _ Backend = (*GeminiBackend)(nil)

// NewGeminiBackend creates a backend bound to the model settings in cfg.
// transport may be nil.
func NewGeminiBackend(ctx context.Context, cfg config.AIConfig, transport http.RoundTripper) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingAPIKey,
			"Gemini API key is not configured (vault, APPLY4JOBS_AI_APIKEY or config table google_token)", nil)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if transport != nil {
		clientConfig.HTTPClient = &http.Client{Transport: transport, Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiBackend{
		client: client,
		model:  cfg.Model,
		config: buildGenerateConfig(cfg),
	}, nil
}

// Model returns the configured model name
func (g *GeminiBackend) Model() string { return g.model }

// Generate sends the prompt segments as parts of one user turn
func (g *GeminiBackend) Generate(ctx context.Context, prompt prompts.Prompt) (*Response, error) {
	parts := make([]*genai.Part, 0, len(prompt.Segments))
	for _, segment := range prompt.Segments {
		parts = append(parts, genai.NewPartFromText(segment))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, g.config)
	if err != nil {
		return nil, err
	}

	text := result.Text()
	if text == "" {
		return nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			"Gemini returned no text (blocked or empty candidate)", nil).
			WithContext("operation", string(prompt.ID))
	}

	return &Response{Text: text, Usage: extractTokenUsage(result)}, nil
}

// buildGenerateConfig maps configured model settings onto a request config
func buildGenerateConfig(cfg config.AIConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{}

	if cfg.Temperature > 0 {
		gc.Temperature = genai.Ptr(cfg.Temperature)
	}
	if cfg.TopP > 0 {
		gc.TopP = genai.Ptr(cfg.TopP)
	}
	if cfg.TopK > 0 {
		gc.TopK = genai.Ptr(cfg.TopK)
	}
	if cfg.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = cfg.MaxOutputTokens
	}

	for category, threshold := range cfg.SafetySettings() {
		gc.SafetySettings = append(gc.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(category),
			Threshold: genai.HarmBlockThreshold(threshold),
		})
	}

	return gc
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *observability.TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &observability.TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
