package scriptgen

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"news-shorts/config"
	"news-shorts/models"
)

type GeminiLLM struct {
	apiKey      string
	model       string
	temperature float32
}

func NewGeminiLLM(cfg config.ScriptConfig) (*GeminiLLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY: %w", ErrMissingAPIKey)
	}
	return &GeminiLLM{apiKey: cfg.APIKey, model: cfg.Model, temperature: float32(cfg.Temperature)}, nil
}

func (g *GeminiLLM) Name() string { return "gemini" }

// geminiSchema 는 ScriptResponse 에 대응하는 응답 스키마다.
var geminiSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"hook":      {Type: genai.TypeString},
		"narration": {Type: genai.TypeString},
		"keywords": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"hook", "narration", "keywords"},
}

func (g *GeminiLLM) Complete(ctx context.Context, p Prompt) (string, *models.LLMRequestLog, error) {
	startTime := time.Now()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", nil, err
	}

	temperature := g.temperature
	result, err := client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(p.User),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: p.System}}},
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    geminiSchema,
		},
	)
	if err != nil {
		return "", nil, err
	}
	if result == nil {
		return "", nil, ErrEmptyResponse
	}

	text := result.Text()
	llmLog := &models.LLMRequestLog{
		Provider:     g.Name(),
		Prompt:       fmt.Sprintf("%s\n\n%s", p.System, p.User),
		Response:     text,
		LatencyMs:    time.Since(startTime).Milliseconds(),
		ModelName:    g.model,
		ModelVersion: result.ModelVersion,
		GeneratedAt:  time.Now(),
	}
	if result.UsageMetadata != nil {
		llmLog.TokenUsage = models.TokenUsage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}
	return text, llmLog, nil
}
