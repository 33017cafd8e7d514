package scriptgen

import (
	"context"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"news-shorts/config"
	"news-shorts/models"
)

// GenerateSchema generates a JSON schema for structured outputs.
func GenerateSchema[T any]() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var scriptResponseSchema = GenerateSchema[ScriptResponse]()

type OpenAILLM struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewOpenAILLM(cfg config.ScriptConfig, opts ...option.RequestOption) (*OpenAILLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY: %w", ErrMissingAPIKey)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &OpenAILLM{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (o *OpenAILLM) Name() string { return "openai" }

func (o *OpenAILLM) Complete(ctx context.Context, p Prompt) (string, *models.LLMRequestLog, error) {
	startTime := time.Now()

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "narration_script",
		Description: openai.String("Narration script and image search keywords for a short vertical video"),
		Schema:      scriptResponseSchema,
		Strict:      openai.Bool(true),
	}

	chatCompletion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		Model:       openai.ChatModel(o.model),
		Temperature: openai.Float(o.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return "", nil, ErrEmptyResponse
	}

	text := chatCompletion.Choices[0].Message.Content
	llmLog := &models.LLMRequestLog{
		Provider:  o.Name(),
		Prompt:    fmt.Sprintf("%s\n\n%s", p.System, p.User),
		Response:  text,
		LatencyMs: time.Since(startTime).Milliseconds(),
		TokenUsage: models.TokenUsage{
			InputTokens:  chatCompletion.Usage.PromptTokens,
			OutputTokens: chatCompletion.Usage.CompletionTokens,
			TotalTokens:  chatCompletion.Usage.TotalTokens,
		},
		ModelName:    o.model,
		ModelVersion: chatCompletion.Model,
		GeneratedAt:  time.Now(),
	}
	return text, llmLog, nil
}
