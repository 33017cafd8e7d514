package scriptgen_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-shorts/config"
	"news-shorts/scriptgen"
)

func TestOpenAILLMComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1760000000,
  "model": "gpt-4o-mini-2024-07-18",
  "choices": [{"index": 0, "finish_reason": "stop",
    "message": {"role": "assistant", "content": "{\"hook\":\"H\",\"narration\":\"N\",\"keywords\":[\"a\",\"b\",\"c\"]}"}}],
  "usage": {"prompt_tokens": 11, "completion_tokens": 22, "total_tokens": 33}
}`))
	}))
	defer srv.Close()

	cfg := config.Default().Script
	cfg.Provider = "openai"
	cfg.Model = "gpt-4o-mini"
	cfg.APIKey = "sk-test"

	llm, err := scriptgen.NewOpenAILLM(cfg, option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	raw, log, err := llm.Complete(context.Background(), scriptgen.Prompt{System: "sys", User: "user"})
	require.NoError(t, err)
	assert.Contains(t, raw, `"narration":"N"`)
	require.NotNil(t, log)
	assert.Equal(t, int64(33), log.TokenUsage.TotalTokens)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", log.ModelVersion)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	rf, ok := body["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", rf["type"])
}

func TestNewLLMRequiresKey(t *testing.T) {
	cfg := config.Default().Script
	cfg.APIKey = ""
	_, err := scriptgen.NewOpenAILLM(cfg)
	assert.ErrorIs(t, err, scriptgen.ErrMissingAPIKey)
	_, err = scriptgen.NewGeminiLLM(cfg)
	assert.ErrorIs(t, err, scriptgen.ErrMissingAPIKey)
}
