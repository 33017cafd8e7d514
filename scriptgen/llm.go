package scriptgen

import (
	"context"
	"errors"

	"news-shorts/models"
)

// ErrEmptyResponse 는 LLM 응답에서 나레이션을 얻지 못했음을 뜻한다.
var ErrEmptyResponse = errors.New("llm returned no narration")

// ErrMissingAPIKey 는 선택한 LLM 공급자의 API 키가 설정되지 않았음을 뜻한다.
var ErrMissingAPIKey = errors.New("llm api key is not set")

var ErrQuotaExhausted = errors.New("daily llm quota exhausted")

// Prompt 는 LLM 한 번 호출에 필요한 입력이다.
type Prompt struct {
	System string
	User   string
}

// LLM 은 구조화된 스크립트 응답을 돌려주는 텍스트 생성기다.
// 응답 원문은 ParseResponse 로 해석한다.
type LLM interface {
	Name() string
	Complete(ctx context.Context, p Prompt) (string, *models.LLMRequestLog, error)
}

// ScriptResponse 는 LLM 이 돌려줘야 하는 JSON 구조다.
type ScriptResponse struct {
	Hook      string   `json:"hook" jsonschema_description:"Opening line spoken in the first three seconds. At most 10 words."`
	Narration string   `json:"narration" jsonschema_description:"Full narration text for a 60 second vertical video, without the hook."`
	Keywords  []string `json:"keywords" jsonschema_description:"3 to 6 short English stock-photo search keywords, most important first."`
}
