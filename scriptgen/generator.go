package scriptgen

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"news-shorts/config"
	"news-shorts/models"
)

const minKeywords = 3

// Generator 는 LLM → 템플릿 → 고정 스크립트 순으로 스크립트를 만든다.
// Generate 는 실패하지 않는다.
type Generator struct {
	cfg      config.ScriptConfig
	llm      LLM
	enricher *Enricher
	quota    *QuotaLimiter
}

// NewGenerator 는 llm 이 nil 이면 템플릿만 사용한다.
func NewGenerator(cfg config.ScriptConfig, llm LLM, enricher *Enricher) *Generator {
	return &Generator{cfg: cfg, llm: llm, enricher: enricher}
}

// NewFromConfig 는 script.provider 설정으로 LLM 을 고른다.
// API 키가 없으면 경고를 남기고 템플릿으로 동작한다.
func NewFromConfig(cfg config.AppConfig) *Generator {
	var llm LLM
	var err error
	switch strings.ToLower(cfg.Script.Provider) {
	case "gemini":
		llm, err = NewGeminiLLM(cfg.Script)
	case "openai":
		llm, err = NewOpenAILLM(cfg.Script)
	case "template", "":
	default:
		err = fmt.Errorf("unsupported LLM provider: %s", cfg.Script.Provider)
	}
	if err != nil {
		config.Logger.Warnf("[generate-script] %v; using template script", err)
		llm = nil
	}

	var enricher *Enricher
	if cfg.Script.EnrichArticle {
		browser := cfg.Browser
		enricher = NewEnricher(cfg.Script.ExcerptChars, &browser)
	}
	g := NewGenerator(cfg.Script, llm, enricher)
	g.quota = NewQuotaLimiter(cfg.Script.RequestsPerDay, cfg.Script.RequestsPerMinute)
	return g
}

// WithQuota 는 LLM 호출 한도를 건다.
func (g *Generator) WithQuota(q *QuotaLimiter) *Generator {
	g.quota = q
	return g
}

func (g *Generator) Generate(ctx context.Context, topic *models.Topic, keywords []string) *models.Script {
	if g.llm != nil {
		script, err := g.generateWithLLM(ctx, topic, keywords)
		if err == nil {
			return script
		}
		config.Logger.Warnf("[generate-script] %s failed, falling back: %v", g.llm.Name(), err)
	}

	var script *models.Script
	if !topic.IsError() {
		script = TemplateScript(topic, g.cfg.MaxKeywords)
	} else {
		subject := ""
		if len(keywords) > 0 {
			subject = keywords[0]
		}
		script = CannedScript(subject, g.cfg.MaxKeywords)
	}
	script.Fallback = script.Fallback || g.llm != nil
	return script
}

func (g *Generator) generateWithLLM(ctx context.Context, topic *models.Topic, keywords []string) (*models.Script, error) {
	ok, err := g.quota.WaitAndReserve(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuotaExhausted
	}

	excerpt := ""
	if g.enricher != nil && !topic.IsError() {
		excerpt = g.enricher.Excerpt(ctx, topic.Link)
	}

	timeout := time.Duration(g.cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := Prompt{
		System: SystemInstruction(g.cfg),
		User:   UserPrompt(topic, keywords, excerpt),
	}
	raw, llmLog, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if llmLog != nil {
		config.InfoWithFields("llm request", config.Fields{
			"provider":      llmLog.Provider,
			"model_name":    llmLog.ModelName,
			"model_version": llmLog.ModelVersion,
			"latency_ms":    llmLog.LatencyMs,
			"input_tokens":  llmLog.TokenUsage.InputTokens,
			"output_tokens": llmLog.TokenUsage.OutputTokens,
			"total_tokens":  llmLog.TokenUsage.TotalTokens,
		})
	}

	script, err := ParseResponse(raw, g.cfg.MaxKeywords)
	if err != nil {
		return nil, err
	}
	script.Provider = g.llm.Name()

	if len(script.Keywords) < minKeywords {
		var extra []string
		if !topic.IsError() {
			extra = templateKeywords(topic, g.cfg.MaxKeywords)
		} else {
			extra = append(append([]string{}, keywords...), cannedKeywords...)
		}
		script.Keywords = CleanKeywords(append(script.Keywords, extra...), g.cfg.MaxKeywords)
	}
	return script, nil
}

// WriteOutputs 는 script.txt 와 image_keywords.json 을 쓴다.
func WriteOutputs(script *models.Script, scriptPath, keywordsPath string) error {
	if err := os.WriteFile(scriptPath, []byte(script.Text()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", scriptPath, err)
	}
	if keywordsPath == "" {
		return nil
	}
	kws := script.Keywords
	if kws == nil {
		kws = []string{}
	}
	return models.WriteJSONFile(keywordsPath, kws)
}
