package scriptgen

import (
	"context"
	"net/http"
	"strings"
	"time"

	"news-shorts/config"
	"news-shorts/feeder"
	"news-shorts/parser"
	"news-shorts/renderer"
)

// Enricher 는 기사 원문을 가져와 LLM 에 넘길 발췌문을 만든다.
// HTTP 로 받은 HTML 에서 본문을 얻지 못하면 헤드리스 브라우저로 다시 렌더링한다.
type Enricher struct {
	client   *http.Client
	browser  *config.BrowserConfig
	maxChars int
}

// NewEnricher 는 browser 가 nil 이면 브라우저 렌더링을 하지 않는다.
func NewEnricher(maxChars int, browser *config.BrowserConfig) *Enricher {
	return &Enricher{
		client:   feeder.NewHTTPClient(20 * time.Second),
		browser:  browser,
		maxChars: maxChars,
	}
}

func (e *Enricher) Excerpt(ctx context.Context, link string) string {
	if link == "" {
		return ""
	}

	article, err := e.extract(ctx, link)
	if err != nil {
		config.Logger.Warnf("[generate-script] article enrichment failed for %s: %v", link, err)
		return ""
	}
	config.Logger.Infof("[generate-script] article text extracted with %s (%d chars)", article.Extractor, len(article.PlainTextContent))
	return TruncateChars(article.PlainTextContent, e.maxChars)
}

func (e *Enricher) extract(ctx context.Context, link string) (*parser.ParsedArticle, error) {
	htmlStr, err := parser.FetchHTML(ctx, e.client, link)
	if err == nil {
		article, extractErr := parser.ExtractArticle(htmlStr, link)
		if extractErr == nil {
			return article, nil
		}
		err = extractErr
	}
	if e.browser == nil {
		return nil, err
	}

	config.Logger.Debugf("[generate-script] falling back to browser rendering for %s: %v", link, err)
	rendered, renderErr := renderer.RenderHTML(ctx, *e.browser, link)
	if renderErr != nil {
		return nil, renderErr
	}
	return parser.ExtractArticle(rendered, link)
}

// TruncateChars 는 max 글자 이내의 마지막 공백에서 자른다.
func TruncateChars(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return text
	}
	cut := string(r[:max])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
