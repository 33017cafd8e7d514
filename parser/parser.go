package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/advancedlogic/GoOse/pkg/goose"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"news-shorts/feeder"
)

// minArticleChars 보다 짧은 본문은 추출 실패로 보고 다음 추출기를 시도한다.
const minArticleChars = 200

const maxHTMLBytes = 5 << 20

type ParsedArticle struct {
	Title            string
	PlainTextContent string
	TopImage         string
	Extractor        string
}

// FetchHTML 은 서버 렌더링 페이지의 HTML 을 가져온다.
func FetchHTML(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	feeder.SetBrowserHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ExtractArticle 은 readability → trafilatura → goose 순으로 본문을 추출한다.
// 충분히 긴 본문을 처음 얻은 결과를 쓰고, 모두 짧으면 가장 긴 결과를 쓴다.
func ExtractArticle(htmlStr string, pageURL string) (*ParsedArticle, error) {
	extractors := []func(string, string) (*ParsedArticle, error){
		ParseHtmlWithReadability,
		ParseHtmlWithTrafilatura,
		ParseHtmlWithGoose,
	}

	var best *ParsedArticle
	var errs []error
	for _, extract := range extractors {
		article, err := extract(htmlStr, pageURL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		article.PlainTextContent = strings.TrimSpace(article.PlainTextContent)
		if len(article.PlainTextContent) >= minArticleChars {
			return article, nil
		}
		if best == nil || len(article.PlainTextContent) > len(best.PlainTextContent) {
			best = article
		}
	}

	if best == nil || best.PlainTextContent == "" {
		errs = append(errs, errors.New("no article text extracted"))
		return best, errors.Join(errs...)
	}
	return best, nil
}

func ParseHtmlWithReadability(htmlStr string, pageURL string) (*ParsedArticle, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	article, err := readability.FromDocument(doc, parseBaseURL(pageURL))
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}
	return &ParsedArticle{
		Title:            article.Title,
		PlainTextContent: article.TextContent,
		TopImage:         article.Image,
		Extractor:        "readability",
	}, nil
}

func ParseHtmlWithTrafilatura(htmlStr string, pageURL string) (*ParsedArticle, error) {
	opts := trafilatura.Options{
		IncludeImages: true,
		OriginalURL:   parseBaseURL(pageURL),
	}

	article, err := trafilatura.Extract(strings.NewReader(htmlStr), opts)
	if err != nil {
		return nil, fmt.Errorf("trafilatura: %w", err)
	}

	return &ParsedArticle{
		Title:            article.Metadata.Title,
		PlainTextContent: article.ContentText,
		TopImage:         article.Metadata.Image,
		Extractor:        "trafilatura",
	}, nil
}

func ParseHtmlWithGoose(htmlStr string, pageURL string) (*ParsedArticle, error) {
	g := goose.New()
	article, err := g.ExtractFromRawHTML(htmlStr, pageURL)
	if err != nil {
		return nil, fmt.Errorf("goose: %w", err)
	}
	return &ParsedArticle{
		Title:            article.Title,
		PlainTextContent: article.CleanedText,
		TopImage:         article.TopImage,
		Extractor:        "goose",
	}, nil
}

func parseBaseURL(pageURL string) *url.URL {
	if pageURL == "" {
		return nil
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	return u
}
