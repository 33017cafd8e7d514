package feeder

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"news-shorts/config"
	"news-shorts/ratelimit"
)

// RssFeedItem 은 검색 피드의 항목 하나다.
// PublishedAt 이 nil 이면 피드에 발행 시각이 없었던 것이다.
type RssFeedItem struct {
	Title       string
	Link        string
	Summary     string
	PublishedAt *time.Time
	// SourceURL 은 <source url="..."> 로 주어지는 원 매체 주소다.
	SourceURL  string
	SourceName string
}

const FEEDER_TIMEOUT = 30 * time.Second

// rssUserAgent 는 RSS 피드를 요청할 때 사용할 브라우저 유사 User-Agent 이다.
// 일부 사이트는 기본 Go HTTP 클라이언트 UA를 차단한다.
const rssUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

type Fetcher struct {
	cfg      config.NewsConfig
	client   *http.Client
	limiter  *ratelimit.HostRateLimiter
	stripper *bluemonday.Policy
}

func NewFetcher(cfg config.NewsConfig) *Fetcher {
	timeout := FEEDER_TIMEOUT
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}
	return &Fetcher{
		cfg:      cfg,
		client:   NewHTTPClient(timeout),
		limiter:  ratelimit.NewHostRateLimiter(time.Duration(cfg.RequestIntervalMs) * time.Millisecond),
		stripper: bluemonday.StrictPolicy(),
	}
}

// NewHTTPClient 는 리다이렉트 시에도 브라우저 UA 를 유지하는 클라이언트를 만든다.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newLoggingTransport(nil),
		// 리다이렉트 시 헤더 유지 (Go 기본 동작은 일부 헤더가 초기화될 수 있음)
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after 10 redirects")
			}
			req.Header.Set("User-Agent", rssUserAgent)
			return nil
		},
	}
}

// SetBrowserHeaders 는 WAF 에 막히지 않도록 브라우저와 비슷한 헤더를 채운다.
func SetBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", rssUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")
}

// SearchURL 은 키워드에 대한 Google News RSS 검색 주소를 만든다.
func (f *Fetcher) SearchURL(keyword string) string {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("hl", f.cfg.Language)
	q.Set("gl", f.cfg.Country)
	q.Set("ceid", f.cfg.CEID)
	return f.cfg.Endpoint + "?" + q.Encode()
}

// Search 는 키워드 검색 피드를 가져온다.
func (f *Fetcher) Search(ctx context.Context, keyword string) ([]RssFeedItem, error) {
	return f.FetchRssFeeds(ctx, f.SearchURL(keyword), 0)
}

// FetchRssFeeds 는 주어진 RSS 주소를 가져와 파싱한다.
// limit 이 0 보다 크면 앞에서부터 limit 개만 돌려준다.
func (f *Fetcher) FetchRssFeeds(ctx context.Context, rssUrl string, limit int) ([]RssFeedItem, error) {
	if err := f.limiter.WaitForHost(ctx, rssUrl); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rssUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RSS request: %w", err)
	}
	SetBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodySample, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("failed to fetch RSS feed: status code %d, url: %s, body: %s", resp.StatusCode, rssUrl, string(bodySample))
	}

	cleanedReader, err := cleanControlCharacters(resp.Body)
	if err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.RSSTranslator = &sourceTranslator{}
	feed, err := fp.Parse(cleanedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	var items []RssFeedItem
	for _, item := range feed.Items {
		var published *time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed
		}

		out := RssFeedItem{
			Title:       f.stripHTML(item.Title),
			Link:        strings.TrimSpace(item.Link),
			Summary:     f.stripHTML(item.Description),
			PublishedAt: published,
		}
		if item.Custom != nil {
			out.SourceURL = item.Custom[customSourceURL]
			out.SourceName = item.Custom[customSourceName]
		}
		items = append(items, out)
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	config.Logger.Debugf("[feeder] %d items from %s", len(items), rssUrl)
	return items, nil
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// stripHTML 은 태그를 제거하고 엔티티를 풀어 한 줄 텍스트로 만든다.
func (f *Fetcher) stripHTML(s string) string {
	s = f.stripper.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// XML에서 허용되지 않는 제어 문자 범위 (0x00-0x1F 중 탭, LF, CR 제외).
var invalidControlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

func cleanControlCharacters(r io.Reader) (io.Reader, error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body for cleaning: %w", err)
	}

	cleanedBytes := invalidControlCharRegex.ReplaceAll(bodyBytes, []byte(""))

	return bytes.NewReader(cleanedBytes), nil
}
