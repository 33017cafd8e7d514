package resolver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"news-shorts/config"
	"news-shorts/feeder"
	"news-shorts/ratelimit"
)

const RESOLVER_TIMEOUT = 15 * time.Second

// articleIDPrefix 는 구형 Google News article id 를 디코딩했을 때 나오는 머리 바이트다.
var articleIDPrefix = []byte{0x08, 0x13, 0x22}

// Resolver 는 뉴스 집계 서비스의 리다이렉트 링크를 원문 기사 주소로 바꾼다.
type Resolver struct {
	client     *http.Client
	fetchPages bool
	limiter    *ratelimit.HostRateLimiter
}

func New(fetchPages bool) *Resolver {
	return &Resolver{
		client:     feeder.NewHTTPClient(RESOLVER_TIMEOUT),
		fetchPages: fetchPages,
	}
}

// NewFromConfig 는 페이지 요청에 피드와 같은 호스트별 간격을 적용한다.
func NewFromConfig(sel config.SelectionConfig, news config.NewsConfig) *Resolver {
	return New(sel.ResolvePages).WithLimiter(
		ratelimit.NewHostRateLimiter(time.Duration(news.RequestIntervalMs) * time.Millisecond))
}

// WithLimiter 는 리다이렉트 페이지 요청에 쓸 호스트별 제한기를 지정한다. nil 이면 제한하지 않는다.
func (r *Resolver) WithLimiter(l *ratelimit.HostRateLimiter) *Resolver {
	r.limiter = l
	return r
}

// Resolve 는 link 의 원문 주소와 성공 여부를 돌려준다.
// 실패하면 link 를 그대로 돌려주고 ok 는 false 이다.
func (r *Resolver) Resolve(ctx context.Context, link string) (resolved string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return link, false
	}
	if !IsAggregatorHost(u.Hostname()) {
		return link, true
	}

	if target := FromQuery(u); target != "" {
		return target, true
	}

	if id := articleID(u); id != "" {
		if target := DecodeArticleID(id); target != "" {
			return target, true
		}
	}

	if r.fetchPages {
		if target := r.fromPage(ctx, link); target != "" {
			return target, true
		}
	}

	config.Logger.Debugf("[resolver] could not resolve %s", link)
	return link, false
}

// IsAggregatorHost 는 host 가 Google 계열 리다이렉트 호스트인지 판단한다.
func IsAggregatorHost(host string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	return host == "google.com" || strings.HasSuffix(host, ".google.com")
}

func isArticleURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return !IsAggregatorHost(u.Hostname())
}

// FromQuery 는 url, u, q 쿼리 파라미터에 담긴 원문 주소를 꺼낸다.
func FromQuery(u *url.URL) string {
	q := u.Query()
	for _, key := range []string{"url", "u", "q"} {
		if v := q.Get(key); isArticleURL(v) {
			return v
		}
	}
	return ""
}

func articleID(u *url.URL) string {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "articles" || parts[i] == "read" {
			return parts[i+1]
		}
	}
	return ""
}

// DecodeArticleID 는 base64 로 인코딩된 article id 에서 원문 주소를 복원한다.
// 구형 포맷은 머리 바이트 뒤에 varint 길이와 주소가 이어진다. 그 밖의 경우
// 디코딩된 바이트에서 "http" 로 시작하는 구간을 찾는다. 실패하면 빈 문자열이다.
func DecodeArticleID(id string) string {
	id = strings.TrimRight(strings.TrimSpace(id), "=")
	if id == "" {
		return ""
	}

	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(id)
		if err != nil {
			return ""
		}
	}

	if rest, found := bytes.CutPrefix(raw, articleIDPrefix); found {
		n, k := binary.Uvarint(rest)
		if k > 0 && n > 0 && n <= uint64(len(rest)-k) {
			if cand := string(rest[k : k+int(n)]); isArticleURL(cand) {
				return cand
			}
		}
	}

	start := bytes.Index(raw, []byte("http"))
	if start < 0 {
		return ""
	}
	end := start
	for end < len(raw) && raw[end] >= 0x21 && raw[end] < 0x7f {
		end++
	}
	if cand := string(raw[start:end]); isArticleURL(cand) {
		return cand
	}
	return ""
}

// fromPage 는 리다이렉트 페이지를 직접 받아 canonical, refresh, 앵커 순으로 원문 주소를 찾는다.
func (r *Resolver) fromPage(ctx context.Context, link string) string {
	if err := r.limiter.WaitForHost(ctx, link); err != nil {
		return ""
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return ""
	}
	feeder.SetBrowserHeaders(req)

	resp, err := r.client.Do(req)
	if err != nil {
		config.Logger.Debugf("[resolver] fetch %s: %v", link, err)
		return ""
	}
	defer resp.Body.Close()

	// HTTP 리다이렉트만으로 원문에 도착한 경우
	if resp.Request != nil && resp.Request.URL != nil {
		if final := resp.Request.URL.String(); isArticleURL(final) {
			return final
		}
	}

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	return FromDocument(doc)
}

// FromDocument 는 파싱된 리다이렉트 페이지에서 원문 주소를 찾는다.
func FromDocument(doc *goquery.Document) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok && isArticleURL(href) {
		return href
	}

	if au, ok := doc.Find("[data-n-au]").Attr("data-n-au"); ok && isArticleURL(au) {
		return au
	}

	var refresh string
	doc.Find("meta[http-equiv]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		equiv, _ := s.Attr("http-equiv")
		if !strings.EqualFold(equiv, "refresh") {
			return true
		}
		content, _ := s.Attr("content")
		if _, after, found := strings.Cut(strings.ToLower(content), "url="); found {
			// 대소문자를 보존하기 위해 원본에서 잘라낸다
			target := strings.Trim(strings.TrimSpace(content[len(content)-len(after):]), `'"`)
			if isArticleURL(target) {
				refresh = target
				return false
			}
		}
		return true
	})
	if refresh != "" {
		return refresh
	}

	var anchor string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if isArticleURL(href) {
			anchor = href
			return false
		}
		return true
	})
	return anchor
}
