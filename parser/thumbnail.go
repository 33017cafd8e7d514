package parser

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"news-shorts/config"
)

// TopImageFinder 는 기사 페이지에서 대표 이미지를 찾는다.
// Client 가 nil 이면 크기 정보가 없는 <img> 는 건너뛴다.
type TopImageFinder struct {
	Client    *http.Client
	MinWidth  int
	MinHeight int
}

// Find 는 readability → og/twitter 메타 → link rel → 충분히 큰 <img> 순으로 찾는다.
func (f *TopImageFinder) Find(ctx context.Context, htmlStr string, pageURL string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}
	base := parseBaseURL(pageURL)

	if article, err := readability.FromDocument(doc, base); err == nil && article.Image != "" {
		return resolveImageURL(article.Image, base), nil
	}
	if src := findMetaImage(doc); src != "" {
		return resolveImageURL(src, base), nil
	}
	if src := findLinkImage(doc); src != "" {
		return resolveImageURL(src, base), nil
	}
	if src := f.findLargeImg(ctx, doc, base); src != "" {
		return src, nil
	}

	config.Logger.Infof("[parser] there is no top image (html: %d chars)", len(htmlStr))
	return "", nil
}

// walk 는 visit 가 false 를 돌려줄 때까지 깊이 우선으로 노드를 방문한다.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attrs(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[strings.ToLower(a.Key)] = a.Val
	}
	return m
}

// 우선순위: Open Graph → Twitter 카드 → itemprop
var metaImageKeys = []struct {
	attr   string
	values []string
}{
	{"property", []string{"og:image", "og:image:url", "og:image:secure_url"}},
	{"name", []string{"twitter:image", "twitter:image:src", "thumbnail", "image"}},
	{"itemprop", []string{"image"}},
}

func findMetaImage(doc *html.Node) string {
	found := map[string]string{}
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "meta" {
			return true
		}
		a := attrs(n)
		if a["content"] == "" {
			return true
		}
		for _, k := range metaImageKeys {
			if v, ok := a[k.attr]; ok {
				key := k.attr + "=" + strings.ToLower(v)
				if _, seen := found[key]; !seen {
					found[key] = a["content"]
				}
			}
		}
		return true
	})

	for _, k := range metaImageKeys {
		for _, v := range k.values {
			if src := found[k.attr+"="+v]; src != "" {
				return src
			}
		}
	}
	return ""
}

func findLinkImage(doc *html.Node) string {
	var result string
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "link" {
			return true
		}
		a := attrs(n)
		rel := strings.ToLower(a["rel"])
		if a["href"] != "" && (rel == "image_src" || strings.Contains(rel, "thumbnail")) {
			result = a["href"]
			return false
		}
		return true
	})
	return result
}

func (f *TopImageFinder) findLargeImg(ctx context.Context, doc *html.Node, base *url.URL) string {
	minW, minH := f.MinWidth, f.MinHeight
	if minW <= 0 {
		minW = 300
	}
	if minH <= 0 {
		minH = 300
	}

	var result string
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "img" {
			return true
		}
		a := attrs(n)
		abs, ok := makeAbsoluteImageURL(a["src"], base)
		if !ok {
			return true
		}
		w, _ := strconv.Atoi(a["width"])
		h, _ := strconv.Atoi(a["height"])
		if (w > 0 && w < minW) || (h > 0 && h < minH) {
			return true
		}
		if w >= minW && h >= minH {
			result = abs
			return false
		}
		if f.Client == nil {
			return true
		}
		if w, h, err := fetchImageDimensions(ctx, f.Client, abs); err == nil && w >= minW && h >= minH {
			result = abs
			return false
		}
		return true
	})
	return result
}

func makeAbsoluteImageURL(src string, base *url.URL) (string, bool) {
	if src == "" || strings.HasPrefix(src, "data:") {
		return "", false
	}

	parsed, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if parsed.IsAbs() {
		return parsed.String(), true
	}
	if base == nil {
		return "", false
	}
	return base.ResolveReference(parsed).String(), true
}

func resolveImageURL(src string, base *url.URL) string {
	if abs, ok := makeAbsoluteImageURL(src, base); ok {
		return abs
	}
	return src
}

func fetchImageDimensions(ctx context.Context, client *http.Client, imageURL string) (int, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("unexpected status code %d when fetching image", resp.StatusCode)
	}

	const maxImageBytes = 8 << 20
	cfg, _, err := image.DecodeConfig(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
