package parser_test

import (
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-shorts/parser"
)

var articleHTML = `<html><head><title>Volcano erupts</title>
<meta property="og:image" content="/img/volcano.jpg">
</head><body><article><h1>Volcano erupts near Grindavik</h1>` +
	strings.Repeat(`<p>Lava fountains rose above the Reykjanes peninsula on Monday as authorities evacuated residents and closed the Blue Lagoon, according to the Icelandic Met Office.</p>`, 6) +
	`</article></body></html>`

func TestExtractArticle(t *testing.T) {
	article, err := parser.ExtractArticle(articleHTML, "https://www.bbc.com/news/volcano")
	require.NoError(t, err)
	assert.Contains(t, article.PlainTextContent, "Lava fountains")
	assert.NotEmpty(t, article.Extractor)
}

func TestExtractArticleEmpty(t *testing.T) {
	_, err := parser.ExtractArticle("<html><body></body></html>", "")
	assert.Error(t, err)
}

func TestTopImageFromMeta(t *testing.T) {
	f := &parser.TopImageFinder{}
	src, err := f.Find(context.Background(), `<html><head>
<meta name="twitter:image" content="https://cdn.example.com/tw.jpg">
<meta property="og:image" content="/og.jpg"></head><body></body></html>`, "https://www.bbc.com/news/x")
	require.NoError(t, err)
	assert.Equal(t, "https://www.bbc.com/og.jpg", src)
}

func TestTopImageFromLinkRel(t *testing.T) {
	f := &parser.TopImageFinder{}
	src, err := f.Find(context.Background(), `<html><head><link rel="image_src" href="https://cdn.example.com/i.jpg"></head><body></body></html>`, "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/i.jpg", src)
}

func TestTopImageFromLargeImg(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		size := 50
		if strings.Contains(r.URL.Path, "big") {
			size = 400
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, image.NewRGBA(image.Rect(0, 0, size, size)))
	}))
	defer srv.Close()

	page := `<html><body><img src="/small.png"><img src="/tiny.png" width="20"><img src="/big.png"></body></html>`
	f := &parser.TopImageFinder{Client: srv.Client()}
	src, err := f.Find(context.Background(), page, srv.URL+"/article")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/big.png", src)

	// 클라이언트가 없으면 크기를 알 수 없는 이미지는 고르지 않는다
	src, err = (&parser.TopImageFinder{}).Find(context.Background(), page, srv.URL+"/article")
	require.NoError(t, err)
	assert.Empty(t, src)
}

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	body, err := parser.FetchHTML(context.Background(), srv.Client(), srv.URL+"/a")
	require.NoError(t, err)
	assert.Contains(t, body, "Grindavik")

	_, err = parser.FetchHTML(context.Background(), srv.Client(), srv.URL+"/missing")
	assert.Error(t, err)
}
