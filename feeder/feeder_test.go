package feeder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-shorts/config"
	"news-shorts/feeder"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>"volcano" - Google News</title>
<item>
  <title>Volcano erupts near Grindavik - BBC News</title>
  <link>https://news.google.com/rss/articles/CBMiAAA?oc=5</link>
  <pubDate>Mon, 13 Oct 2025 08:00:00 GMT</pubDate>
  <description>&lt;a href="https://news.google.com/x"&gt;Volcano erupts &amp;amp; lava flows&lt;/a&gt;&amp;nbsp;&lt;font color="#6f6f6f"&gt;BBC&lt;/font&gt;</description>
  <source url="https://www.bbc.com">BBC</source>
</item>
<item>
  <title>Undated` + "\x1b" + ` item</title>
  <link>https://example.com/undated</link>
</item>
</channel></rss>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		assert.Equal(t, "volcano", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(endpoint string) config.NewsConfig {
	cfg := config.Default().News
	cfg.Endpoint = endpoint
	cfg.RequestIntervalMs = 0
	return cfg
}

func TestSearchParsesItemsAndSource(t *testing.T) {
	srv := newServer(t)
	f := feeder.NewFetcher(testConfig(srv.URL))

	items, err := f.Search(context.Background(), "volcano")
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Volcano erupts near Grindavik - BBC News", first.Title)
	assert.Equal(t, "https://www.bbc.com", first.SourceURL)
	assert.Equal(t, "BBC", first.SourceName)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, 2025, first.PublishedAt.Year())
	assert.NotContains(t, first.Summary, "<a")
	assert.Contains(t, first.Summary, "Volcano erupts & lava flows")

	second := items[1]
	assert.Nil(t, second.PublishedAt)
	assert.Equal(t, "Undated item", second.Title)
}

func TestSearchURL(t *testing.T) {
	f := feeder.NewFetcher(testConfig("https://news.google.com/rss/search"))
	u := f.SearchURL("mars rover")
	assert.True(t, strings.HasPrefix(u, "https://news.google.com/rss/search?"))
	assert.Contains(t, u, "q=mars+rover")
	assert.Contains(t, u, "hl=en")
	assert.Contains(t, u, "gl=US")
	assert.Contains(t, u, "ceid=US%3Aen")
}

func TestFetchRssFeedsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	f := feeder.NewFetcher(testConfig(srv.URL))
	_, err := f.FetchRssFeeds(context.Background(), srv.URL, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetchRssFeedsLimit(t *testing.T) {
	srv := newServer(t)
	f := feeder.NewFetcher(testConfig(srv.URL))
	items, err := f.FetchRssFeeds(context.Background(), f.SearchURL("volcano"), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestHTTPClientAddsRequestIDAndKeepsUAOnRedirect(t *testing.T) {
	var gotID, gotUA string
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := feeder.NewHTTPClient(5 * time.Second)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/start", nil)
	require.NoError(t, err)
	feeder.SetBrowserHeaders(req)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, gotID, 8)
	assert.Contains(t, gotUA, "Mozilla")
	assert.Empty(t, req.Header.Get("X-Request-Id"), "caller request must not be mutated")
}
