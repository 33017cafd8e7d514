package selector_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-shorts/config"
	"news-shorts/feeder"
	"news-shorts/history"
	"news-shorts/models"
	"news-shorts/selector"
)

var now = time.Date(2025, 10, 13, 12, 0, 0, 0, time.UTC)

type fakeFeeds struct {
	items map[string][]feeder.RssFeedItem
	calls map[string]int
	fail  map[string]bool
}

func newFakeFeeds() *fakeFeeds {
	return &fakeFeeds{
		items: map[string][]feeder.RssFeedItem{},
		calls: map[string]int{},
		fail:  map[string]bool{},
	}
}

func (f *fakeFeeds) add(kw, title, link string, age time.Duration) {
	ts := now.Add(-age)
	f.items[kw] = append(f.items[kw], feeder.RssFeedItem{Title: title, Link: link, PublishedAt: &ts})
}

func (f *fakeFeeds) Search(_ context.Context, kw string) ([]feeder.RssFeedItem, error) {
	f.calls[kw]++
	if f.fail[kw] {
		return nil, errors.New("boom")
	}
	return f.items[kw], nil
}

type identityResolver struct{}

func (identityResolver) Resolve(_ context.Context, link string) (string, bool) { return link, true }

type failingResolver struct{}

func (failingResolver) Resolve(_ context.Context, link string) (string, bool) { return link, false }

func newStore(t *testing.T) *history.FileStore {
	t.Helper()
	s, err := history.OpenFile(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	return s
}

func newSelector(feeds selector.FeedSource, store history.Store, allowUnlisted bool) *selector.Selector {
	cfg := config.Default().Selection
	cfg.AllowUnlisted = allowUnlisted
	return selector.New(feeds, identityResolver{}, store, selector.NewPolicy(cfg), selector.WithClock(func() time.Time { return now }))
}

func TestSelectPrefersTrustedWithinWindow(t *testing.T) {
	feeds := newFakeFeeds()
	feeds.add("volcano", "Yahoo story", "https://news.yahoo.com/a", 1*time.Hour)
	feeds.add("mars", "Reuters story", "https://www.reuters.com/b", 5*time.Hour)

	topic, err := newSelector(feeds, newStore(t), false).Select(context.Background(), []string{"volcano", "mars"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.reuters.com/b", topic.Link)
	assert.Equal(t, models.TierTrusted, topic.Tier)
	assert.Equal(t, "24 hours", topic.Window)
	assert.Equal(t, "mars", topic.Keyword)
	assert.Equal(t, "www.reuters.com", topic.Source)
}

func TestSelectWindowWideningIsMonotonic(t *testing.T) {
	feeds := newFakeFeeds()
	// 3일 전 신뢰 매체보다 2시간 전 보조 매체가 먼저다
	feeds.add("volcano", "BBC old", "https://www.bbc.com/old", 72*time.Hour)
	feeds.add("mars", "Forbes fresh", "https://www.forbes.com/fresh", 2*time.Hour)

	topic, err := newSelector(feeds, newStore(t), false).Select(context.Background(), []string{"volcano", "mars"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.forbes.com/fresh", topic.Link)
	assert.Equal(t, models.TierSecondary, topic.Tier)
	assert.Equal(t, "24 hours", topic.Window)
}

func TestSelectMostRecentWithinKeyword(t *testing.T) {
	feeds := newFakeFeeds()
	feeds.add("volcano", "older", "https://apnews.com/older", 10*time.Hour)
	feeds.add("volcano", "newer", "https://apnews.com/newer", 1*time.Hour)

	topic, err := newSelector(feeds, newStore(t), false).Select(context.Background(), []string{"volcano"})
	require.NoError(t, err)
	assert.Equal(t, "https://apnews.com/newer", topic.Link)
}

func TestSelectNeverReturnsHistoryLinks(t *testing.T) {
	ctx := context.Background()
	feeds := newFakeFeeds()
	feeds.add("volcano", "first", "https://www.bbc.com/first", 1*time.Hour)
	feeds.add("volcano", "second", "https://www.bbc.com/second", 30*24*time.Hour+time.Hour)

	store := newStore(t)
	require.NoError(t, store.Add(ctx, models.HistoryEntry{Link: "https://www.bbc.com/first"}))

	topic, err := newSelector(feeds, store, false).Select(ctx, []string{"volcano"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.bbc.com/second", topic.Link)
	assert.Equal(t, "any", topic.Window)

	require.NoError(t, store.Add(ctx, models.HistoryEntry{Link: topic.Link}))
	_, err = newSelector(feeds, store, false).Select(ctx, []string{"volcano"})
	assert.ErrorIs(t, err, selector.ErrNoNews)
}

func TestSelectExcludedPatternsAlwaysReject(t *testing.T) {
	feeds := newFakeFeeds()
	feeds.add("volcano", "blog on trusted", "https://www.nytimes.com/blog/volcano", 1*time.Hour)
	feeds.add("volcano", "author page", "https://www.cnn.com/author/someone", 1*time.Hour)
	feeds.add("volcano", "medium", "https://medium.com/@x/volcano", 1*time.Hour)
	feeds.add("volcano", "wordpress", "https://volcanoes.wordpress.com/post", 1*time.Hour)

	_, err := newSelector(feeds, newStore(t), true).Select(context.Background(), []string{"volcano"})
	assert.ErrorIs(t, err, selector.ErrNoNews)
}

func TestSelectUnlistedOnlyWhenAllowed(t *testing.T) {
	feeds := newFakeFeeds()
	feeds.add("volcano", "local paper", "https://www.localpaper.example/news/1", 1*time.Hour)

	_, err := newSelector(feeds, newStore(t), false).Select(context.Background(), []string{"volcano"})
	assert.ErrorIs(t, err, selector.ErrNoNews)

	topic, err := newSelector(feeds, newStore(t), true).Select(context.Background(), []string{"volcano"})
	require.NoError(t, err)
	assert.Equal(t, models.TierUnlisted, topic.Tier)
}

func TestSelectSkipsUndatedAndFetchesOnce(t *testing.T) {
	feeds := newFakeFeeds()
	feeds.items["volcano"] = []feeder.RssFeedItem{{Title: "undated", Link: "https://www.bbc.com/undated"}}
	feeds.fail["mars"] = true

	_, err := newSelector(feeds, newStore(t), true).Select(context.Background(), []string{"volcano", "mars"})
	assert.ErrorIs(t, err, selector.ErrNoNews)
	assert.Equal(t, 1, feeds.calls["volcano"])
	assert.Equal(t, 1, feeds.calls["mars"])
}

func TestSelectUsesSourceHintWhenUnresolved(t *testing.T) {
	ts := now.Add(-time.Hour)
	feeds := newFakeFeeds()
	feeds.items["volcano"] = []feeder.RssFeedItem{{
		Title:       "Opaque link - Reuters",
		Link:        "https://news.google.com/rss/articles/AU_yqLOpaque",
		PublishedAt: &ts,
		SourceURL:   "https://www.reuters.com",
	}}

	sel := selector.New(feeds, failingResolver{}, newStore(t), selector.NewPolicy(config.Default().Selection),
		selector.WithClock(func() time.Time { return now }))
	topic, err := sel.Select(context.Background(), []string{"volcano"})
	require.NoError(t, err)
	assert.Equal(t, models.TierTrusted, topic.Tier)
	assert.Equal(t, "www.reuters.com", topic.Source)
	assert.Equal(t, topic.FeedLink, topic.Link)
}

func TestSelectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newSelector(newFakeFeeds(), newStore(t), false).Select(ctx, []string{"volcano"})
	assert.ErrorIs(t, err, context.Canceled)
}

type countingResolver struct{ calls map[string]int }

func (r *countingResolver) Resolve(_ context.Context, link string) (string, bool) {
	r.calls[link]++
	return link, true
}

func TestSelectSkipsResolvingWhenSourceHintIsAnotherTier(t *testing.T) {
	feeds := newFakeFeeds()
	hinted := now.Add(-time.Hour)
	feeds.items["volcano"] = []feeder.RssFeedItem{{
		Title:       "Yahoo story",
		Link:        "https://news.google.com/rss/articles/AU_yqLYahoo",
		PublishedAt: &hinted,
		SourceURL:   "https://news.yahoo.com",
	}}
	feeds.add("volcano", "Reuters story", "https://www.reuters.com/b", 2*time.Hour)

	res := &countingResolver{calls: map[string]int{}}
	sel := selector.New(feeds, res, newStore(t), selector.NewPolicy(config.Default().Selection),
		selector.WithClock(func() time.Time { return now }))
	topic, err := sel.Select(context.Background(), []string{"volcano"})
	require.NoError(t, err)

	assert.Equal(t, "https://www.reuters.com/b", topic.Link)
	assert.Zero(t, res.calls["https://news.google.com/rss/articles/AU_yqLYahoo"])
	assert.Equal(t, 1, res.calls["https://www.reuters.com/b"])
}

func TestSelectWithCustomWindows(t *testing.T) {
	feeds := newFakeFeeds()
	feeds.add("volcano", "Old Reuters story", "https://www.reuters.com/old", 40*24*time.Hour)

	short := []selector.Window{{Label: "1 hour", Span: time.Hour}, {Label: "week", Span: 7 * 24 * time.Hour}}
	sel := selector.New(feeds, identityResolver{}, newStore(t), selector.NewPolicy(config.Default().Selection),
		selector.WithClock(func() time.Time { return now }), selector.WithWindows(short))
	_, err := sel.Select(context.Background(), []string{"volcano"})
	assert.ErrorIs(t, err, selector.ErrNoNews)

	feeds.add("volcano", "Fresh Reuters story", "https://www.reuters.com/fresh", 3*24*time.Hour)
	topic, err := sel.Select(context.Background(), []string{"volcano"})
	require.NoError(t, err)
	assert.Equal(t, "week", topic.Window)
	assert.Equal(t, "https://www.reuters.com/fresh", topic.Link)
}
