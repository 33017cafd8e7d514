package history_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-shorts/config"
	"news-shorts/history"
	"news-shorts/models"
)

func TestFileStoreLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`["https://bbc.com/a", "https://cnn.com/b/"]`), 0o644))

	s, err := history.OpenFile(path)
	require.NoError(t, err)

	ctx := context.Background()
	ok, err := s.Contains(ctx, "https://bbc.com/a", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.Contains(ctx, "https://cnn.com/b", "")
	assert.True(t, ok, "trailing slash must not matter")

	ok, _ = s.Contains(ctx, "https://reuters.com/c", "")
	assert.False(t, ok)
}

func TestFileStoreAddIsAppendOnlyAndDeduplicated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	s, err := history.OpenFile(path)
	require.NoError(t, err)

	ctx := context.Background()
	entry := models.HistoryEntry{Link: "https://apnews.com/x", Title: "Mars rover finds water - AP News", Keyword: "mars"}
	require.NoError(t, s.Add(ctx, entry))
	require.NoError(t, s.Add(ctx, entry))
	assert.Len(t, s.Entries(), 1)

	reopened, err := history.OpenFile(path)
	require.NoError(t, err)
	entries := reopened.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "mars", entries[0].Keyword)
	assert.False(t, entries[0].UsedAt.IsZero())

	// 다른 매체가 같은 기사를 다시 실어도 제목으로 걸러진다
	ok, err := reopened.Contains(ctx, "https://yahoo.com/y", "Mars  Rover finds water - Yahoo")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	_, err := history.OpenFile(path)
	assert.Error(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.Default().History
	cfg.Backend = "redis"
	_, err := history.Open(context.Background(), cfg, "")
	assert.Error(t, err)
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "volcano erupts in iceland", history.NormalizeTitle("  Volcano   erupts in Iceland - BBC News"))
	assert.Equal(t, "", history.NormalizeTitle(""))
}

func TestFileStoreRecentNewestFirst(t *testing.T) {
	s, err := history.OpenFile(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)

	ctx := context.Background()
	for _, link := range []string{"https://bbc.com/1", "https://bbc.com/2", "https://bbc.com/3"} {
		require.NoError(t, s.Add(ctx, models.HistoryEntry{Link: link}))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "https://bbc.com/3", recent[0].Link)
	assert.Equal(t, "https://bbc.com/2", recent[1].Link)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
