package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-shorts/config"
	"news-shorts/history"
	"news-shorts/models"
	"news-shorts/pipeline"
)

func feedXML(now time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<item>
  <title>Undersea volcano wakes near Tonga - Reuters</title>
  <link>https://www.reuters.com/world/asia-pacific/volcano-tonga-2025</link>
  <pubDate>%s</pubDate>
  <description>Scientists detected fresh activity at an undersea volcano.</description>
  <source url="https://www.reuters.com">Reuters</source>
</item>
<item>
  <title>My volcano trip - Medium</title>
  <link>https://medium.com/@someone/volcano</link>
  <pubDate>%s</pubDate>
</item>
</channel></rss>`, now.Add(-2*time.Hour).UTC().Format(http.TimeFormat), now.Add(-time.Hour).UTC().Format(http.TimeFormat))
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	now := time.Now()
	mux := http.NewServeMux()
	mux.HandleFunc("/rss/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML(now)))
	})
	mux.HandleFunc("/tts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, srv *httptest.Server) config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	kw := filepath.Join(dir, "keywords.txt")
	require.NoError(t, os.WriteFile(kw, []byte("# topics\nvolcano\n"), 0o644))

	cfg := config.Default()
	cfg.Paths.KeywordsFile = kw
	cfg.Paths.Output = filepath.Join(dir, "out")
	cfg.Paths.Music = ""
	cfg.News.Endpoint = srv.URL + "/rss/search"
	cfg.News.RequestIntervalMs = 0
	cfg.Selection.ResolvePages = false
	cfg.History.Path = filepath.Join(dir, "history.json")
	cfg.Script.Provider = "template"
	cfg.Images.RequestsPerMinute = 0
	cfg.TTS.Endpoint = srv.URL + "/tts"
	cfg.Video.Width = 54
	cfg.Video.Height = 96
	cfg.Video.WorkDir = filepath.Join(dir, "work")
	return cfg
}

type fakeRunner struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return []byte("12.0\n"), nil
}

type recorder struct {
	messages []string
	uploads  []string
	captions []string
	err      error
}

func (r *recorder) Notify(ctx context.Context, text string) error {
	r.messages = append(r.messages, text)
	return r.err
}

func (r *recorder) Upload(ctx context.Context, videoPath, caption string) error {
	r.uploads = append(r.uploads, videoPath)
	r.captions = append(r.captions, caption)
	return nil
}

func TestFetchNewsWritesTopicAndRecordsHistory(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig(t, srv)
	out := filepath.Join(t.TempDir(), "topic.json")

	topic, err := pipeline.FetchNews(context.Background(), cfg, pipeline.NewsOptions{
		KeywordsFile: cfg.Paths.KeywordsFile,
		Out:          out,
		Record:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://www.reuters.com/world/asia-pacific/volcano-tonga-2025", topic.Link)
	assert.Equal(t, models.TierTrusted, topic.Tier)
	assert.Equal(t, "24 hours", topic.Window)

	onDisk, err := models.ReadTopic(out)
	require.NoError(t, err)
	assert.Equal(t, topic.Link, onDisk.Link)

	store, err := history.OpenFile(cfg.History.Path)
	require.NoError(t, err)
	require.Len(t, store.Entries(), 1)
	assert.Equal(t, "volcano", store.Entries()[0].Keyword)

	// 같은 기사는 다시 선택되지 않는다
	topic, err = pipeline.FetchNews(context.Background(), cfg, pipeline.NewsOptions{
		KeywordsFile: cfg.Paths.KeywordsFile,
		Out:          out,
		Record:       true,
	})
	require.NoError(t, err)
	assert.True(t, topic.IsError())
	assert.Equal(t, models.ErrorNoNews, topic.Error)
}

func TestFetchNewsWithoutRecord(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig(t, srv)

	_, err := pipeline.FetchNews(context.Background(), cfg, pipeline.NewsOptions{
		KeywordsFile: cfg.Paths.KeywordsFile,
		Out:          filepath.Join(t.TempDir(), "topic.json"),
	})
	require.NoError(t, err)

	store, err := history.OpenFile(cfg.History.Path)
	require.NoError(t, err)
	assert.Empty(t, store.Entries())
}

func TestFetchNewsMissingKeywords(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig(t, srv)

	_, err := pipeline.FetchNews(context.Background(), cfg, pipeline.NewsOptions{
		KeywordsFile: filepath.Join(t.TempDir(), "missing.txt"),
		Out:          filepath.Join(t.TempDir(), "topic.json"),
	})
	assert.Error(t, err)
}

func TestGenerateScriptFromSentinelUsesKeywords(t *testing.T) {
	dir := t.TempDir()
	topicPath := filepath.Join(dir, "topic.json")
	require.NoError(t, models.WriteJSONFile(topicPath, models.NoNewsTopic()))

	cfg := config.Default()
	cfg.Script.Provider = "template"

	script, err := pipeline.GenerateScript(context.Background(), cfg, pipeline.ScriptOptions{
		TopicPath:   topicPath,
		Keywords:    []string{"volcano"},
		ScriptOut:   filepath.Join(dir, "script.txt"),
		KeywordsOut: filepath.Join(dir, "image_keywords.json"),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(script.Keywords), 3)

	data, err := os.ReadFile(filepath.Join(dir, "script.txt"))
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(data)))

	var kws []string
	require.NoError(t, models.ReadJSONFile(filepath.Join(dir, "image_keywords.json"), &kws))
	assert.Equal(t, script.Keywords, kws)
}

func TestOrchestratorRun(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig(t, srv)
	rec := &recorder{}
	runner := &fakeRunner{}

	o := pipeline.NewOrchestrator(cfg, pipeline.RunOptions{Upload: true, Notify: true},
		pipeline.WithRunner(runner), pipeline.WithNotifier(rec), pipeline.WithPublisher(rec))

	state, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Success)
	assert.Len(t, state.RunID, 8)
	assert.Equal(t, filepath.Join(cfg.Paths.Output, state.RunID), state.RunDir)
	assert.NotNil(t, state.FinishedAt)

	files := pipeline.RunFiles(state.RunDir)
	for _, p := range []string{files.Topic, files.Script, files.Keywords, files.Manifest, files.Voice, files.Video, files.State} {
		assert.FileExists(t, p)
	}
	assert.Equal(t, files.Video, state.Artifacts["video"])
	assert.Equal(t, "https://www.reuters.com/world/asia-pacific/volcano-tonga-2025", state.Topic.Link)

	imgs, _ := filepath.Glob(filepath.Join(files.Images, "img_*.jpg"))
	assert.GreaterOrEqual(t, len(imgs), cfg.Images.MinCount)

	require.Len(t, rec.uploads, 1)
	assert.Equal(t, files.Video, rec.uploads[0])
	assert.Contains(t, rec.captions[0], "Undersea volcano wakes near Tonga")
	require.Len(t, rec.messages, 1)
	assert.Contains(t, rec.messages[0], "Pipeline finished")

	var saved models.PipelineState
	require.NoError(t, models.ReadJSONFile(files.State, &saved))
	assert.True(t, saved.Success)
	assert.Equal(t, state.RunID, saved.RunID)
	assert.Greater(t, runner.calls, 0)
}

func TestOrchestratorRunWithoutVideo(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig(t, srv)
	cfg.TTS.Endpoint = srv.URL + "/missing"
	rec := &recorder{err: errors.New("telegram down")}

	o := pipeline.NewOrchestrator(cfg, pipeline.RunOptions{Upload: true, Notify: true},
		pipeline.WithRunner(&fakeRunner{}), pipeline.WithNotifier(rec), pipeline.WithPublisher(rec))

	state, err := o.Run(context.Background())
	assert.ErrorIs(t, err, pipeline.ErrNoVideo)
	assert.False(t, state.Success)
	assert.Contains(t, state.Errors, pipeline.StageTTS)
	assert.Contains(t, state.Errors, pipeline.StageBuildVideo)
	assert.Contains(t, state.Errors, pipeline.StageNotify)
	assert.Empty(t, rec.uploads)
	require.Len(t, rec.messages, 1)
	assert.Contains(t, rec.messages[0], "Pipeline failed")
}

func TestScheduleRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- pipeline.Schedule(ctx, config.ScheduleConfig{Cron: "@every 1s", Timezone: "UTC"}, func(context.Context) {
			ran <- struct{}{}
		})
	}()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduleInvalidSpec(t *testing.T) {
	err := pipeline.Schedule(context.Background(), config.ScheduleConfig{Cron: "not a cron"}, func(context.Context) {})
	assert.Error(t, err)

	err = pipeline.Schedule(context.Background(), config.ScheduleConfig{Cron: "@hourly", Timezone: "Mars/Olympus"}, func(context.Context) {})
	assert.Error(t, err)
}
