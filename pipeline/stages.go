// Package pipeline 은 각 스테이지를 파일 입출력 단위로 묶고, run 커맨드의 전체 실행을 담당한다.
// 스테이지 함수는 CLI 서브커맨드와 Orchestrator 가 함께 사용한다.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"news-shorts/config"
	"news-shorts/feeder"
	"news-shorts/history"
	"news-shorts/images"
	"news-shorts/models"
	"news-shorts/resolver"
	"news-shorts/scriptgen"
	"news-shorts/selector"
	"news-shorts/shell"
	"news-shorts/tts"
	"news-shorts/video"
)

// Stage names, also used as keys in pipeline_state.json.
const (
	StageFetchNews      = "fetch-news"
	StageGenerateScript = "generate-script"
	StageFetchImages    = "fetch-images"
	StageTTS            = "tts"
	StageBuildVideo     = "build-video"
	StageUploadTikTok   = "upload-tiktok"
	StageNotify         = "notify"
)

// Files 는 한 실행 디렉터리 안의 스테이지 산출물 경로다.
type Files struct {
	Dir      string
	Topic    string
	Script   string
	Keywords string
	Images   string
	Manifest string
	Voice    string
	Video    string
	State    string
}

func RunFiles(dir string) Files {
	return Files{
		Dir:      dir,
		Topic:    filepath.Join(dir, "topic.json"),
		Script:   filepath.Join(dir, "script.txt"),
		Keywords: filepath.Join(dir, "image_keywords.json"),
		Images:   filepath.Join(dir, "images"),
		Manifest: filepath.Join(dir, "images.json"),
		Voice:    filepath.Join(dir, "voice.mp3"),
		Video:    filepath.Join(dir, "final.mp4"),
		State:    filepath.Join(dir, "pipeline_state.json"),
	}
}

type NewsOptions struct {
	KeywordsFile string
	HistoryPath  string
	Out          string
	// Record 가 true 이면 선택된 기사를 히스토리에 추가한다.
	Record bool
}

// FetchNews 는 키워드 목록으로 기사 하나를 골라 topic.json 에 쓴다.
// 후보가 없으면 센티널을 쓰고 오류 없이 센티널을 돌려준다.
func FetchNews(ctx context.Context, cfg config.AppConfig, opts NewsOptions) (*models.Topic, error) {
	keywords, err := config.ReadKeywords(opts.KeywordsFile)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords in %s", opts.KeywordsFile)
	}

	store, err := history.Open(ctx, cfg.History, opts.HistoryPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(context.WithoutCancel(ctx)); err != nil {
			config.Logger.Warnf("[fetch-news] close history: %v", err)
		}
	}()

	sel := selector.New(
		feeder.NewFetcher(cfg.News),
		resolver.NewFromConfig(cfg.Selection, cfg.News),
		store,
		selector.NewPolicy(cfg.Selection),
	)

	topic, err := sel.Select(ctx, keywords)
	switch {
	case errors.Is(err, selector.ErrNoNews):
		config.Logger.Warnf("[fetch-news] no qualifying news for %d keywords", len(keywords))
		topic = models.NoNewsTopic()
	case err != nil:
		return nil, err
	}

	if err := models.WriteJSONFile(opts.Out, topic); err != nil {
		return nil, err
	}
	if topic.IsError() || !opts.Record {
		return topic, nil
	}

	entry := models.HistoryEntry{Link: topic.Link, Title: topic.Title, Keyword: topic.Keyword, UsedAt: time.Now().UTC()}
	if err := store.Add(ctx, entry); err != nil {
		return topic, fmt.Errorf("record history: %w", err)
	}
	if topic.FeedLink != "" && topic.FeedLink != topic.Link {
		feedEntry := entry
		feedEntry.Link = topic.FeedLink
		if err := store.Add(ctx, feedEntry); err != nil {
			config.Logger.Warnf("[fetch-news] record feed link: %v", err)
		}
	}
	return topic, nil
}

type ScriptOptions struct {
	TopicPath string
	// Keywords 는 topic 이 센티널이거나 없을 때 쓰는 원시 키워드다.
	Keywords    []string
	ScriptOut   string
	KeywordsOut string
	// Generator 가 nil 이면 설정으로 새로 만든다.
	Generator *scriptgen.Generator
}

// GenerateScript 는 실패하지 않는 스크립트 생성기를 돌리고 파일 두 개를 쓴다.
// 파일 쓰기 오류만 돌려준다.
func GenerateScript(ctx context.Context, cfg config.AppConfig, opts ScriptOptions) (*models.Script, error) {
	topic := models.NoNewsTopic()
	if opts.TopicPath != "" {
		t, err := models.ReadTopic(opts.TopicPath)
		if err != nil {
			config.Logger.Warnf("[generate-script] %v; using raw keywords", err)
		}
		topic = t
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Script.TimeoutSec)*time.Second+30*time.Second)
	defer cancel()

	gen := opts.Generator
	if gen == nil {
		gen = scriptgen.NewFromConfig(cfg)
	}
	script := gen.Generate(ctx, topic, opts.Keywords)
	if err := scriptgen.WriteOutputs(script, opts.ScriptOut, opts.KeywordsOut); err != nil {
		return script, err
	}
	config.Logger.Infof("[generate-script] provider=%s fallback=%t keywords=%d", script.Provider, script.Fallback, len(script.Keywords))
	return script, nil
}

type ImageOptions struct {
	ScriptPath   string
	KeywordsPath string
	TopicPath    string
	OutDir       string
	ManifestPath string
}

func FetchImages(ctx context.Context, cfg config.AppConfig, opts ImageOptions) (*models.ImageManifest, error) {
	queries, err := images.LoadQueries(opts.KeywordsPath, opts.ScriptPath)
	if err != nil {
		config.Logger.Warnf("[fetch-images] %v; only placeholders will be produced", err)
	}

	req := images.Request{Queries: queries, OutDir: opts.OutDir}
	if opts.TopicPath != "" {
		if t, err := models.ReadTopic(opts.TopicPath); err == nil {
			req.Topic = t
		}
	}

	manifest, err := images.NewFetcher(cfg.Images, cfg.Video).Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if opts.ManifestPath != "" {
		if err := models.WriteJSONFile(opts.ManifestPath, manifest); err != nil {
			return manifest, err
		}
	}
	return manifest, nil
}

func Speak(ctx context.Context, cfg config.AppConfig, scriptPath, out string) error {
	s, err := tts.New(cfg.TTS)
	if err != nil {
		return err
	}
	return tts.SynthesizeFile(ctx, s, scriptPath, out)
}

// BuildVideo 는 runner 가 nil 이면 실제 ffmpeg 를 실행한다.
func BuildVideo(ctx context.Context, cfg config.AppConfig, req video.Request, runner shell.Runner) (*video.Result, error) {
	if req.Music == "" {
		req.Music = cfg.Paths.Music
	}
	if req.SFXShutter == "" {
		req.SFXShutter = cfg.Paths.SFXShutter
	}
	if req.SFXFlash == "" {
		req.SFXFlash = cfg.Paths.SFXFlash
	}
	return video.NewBuilder(cfg.Video, runner).Build(ctx, req)
}
