package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"news-shorts/config"
	"news-shorts/models"
	"news-shorts/scriptgen"
	"news-shorts/shell"
	"news-shorts/telegram"
	"news-shorts/tiktok"
	"news-shorts/video"
)

var ErrNoVideo = errors.New("pipeline: final video was not produced")

// Notifier 는 실행 결과 알림 채널이다.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Publisher 는 완성된 영상을 게시한다.
type Publisher interface {
	Upload(ctx context.Context, videoPath, caption string) error
}

type RunOptions struct {
	KeywordsFile string
	HistoryPath  string
	OutputDir    string
	Upload       bool
	Notify       bool
	// NoRecord 가 true 이면 선택된 기사를 히스토리에 남기지 않는다.
	NoRecord bool
}

// Orchestrator 는 스테이지 1~5 를 한 실행 디렉터리 안에서 순서대로 돌린다.
// LLM, 이미지 실패는 대체 결과로 진행하고 최종 영상이 없을 때만 실패로 본다.
type Orchestrator struct {
	cfg       config.AppConfig
	opts      RunOptions
	runner    shell.Runner
	notifier  Notifier
	publisher Publisher
	generator *scriptgen.Generator
	newID     func() string
}

type OrchestratorOption func(*Orchestrator)

// WithRunner 는 ffmpeg 실행기를 바꾼다.
func WithRunner(r shell.Runner) OrchestratorOption {
	return func(o *Orchestrator) { o.runner = r }
}

func WithNotifier(n Notifier) OrchestratorOption {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithPublisher(p Publisher) OrchestratorOption {
	return func(o *Orchestrator) { o.publisher = p }
}

func NewOrchestrator(cfg config.AppConfig, opts RunOptions, options ...OrchestratorOption) *Orchestrator {
	if opts.KeywordsFile == "" {
		opts.KeywordsFile = cfg.Paths.KeywordsFile
	}
	if opts.OutputDir == "" {
		opts.OutputDir = cfg.Paths.Output
	}
	o := &Orchestrator{
		cfg:       cfg,
		opts:      opts,
		notifier:  telegram.NewNotifier(cfg.Telegram),
		publisher: tiktok.NewUploader(cfg.TikTok, cfg.Browser),
		generator: scriptgen.NewFromConfig(cfg),
		newID:     NewRunID,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// NewRunID 는 uuid 앞 8 자리를 실행 ID 로 쓴다.
func NewRunID() string {
	return uuid.NewString()[:8]
}

// Run 은 한 번의 전체 실행이다. 반환되는 상태는 오류가 있어도 nil 이 아니다.
func (o *Orchestrator) Run(ctx context.Context) (*models.PipelineState, error) {
	runID := o.newID()
	files := RunFiles(filepath.Join(o.opts.OutputDir, runID))
	state := models.NewPipelineState(runID, files.Dir)

	if err := os.MkdirAll(files.Dir, 0o755); err != nil {
		return state, fmt.Errorf("create run dir: %w", err)
	}
	config.InfoWithFields("[run] started", config.Fields{"run_id": runID, "run_dir": files.Dir})

	// 1. fetch-news
	o.stage(ctx, state, StageFetchNews, func() error {
		topic, err := FetchNews(ctx, o.cfg, NewsOptions{
			KeywordsFile: o.opts.KeywordsFile,
			HistoryPath:  o.opts.HistoryPath,
			Out:          files.Topic,
			Record:       !o.opts.NoRecord,
		})
		state.Topic = topic
		if topic != nil {
			state.Artifacts["topic"] = files.Topic
		}
		return err
	})
	if state.Topic == nil {
		state.Topic = models.NoNewsTopic()
		_ = models.WriteJSONFile(files.Topic, state.Topic)
	}

	// 2. generate-script
	o.stage(ctx, state, StageGenerateScript, func() error {
		var raw []string
		if state.Topic.IsError() {
			kws, err := config.ReadKeywords(o.opts.KeywordsFile)
			if err != nil {
				config.Logger.Warnf("[run] %v", err)
			}
			raw = kws
		}
		script, err := GenerateScript(ctx, o.cfg, ScriptOptions{
			TopicPath:   files.Topic,
			Keywords:    raw,
			ScriptOut:   files.Script,
			KeywordsOut: files.Keywords,
			Generator:   o.generator,
		})
		if err == nil {
			state.Artifacts["script"] = files.Script
			state.Artifacts["image_keywords"] = files.Keywords
			if script.Fallback {
				state.Errors[StageGenerateScript] = "llm failed; fallback script used"
			}
		}
		return err
	})

	// 3. fetch-images
	o.stage(ctx, state, StageFetchImages, func() error {
		manifest, err := FetchImages(ctx, o.cfg, ImageOptions{
			ScriptPath:   files.Script,
			KeywordsPath: files.Keywords,
			TopicPath:    files.Topic,
			OutDir:       files.Images,
			ManifestPath: files.Manifest,
		})
		if err == nil {
			state.Artifacts["images"] = files.Images
			state.Artifacts["manifest"] = files.Manifest
			if manifest.Downloaded() == 0 {
				state.Errors[StageFetchImages] = "no images downloaded; placeholders used"
			}
		}
		return err
	})

	// 4. tts
	o.stage(ctx, state, StageTTS, func() error {
		err := Speak(ctx, o.cfg, files.Script, files.Voice)
		if err == nil {
			state.Artifacts["voice"] = files.Voice
		}
		return err
	})

	// 5. build-video
	o.stage(ctx, state, StageBuildVideo, func() error {
		_, err := BuildVideo(ctx, o.cfg, video.Request{
			ImagesDir: files.Images,
			Voice:     files.Voice,
			Output:    files.Video,
		}, o.runner)
		return err
	})

	if info, err := os.Stat(files.Video); err == nil && info.Size() > 0 {
		state.Success = true
		state.Artifacts["video"] = files.Video
	}
	o.saveState(files, state)

	if state.Success && o.opts.Upload && o.publisher != nil {
		o.stage(ctx, state, StageUploadTikTok, func() error {
			return o.publisher.Upload(ctx, files.Video, o.caption(files))
		})
	}

	if o.opts.Notify && o.notifier != nil {
		o.stage(ctx, state, StageNotify, func() error {
			// 취소된 실행도 실패 알림은 보낸다
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
			defer cancel()
			return o.notifier.Notify(nctx, telegram.RunMessage(state))
		})
	}

	finished := time.Now()
	state.FinishedAt = &finished
	o.saveState(files, state)

	fields := config.Fields{"run_id": runID, "success": state.Success, "elapsed_ms": finished.Sub(state.StartedAt).Milliseconds()}
	if !state.Success {
		config.ErrorWithFields("[run] finished without video", fields)
		return state, ErrNoVideo
	}
	config.InfoWithFields("[run] finished", fields)
	return state, nil
}

func (o *Orchestrator) stage(ctx context.Context, state *models.PipelineState, name string, fn func() error) {
	if err := ctx.Err(); err != nil {
		state.Fail(name, err)
		return
	}
	start := time.Now()
	err := fn()
	fields := config.Fields{"run_id": state.RunID, "stage": name, "elapsed_ms": time.Since(start).Milliseconds()}
	if err != nil {
		state.Fail(name, err)
		fields["error"] = err.Error()
		config.ErrorWithFields("[run] stage failed", fields)
		return
	}
	config.InfoWithFields("[run] stage done", fields)
}

func (o *Orchestrator) caption(files Files) string {
	var kws []string
	_ = models.ReadJSONFile(files.Keywords, &kws)
	headline := ""
	if t, err := models.ReadTopic(files.Topic); err == nil && !t.IsError() {
		headline = t.Headline()
	}
	return tiktok.Caption(headline, kws)
}

func (o *Orchestrator) saveState(files Files, state *models.PipelineState) {
	if err := models.WriteJSONFile(files.State, state); err != nil {
		config.Logger.Errorf("[run] write %s: %v", files.State, err)
		return
	}
	state.Artifacts["state"] = files.State
}
