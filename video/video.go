// Package video 는 이미지 슬라이드쇼와 내레이션, 배경 음악을 세로 MP4 로 합친다.
// 모든 ffmpeg/ffprobe 호출은 shell.Runner 를 거친다.
package video

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"news-shorts/config"
	"news-shorts/shell"
)

var ErrNoImages = errors.New("video: no images found")

// Request 는 build-video 단계의 입력 파일이다. Music, SFX 는 없어도 된다.
type Request struct {
	ImagesDir  string
	Voice      string
	Music      string
	SFXShutter string
	SFXFlash   string
	Output     string
}

type Result struct {
	Output        string  `json:"output"`
	Clips         int     `json:"clips"`
	ClipSec       float64 `json:"clip_sec"`
	TargetSec     float64 `json:"target_sec"`
	VoiceSec      float64 `json:"voice_sec"`
	Music         bool    `json:"music"`
	SFX           bool    `json:"sfx"`
	WorkDir       string  `json:"work_dir,omitempty"`
	ElapsedMillis int64   `json:"elapsed_ms"`
}

type Builder struct {
	cfg    config.VideoConfig
	runner shell.Runner
}

func NewBuilder(cfg config.VideoConfig, runner shell.Runner) *Builder {
	if runner == nil {
		runner = shell.NewExecRunner()
	}
	return &Builder{cfg: cfg, runner: runner}
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// ListImages 는 dir 의 jpg/jpeg/png 파일을 이름순으로 돌려준다.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// ClipDuration 은 total 을 n 장에 고르게 나누고 소수 둘째 자리로 반올림한다.
func ClipDuration(total float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Round(total/float64(n)*100) / 100
}

func secs(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	imgs, err := ListImages(req.ImagesDir)
	if err != nil {
		return nil, err
	}
	if len(imgs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, req.ImagesDir)
	}
	if !fileExists(req.Voice) {
		return nil, fmt.Errorf("voice file not found: %s", req.Voice)
	}

	work, cleanup, err := b.workDir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res := &Result{Output: req.Output, Clips: len(imgs), WorkDir: work}

	voiceSec, err := b.Probe(ctx, req.Voice)
	if err != nil {
		config.Logger.Warnf("[build-video] ffprobe %s: %v", req.Voice, err)
	}
	res.VoiceSec = voiceSec

	res.TargetSec = b.cfg.DurationSec
	if b.cfg.DurationFromVoice && voiceSec > 0 {
		res.TargetSec = voiceSec
	}
	res.ClipSec = ClipDuration(res.TargetSec, len(imgs))

	var clips []string
	for i, img := range imgs {
		clip := filepath.Join(work, fmt.Sprintf("clip_%02d.mp4", i))
		if err := b.runner.Run(ctx, b.cfg.FFmpegPath, b.ClipArgs(img, res.ClipSec, clip)...); err != nil {
			return nil, fmt.Errorf("render clip %d: %w", i, err)
		}
		clips = append(clips, clip)
	}
	config.Logger.Infof("[build-video] rendered %d clips of %ss", len(clips), secs(res.ClipSec))

	listFile := filepath.Join(work, "list.txt")
	if err := WriteConcatList(listFile, clips); err != nil {
		return nil, err
	}
	concat := filepath.Join(work, "concat.mp4")
	if err := b.runner.Run(ctx, b.cfg.FFmpegPath, ConcatArgs(listFile, concat)...); err != nil {
		return nil, fmt.Errorf("concat clips: %w", err)
	}

	mix := AudioMix{
		Voice:       req.Voice,
		VoiceSec:    voiceSec,
		VoiceVolume: b.cfg.VoiceVolume,
		MusicVolume: b.cfg.MusicVolume,
		SFXVolume:   b.cfg.SFXVolume,
		ClipSec:     res.ClipSec,
		Clips:       len(imgs),
	}
	if fileExists(req.Music) {
		mix.Music = req.Music
	} else {
		config.Logger.Warnf("[build-video] background music not found (%q); narration only", req.Music)
	}
	if b.cfg.SFX {
		if fileExists(req.SFXShutter) {
			mix.Shutter = req.SFXShutter
		}
		if fileExists(req.SFXFlash) {
			mix.Flash = req.SFXFlash
		}
	}
	res.Music = mix.Music != ""
	res.SFX = mix.Shutter != "" || mix.Flash != ""

	audio := req.Voice
	if args := mix.Args(filepath.Join(work, "mixed_audio.mp3")); args != nil {
		if err := b.runner.Run(ctx, b.cfg.FFmpegPath, args...); err != nil {
			return nil, fmt.Errorf("mix audio: %w", err)
		}
		audio = filepath.Join(work, "mixed_audio.mp3")
	}

	if dir := filepath.Dir(req.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := b.runner.Run(ctx, b.cfg.FFmpegPath, MuxArgs(concat, audio, req.Output)...); err != nil {
		return nil, fmt.Errorf("mux final video: %w", err)
	}

	res.ElapsedMillis = time.Since(start).Milliseconds()
	config.Logger.Infof("[build-video] wrote %s (%d clips, music=%t, sfx=%t)", req.Output, res.Clips, res.Music, res.SFX)
	return res, nil
}

func (b *Builder) workDir() (string, func(), error) {
	parent := b.cfg.WorkDir
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", nil, fmt.Errorf("create work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "build-")
	if err != nil {
		return "", nil, fmt.Errorf("create work dir: %w", err)
	}
	if b.cfg.KeepWork {
		return dir, func() { config.Logger.Infof("[build-video] keeping work dir %s", dir) }, nil
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// Probe 는 ffprobe 로 미디어 길이(초)를 잰다.
func (b *Builder) Probe(ctx context.Context, path string) (float64, error) {
	out, err := b.runner.Output(ctx, b.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return v, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
