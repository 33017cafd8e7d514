package video_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-shorts/config"
	"news-shorts/shell"
	"news-shorts/video"
)

// fakeRunner 는 명령을 기록하고 마지막 인자(출력 파일)를 만든다.
type fakeRunner struct {
	calls    [][]string
	probe    string
	probeErr error
	failOn   string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.failOn != "" && strings.Contains(strings.Join(args, " "), f.failOn) {
		return errors.New("ffmpeg exploded")
	}
	return os.WriteFile(args[len(args)-1], []byte("x"), 0o644)
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.probe), f.probeErr
}

func writeFile(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	return path
}

func setup(t *testing.T, nImages int) (string, video.Request) {
	t.Helper()
	dir := t.TempDir()
	imgDir := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))
	for i := nImages; i >= 1; i-- {
		writeFile(t, filepath.Join(imgDir, "img_0"+strconv.Itoa(i)+".jpg"))
	}
	writeFile(t, filepath.Join(imgDir, "notes.txt"))
	return dir, video.Request{
		ImagesDir: imgDir,
		Voice:     writeFile(t, filepath.Join(dir, "voice.mp3")),
		Output:    filepath.Join(dir, "final.mp4"),
	}
}

func testConfig(t *testing.T) config.VideoConfig {
	cfg := config.Default().Video
	cfg.WorkDir = t.TempDir()
	return cfg
}

func TestBuildCommandPlan(t *testing.T) {
	dir, req := setup(t, 4)
	req.Music = writeFile(t, filepath.Join(dir, "bg.mp3"))

	runner := &fakeRunner{probe: "42.5\n"}
	res, err := video.NewBuilder(testConfig(t), runner).Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Clips)
	assert.Equal(t, 15.0, res.ClipSec)
	assert.Equal(t, 42.5, res.VoiceSec)
	assert.True(t, res.Music)
	assert.False(t, res.SFX)

	// ffprobe + 4 clips + concat + mix + mux
	require.Len(t, runner.calls, 8)
	assert.Equal(t, "ffprobe", runner.calls[0][0])

	clip := strings.Join(runner.calls[1], " ")
	assert.Contains(t, clip, "-loop 1 -i "+filepath.Join(req.ImagesDir, "img_01.jpg"))
	assert.Contains(t, clip, "scale=1080:1920:force_original_aspect_ratio=decrease")
	assert.Contains(t, clip, "fade=t=in:st=0:d=0.50,fade=t=out:st=14.50:d=0.50")
	assert.Contains(t, clip, "-t 15.00 -r 30 -c:v libx264 -pix_fmt yuv420p")
	assert.Contains(t, strings.Join(runner.calls[4], " "), "img_04.jpg")

	assert.Contains(t, strings.Join(runner.calls[5], " "), "-f concat -safe 0")

	mix := strings.Join(runner.calls[6], " ")
	assert.Contains(t, mix, "-stream_loop -1 -t 42.50 -i "+req.Music)
	assert.Contains(t, mix, "[0:a]volume=1[a0];[1:a]volume=0.18[bg];[a0][bg]amix=inputs=2:duration=first:dropout_transition=2[aout]")
	assert.Contains(t, mix, "-c:a libmp3lame -q:a 4")

	mux := runner.calls[7]
	assert.Equal(t, req.Output, mux[len(mux)-1])
	assert.Contains(t, strings.Join(mux, " "), "-map 0:v -map 1:a -c:v libx264 -c:a aac -shortest -pix_fmt yuv420p -movflags +faststart")
}

func TestBuildWithoutMusicUsesNarrationOnly(t *testing.T) {
	_, req := setup(t, 3)
	req.Music = "/does/not/exist.mp3"

	runner := &fakeRunner{probe: "30"}
	res, err := video.NewBuilder(testConfig(t), runner).Build(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, res.Music)
	assert.Equal(t, 20.0, res.ClipSec)
	// ffprobe + 3 clips + concat + mux
	require.Len(t, runner.calls, 6)
	mux := runner.calls[5]
	assert.Contains(t, mux, req.Voice)
}

func TestBuildDurationFromVoiceAndSFX(t *testing.T) {
	dir, req := setup(t, 2)
	req.SFXShutter = writeFile(t, filepath.Join(dir, "shutter.mp3"))
	req.SFXFlash = writeFile(t, filepath.Join(dir, "flash.mp3"))

	cfg := testConfig(t)
	cfg.DurationFromVoice = true
	cfg.SFX = true

	runner := &fakeRunner{probe: "25.0"}
	res, err := video.NewBuilder(cfg, runner).Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 25.0, res.TargetSec)
	assert.Equal(t, 12.5, res.ClipSec)
	assert.True(t, res.SFX)

	mix := strings.Join(runner.calls[4], " ")
	assert.Contains(t, mix, "asplit=2[sh0][sh1]")
	assert.Contains(t, mix, "[sh1]adelay=12500:all=1[shd1]")
	assert.Contains(t, mix, "amix=inputs=4")
}

func TestBuildNoImages(t *testing.T) {
	dir := t.TempDir()
	voice := writeFile(t, filepath.Join(dir, "voice.mp3"))

	_, err := video.NewBuilder(testConfig(t), &fakeRunner{}).Build(context.Background(), video.Request{
		ImagesDir: dir, Voice: voice, Output: filepath.Join(dir, "final.mp4"),
	})
	assert.ErrorIs(t, err, video.ErrNoImages)
}

func TestBuildCleansWorkDirOnFailure(t *testing.T) {
	_, req := setup(t, 2)
	cfg := testConfig(t)

	runner := &fakeRunner{probe: "10", failOn: "concat"}
	_, err := video.NewBuilder(cfg, runner).Build(context.Background(), req)
	require.Error(t, err)

	entries, err := os.ReadDir(cfg.WorkDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClipDuration(t *testing.T) {
	assert.Equal(t, 8.57, video.ClipDuration(60, 7))
	assert.Equal(t, 15.0, video.ClipDuration(60, 4))
	assert.Equal(t, 0.0, video.ClipDuration(60, 0))
}

// 실제 ffmpeg 가 있을 때만 돈다.
// ffmpegFixture 는 단색 이미지 두 장과 voiceSec 길이의 사인파 음성을 만든다.
func ffmpegFixture(t *testing.T, voiceSec int) (imgDir, voice string, runner *shell.ExecRunner) {
	t.Helper()
	if !shell.Available("ffmpeg") || !shell.Available("ffprobe") {
		t.Skip("ffmpeg not on PATH")
	}
	dir := t.TempDir()
	imgDir = filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))

	for i, c := range []color.RGBA{{R: 200, A: 255}, {G: 200, A: 255}} {
		img := image.NewRGBA(image.Rect(0, 0, 90, 160))
		for x := 0; x < 90; x++ {
			for y := 0; y < 160; y++ {
				img.Set(x, y, c)
			}
		}
		f, err := os.Create(filepath.Join(imgDir, "img_0"+strconv.Itoa(i+1)+".jpg"))
		require.NoError(t, err)
		require.NoError(t, jpeg.Encode(f, img, nil))
		require.NoError(t, f.Close())
	}

	runner = shell.NewExecRunner()
	voice = filepath.Join(dir, "voice.mp3")
	src := "sine=frequency=440:duration=" + strconv.Itoa(voiceSec)
	require.NoError(t, runner.Run(context.Background(), "ffmpeg", "-y", "-f", "lavfi", "-i", src, "-c:a", "libmp3lame", voice))
	return imgDir, voice, runner
}

func TestBuildWithFFmpeg(t *testing.T) {
	imgDir, voice, runner := ffmpegFixture(t, 4)
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.Width, cfg.Height, cfg.FPS = 180, 320, 10
	cfg.DurationSec = 4

	b := video.NewBuilder(cfg, runner)
	out := filepath.Join(t.TempDir(), "final.mp4")
	res, err := b.Build(ctx, video.Request{ImagesDir: imgDir, Voice: voice, Output: out})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.ClipSec)

	dur, err := b.Probe(ctx, out)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, dur, 0.3)
}

// 음성이 목표 길이보다 짧으면 -shortest 때문에 결과는 음성 길이에서 끝난다.
func TestBuildWithFFmpegShortVoiceEndsWithNarration(t *testing.T) {
	imgDir, voice, runner := ffmpegFixture(t, 2)
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.Width, cfg.Height, cfg.FPS = 180, 320, 10
	cfg.DurationSec = 6

	b := video.NewBuilder(cfg, runner)
	out := filepath.Join(t.TempDir(), "final.mp4")
	res, err := b.Build(ctx, video.Request{ImagesDir: imgDir, Voice: voice, Output: out})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.ClipSec)

	dur, err := b.Probe(ctx, out)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, dur, 0.3)
}

func TestMuxArgsStopsAtShortestStream(t *testing.T) {
	args := video.MuxArgs("video.mp4", "mix.mp3", "final.mp4")
	assert.Contains(t, args, "-shortest")
	assert.Equal(t, "final.mp4", args[len(args)-1])
}
