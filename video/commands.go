package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ClipArgs 는 이미지 한 장을 per 초짜리 세로 클립으로 만드는 ffmpeg 인자다.
func (b *Builder) ClipArgs(img string, per float64, out string) []string {
	w, h := b.cfg.Width, b.cfg.Height
	fade := b.cfg.FadeSec
	if fade*2 > per {
		fade = per / 2
	}
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fade=t=in:st=0:d=%s,fade=t=out:st=%s:d=%s",
		w, h, w, h, secs(fade), secs(per-fade), secs(fade),
	)
	return []string{
		"-y",
		"-loop", "1",
		"-i", img,
		"-vf", vf,
		"-t", secs(per),
		"-r", fmt.Sprint(b.cfg.FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		out,
	}
}

// WriteConcatList 는 concat demuxer 용 목록 파일을 쓴다.
func WriteConcatList(path string, clips []string) error {
	var sb strings.Builder
	for _, c := range clips {
		abs, err := filepath.Abs(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

func ConcatArgs(listFile, out string) []string {
	return []string{"-y", "-f", "concat", "-safe", "0", "-i", listFile, "-c", "copy", out}
}

// AudioMix 는 내레이션, 반복 재생되는 배경 음악, 클립 시작 효과음을 섞는 계획이다.
type AudioMix struct {
	Voice       string
	VoiceSec    float64
	Music       string
	Shutter     string
	Flash       string
	VoiceVolume float64
	MusicVolume float64
	SFXVolume   float64
	ClipSec     float64
	Clips       int
}

// Args 는 섞을 것이 내레이션뿐이면 nil 을 돌려준다.
func (m AudioMix) Args(out string) []string {
	if m.Music == "" && m.Shutter == "" && m.Flash == "" {
		return nil
	}

	args := []string{"-y", "-i", m.Voice}
	filters := []string{fmt.Sprintf("[0:a]volume=%s[a0]", vol(m.VoiceVolume))}
	labels := []string{"[a0]"}
	input := 1

	if m.Music != "" {
		args = append(args, "-stream_loop", "-1")
		if m.VoiceSec > 0 {
			args = append(args, "-t", secs(m.VoiceSec))
		}
		args = append(args, "-i", m.Music)
		filters = append(filters, fmt.Sprintf("[%d:a]volume=%s[bg]", input, vol(m.MusicVolume)))
		labels = append(labels, "[bg]")
		input++
	}

	if m.Shutter != "" && m.Clips > 0 {
		args = append(args, "-i", m.Shutter)
		split := fmt.Sprintf("[%d:a]volume=%s,asplit=%d", input, vol(m.SFXVolume), m.Clips)
		for i := 0; i < m.Clips; i++ {
			split += fmt.Sprintf("[sh%d]", i)
		}
		filters = append(filters, split)
		for i := 0; i < m.Clips; i++ {
			delay := int(float64(i) * m.ClipSec * 1000)
			filters = append(filters, fmt.Sprintf("[sh%d]adelay=%d:all=1[shd%d]", i, delay, i))
			labels = append(labels, fmt.Sprintf("[shd%d]", i))
		}
		input++
	}

	if m.Flash != "" {
		args = append(args, "-i", m.Flash)
		filters = append(filters, fmt.Sprintf("[%d:a]volume=%s[fl]", input, vol(m.SFXVolume)))
		labels = append(labels, "[fl]")
	}

	filters = append(filters, fmt.Sprintf("%samix=inputs=%d:duration=first:dropout_transition=2[aout]", strings.Join(labels, ""), len(labels)))

	return append(args,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "[aout]",
		"-c:a", "libmp3lame",
		"-q:a", "4",
		out,
	)
}

func MuxArgs(video, audio, out string) []string {
	return []string{
		"-y",
		"-i", video,
		"-i", audio,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-shortest",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		out,
	}
}

func vol(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
