// Package tts 는 스크립트 텍스트를 내레이션 MP3 로 변환한다.
package tts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"news-shorts/config"
	"news-shorts/shell"
)

var ErrEmptyText = errors.New("tts: empty text")

// Synthesizer 는 text 를 읽어 outPath 에 음성 파일을 쓴다.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text, outPath string) error
}

// New 는 tts.engine 설정에 맞는 Synthesizer 를 만든다.
func New(cfg config.TTSConfig) (Synthesizer, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", "gtts":
		return NewGoogleTTS(cfg), nil
	case "command":
		return NewCommandTTS(cfg, shell.NewExecRunner()), nil
	default:
		return nil, fmt.Errorf("unknown tts engine %q", cfg.Engine)
	}
}

// SynthesizeFile 은 스크립트 파일을 읽어 음성으로 변환한다.
func SynthesizeFile(ctx context.Context, s Synthesizer, scriptPath, outPath string) error {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	text := SpeechText(string(data))
	if text == "" {
		return ErrEmptyText
	}

	start := time.Now()
	if err := s.Synthesize(ctx, text, outPath); err != nil {
		return fmt.Errorf("%s synthesize: %w", s.Name(), err)
	}
	config.Logger.Infof("[tts] %s wrote %s in %s", s.Name(), outPath, time.Since(start).Round(time.Millisecond))
	return nil
}

var urlPattern = regexp.MustCompile(`https?://[^\s)]+`)

// SpeechText 는 읽을 수 없는 URL 을 호스트 이름으로 바꾸고 공백을 정리한다.
func SpeechText(script string) string {
	text := urlPattern.ReplaceAllStringFunc(script, func(raw string) string {
		u, err := url.Parse(strings.TrimRight(raw, ".,;"))
		if err != nil || u.Host == "" {
			return ""
		}
		return strings.TrimPrefix(u.Hostname(), "www.")
	})

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}
