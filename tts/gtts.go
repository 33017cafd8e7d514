package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"news-shorts/config"
	"news-shorts/feeder"
	"news-shorts/ratelimit"
)

const (
	gttsChunkInterval = 150 * time.Millisecond
	maxSegmentBytes   = 5 << 20
)

// GoogleTTS 는 Google Translate 음성 엔드포인트를 사용한다.
// 엔드포인트는 한 번에 약 100 자만 받으므로 조각별 MP3 를 이어 붙인다.
type GoogleTTS struct {
	endpoint   string
	language   string
	chunkChars int
	client     *http.Client
	limiter    *ratelimit.HostRateLimiter
}

func NewGoogleTTS(cfg config.TTSConfig) *GoogleTTS {
	return &GoogleTTS{
		endpoint:   cfg.Endpoint,
		language:   cfg.Language,
		chunkChars: cfg.ChunkChars,
		client:     feeder.NewHTTPClient(time.Duration(cfg.TimeoutSec) * time.Second),
		limiter:    ratelimit.NewHostRateLimiter(gttsChunkInterval),
	}
}

func (g *GoogleTTS) Name() string { return "gtts" }

func (g *GoogleTTS) Synthesize(ctx context.Context, text, outPath string) error {
	chunks := Chunk(text, g.chunkChars)
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	var audio bytes.Buffer
	for i, c := range chunks {
		seg, err := g.segment(ctx, c, i, len(chunks))
		if err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		audio.Write(seg)
	}
	config.Logger.Debugf("[tts] gtts %d chunks, %d bytes", len(chunks), audio.Len())

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outPath, audio.Bytes(), 0o644)
}

// SegmentURL 은 한 조각에 대한 요청 주소를 만든다.
func (g *GoogleTTS) SegmentURL(text string, idx, total int) string {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", g.language)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(text)))
	return g.endpoint + "?" + q.Encode()
}

func (g *GoogleTTS) segment(ctx context.Context, text string, idx, total int) ([]byte, error) {
	reqURL := g.SegmentURL(text, idx, total)
	if err := g.limiter.WaitForHost(ctx, reqURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	feeder.SetBrowserHeaders(req)
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSegmentBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio segment")
	}
	return data, nil
}
