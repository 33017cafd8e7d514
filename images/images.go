package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"news-shorts/config"
	"news-shorts/feeder"
	"news-shorts/models"
	"news-shorts/parser"
	"news-shorts/ratelimit"
)

const maxDownloadBytes = 15 << 20

// Request 는 fetch-images 단계의 입력이다.
type Request struct {
	Queries []string
	// Topic 이 주어지고 UseArticleImage 가 켜져 있으면 기사 대표 이미지를 첫 장으로 쓴다.
	Topic  *models.Topic
	OutDir string
}

// Fetcher 는 검색어마다 사진 한 장을 받아 세로 프레임으로 맞춘다.
// 실패한 슬롯은 플레이스홀더로 채우며 최소 장수를 항상 보장한다.
type Fetcher struct {
	cfg      config.ImagesConfig
	width    int
	height   int
	client   *http.Client
	pexels   *PexelsClient
	topImage *parser.TopImageFinder
}

func NewFetcher(cfg config.ImagesConfig, video config.VideoConfig) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	client := feeder.NewHTTPClient(timeout)

	f := &Fetcher{
		cfg:      cfg,
		width:    video.Width,
		height:   video.Height,
		client:   client,
		topImage: &parser.TopImageFinder{Client: client},
	}
	if cfg.APIKey != "" {
		f.pexels = NewPexelsClient(cfg.Endpoint, cfg.APIKey, client, ratelimit.PerMinute(cfg.RequestsPerMinute))
	} else {
		config.Logger.Warn("[fetch-images] PEXELS_KEY is not set; using placeholders")
	}
	return f
}

func slotPath(dir string, slot int) string {
	return filepath.Join(dir, fmt.Sprintf("img_%02d.jpg", slot+1))
}

func (f *Fetcher) Fetch(ctx context.Context, req Request) (*models.ImageManifest, error) {
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	if err := removeStale(req.OutDir); err != nil {
		return nil, err
	}

	manifest := &models.ImageManifest{}
	slot := 0

	if f.cfg.UseArticleImage && !req.Topic.IsError() {
		if src, err := f.articleImage(ctx, req.Topic.Link, slotPath(req.OutDir, slot)); err == nil {
			manifest.Images = append(manifest.Images, models.ImageSlot{Path: slotPath(req.OutDir, slot), Query: "article", Source: src})
			slot++
		} else {
			config.Logger.Warnf("[fetch-images] article image skipped: %v", err)
		}
	}

	for _, q := range req.Queries {
		q = TrimQuery(q, f.cfg.MaxQueryChars)
		if q == "" {
			continue
		}
		path := slotPath(req.OutDir, slot)
		src, err := f.stockImage(ctx, q, path)
		if err != nil {
			config.Logger.Warnf("[fetch-images] %q: %v; using placeholder", q, err)
			if err := f.placeholder(path, slot); err != nil {
				return nil, err
			}
			manifest.Images = append(manifest.Images, models.ImageSlot{Path: path, Query: q, Placeholder: true})
		} else {
			manifest.Images = append(manifest.Images, models.ImageSlot{Path: path, Query: q, Source: src})
		}
		slot++
	}

	for slot < f.cfg.MinCount {
		path := slotPath(req.OutDir, slot)
		if err := f.placeholder(path, slot); err != nil {
			return nil, err
		}
		manifest.Images = append(manifest.Images, models.ImageSlot{Path: path, Placeholder: true})
		slot++
	}

	config.Logger.Infof("[fetch-images] %d images (%d downloaded) in %s", len(manifest.Images), manifest.Downloaded(), req.OutDir)
	return manifest, nil
}

func removeStale(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "img_*.jpg"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (f *Fetcher) placeholder(path string, slot int) error {
	if err := SaveJPEG(path, Placeholder(f.width, f.height, slot)); err != nil {
		return fmt.Errorf("write placeholder %s: %w", path, err)
	}
	return nil
}

func (f *Fetcher) stockImage(ctx context.Context, query, path string) (string, error) {
	if f.pexels == nil {
		return "", errors.New("no stock photo provider configured")
	}
	urls, err := f.pexels.Search(ctx, query, f.cfg.PerPage)
	if err != nil {
		return "", err
	}
	if len(urls) == 0 {
		return "", errors.New("no photos found")
	}
	if err := f.download(ctx, urls[0], path); err != nil {
		return "", err
	}
	return urls[0], nil
}

func (f *Fetcher) articleImage(ctx context.Context, link, path string) (string, error) {
	htmlStr, err := parser.FetchHTML(ctx, f.client, link)
	if err != nil {
		return "", err
	}
	src, err := f.topImage.Find(ctx, htmlStr, link)
	if err != nil {
		return "", err
	}
	if src == "" {
		return "", errors.New("no top image")
	}
	if err := f.download(ctx, src, path); err != nil {
		return "", err
	}
	return src, nil
}

// download 는 이미지를 받아 세로 프레임으로 잘라 JPEG 로 저장한다.
func (f *Fetcher) download(ctx context.Context, src, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	feeder.SetBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", src, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return err
	}
	img, err := Decode(data)
	if err != nil {
		return err
	}
	return SaveJPEG(path, CoverCrop(img, f.width, f.height))
}

// TrimQuery 는 공백을 정리하고 max 글자로 자른다.
func TrimQuery(q string, max int) string {
	q = strings.Join(strings.Fields(q), " ")
	if r := []rune(q); max > 0 && len(r) > max {
		q = strings.TrimSpace(string(r[:max]))
	}
	return q
}

// DeriveQueries 는 스크립트 첫 줄과 그다음 세 줄을 검색어로 쓴다.
func DeriveQueries(script string) []string {
	var lines []string
	for _, l := range strings.Split(script, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > 4 {
		lines = lines[:4]
	}
	return lines
}

// LoadQueries 는 image_keywords.json 이 있으면 그것을, 없으면 스크립트에서 검색어를 만든다.
func LoadQueries(keywordsPath, scriptPath string) ([]string, error) {
	if keywordsPath != "" {
		var kws []string
		err := models.ReadJSONFile(keywordsPath, &kws)
		if err == nil && len(kws) > 0 {
			return kws, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			config.Logger.Warnf("[fetch-images] ignoring %s: %v", keywordsPath, err)
		}
	}

	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return DeriveQueries(string(script)), nil
}
