// Package tiktok 은 브라우저 세션으로 TikTok 업로드 페이지를 채워 둔다.
// 게시 버튼은 운영자가 직접 누른다.
package tiktok

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"news-shorts/config"
	"news-shorts/renderer"
)

const (
	fileInputSelector = `input[type='file']`
	textareaSelector  = `textarea`
	editorSelector    = `div[contenteditable='true']`
	pageReadyTimeout  = 60 * time.Second
	maxCaptionRunes   = 2200
)

type Uploader struct {
	cfg     config.TikTokConfig
	browser config.BrowserConfig
}

func NewUploader(cfg config.TikTokConfig, browser config.BrowserConfig) *Uploader {
	return &Uploader{cfg: cfg, browser: browser}
}

// Upload 는 저장된 쿠키로 업로드 페이지를 열고 파일과 캡션을 채운 뒤
// WaitMinutes 동안 기다렸다가 쿠키를 다시 저장한다.
func (u *Uploader) Upload(ctx context.Context, videoPath, caption string) error {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("video not found: %w", err)
	}

	state, err := LoadState(u.cfg.StateFile)
	if err != nil {
		config.Logger.Warnf("[upload-tiktok] %v; starting without cookies", err)
		state = &State{}
	}
	params := state.CookieParams(time.Now())

	bctx, cancel := renderer.NewBrowserContext(ctx, u.browser, u.cfg.Headless)
	defer cancel()

	readyCtx, cancelReady := context.WithTimeout(bctx, pageReadyTimeout)
	defer cancelReady()

	err = chromedp.Run(readyCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			if len(params) == 0 {
				return nil
			}
			return network.SetCookies(params).Do(ctx)
		}),
		chromedp.Navigate(u.cfg.UploadURL),
		chromedp.WaitReady(fileInputSelector, chromedp.ByQuery),
		chromedp.SetUploadFiles(fileInputSelector, []string{abs}, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("prepare upload page: %w", err)
	}
	config.Logger.Infof("[upload-tiktok] restored %d cookies, attached %s", len(params), abs)

	if caption = TrimCaption(caption); caption != "" {
		if err := fillCaption(readyCtx, caption); err != nil {
			config.Logger.Warnf("[upload-tiktok] caption not filled: %v", err)
		}
	}

	wait := time.Duration(u.cfg.WaitMinutes) * time.Minute
	config.Logger.Infof("[upload-tiktok] upload prepared. Please click Post in the opened browser window (waiting %s)", wait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}

	var cookies []*network.Cookie
	err = chromedp.Run(bctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}
	if err := SaveState(u.cfg.StateFile, StateFromCookies(cookies)); err != nil {
		return fmt.Errorf("save tiktok state: %w", err)
	}
	config.Logger.Infof("[upload-tiktok] saved %d cookies to %s", len(cookies), u.cfg.StateFile)
	return nil
}

func fillCaption(ctx context.Context, caption string) error {
	var hasTextarea bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(`document.querySelector("textarea") !== null`, &hasTextarea)); err != nil {
		return err
	}
	if hasTextarea {
		return chromedp.Run(ctx, chromedp.SetValue(textareaSelector, caption, chromedp.ByQuery))
	}
	return chromedp.Run(ctx,
		chromedp.WaitVisible(editorSelector, chromedp.ByQuery),
		chromedp.Click(editorSelector, chromedp.ByQuery),
		chromedp.SendKeys(editorSelector, caption, chromedp.ByQuery),
	)
}

// Caption 은 헤드라인과 키워드 해시태그로 캡션을 만든다.
func Caption(headline string, keywords []string) string {
	var tags []string
	seen := map[string]bool{}
	for _, k := range keywords {
		tag := strings.ToLower(strings.Join(strings.FieldsFunc(k, func(r rune) bool {
			return !(r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || r > 127)
		}), ""))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, "#"+tag)
		if len(tags) == 5 {
			break
		}
	}
	caption := strings.TrimSpace(headline)
	if len(tags) > 0 {
		caption = strings.TrimSpace(caption + "\n\n" + strings.Join(tags, " "))
	}
	return TrimCaption(caption)
}

func TrimCaption(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxCaptionRunes {
		s = string(r[:maxCaptionRunes])
	}
	return s
}
