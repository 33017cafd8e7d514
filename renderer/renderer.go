package renderer

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"news-shorts/config"
)

const USER_AGENT = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

const RENDER_TIMEOUT = 30 * time.Second

// AllocatorOptions 는 Chrome 실행 옵션이다.
// headless 가 false 이면 운영자가 직접 조작할 수 있는 창을 띄운다.
func AllocatorOptions(cfg config.BrowserConfig, headless bool) []chromedp.ExecAllocatorOption {
	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = "/usr/bin/chromium-browser" // Docker/Linux 기본
	}

	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.UserAgent(USER_AGENT),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-crashpad", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", headless),
	)
}

// NewBrowserContext 는 새 브라우저 프로세스와 탭을 만든다. cancel 은 둘 다 정리한다.
func NewBrowserContext(parent context.Context, cfg config.BrowserConfig, headless bool) (context.Context, context.CancelFunc) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, AllocatorOptions(cfg, headless)...)
	ctx, cancelTab := chromedp.NewContext(allocCtx)
	return ctx, func() {
		cancelTab()
		cancelAlloc()
	}
}

// RenderHTML 은 클라이언트 렌더링이 필요한 페이지를 헤드리스 브라우저로 열어 HTML 을 가져온다.
func RenderHTML(ctx context.Context, cfg config.BrowserConfig, url string) (string, error) {
	ctx, cancel := NewBrowserContext(ctx, cfg, true)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, RENDER_TIMEOUT)
	defer cancelTimeout()

	var htmlContent string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return "", err
	}
	return htmlContent, nil
}
