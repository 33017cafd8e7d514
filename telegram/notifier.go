// Package telegram 은 Bot API sendMessage 로 파이프라인 결과를 알린다.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"news-shorts/config"
)

var ErrNotConfigured = errors.New("telegram: TG_TOKEN/TG_CHAT not configured")

const requestTimeout = 10 * time.Second

type Notifier struct {
	endpoint  string
	token     string
	chatID    string
	parseMode string
	client    *http.Client
}

func NewNotifier(cfg config.TelegramConfig) *Notifier {
	return &Notifier{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		token:     cfg.Token,
		chatID:    cfg.ChatID,
		parseMode: cfg.ParseMode,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

func (n *Notifier) Configured() bool {
	return n.token != "" && n.chatID != ""
}

// Notify 는 설정이 없으면 로그만 남기고 nil 을 돌려준다.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	err := n.Send(ctx, text)
	if errors.Is(err, ErrNotConfigured) {
		config.Logger.Warn("[notify] telegram not configured; skipping")
		return nil
	}
	return err
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send 는 메시지를 보낸다. 200 이 아닌 응답은 오류다.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if !n.Configured() {
		return ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.endpoint, n.token)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	if n.parseMode != "" {
		form.Set("parse_mode", n.parseMode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		// 토큰이 URL 에 들어 있으므로 url.Error 를 그대로 노출하지 않는다
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body apiResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if json.Unmarshal(data, &body) == nil && body.Description != "" {
			return fmt.Errorf("telegram error: %s: %s", resp.Status, body.Description)
		}
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	config.Logger.Infof("[notify] telegram status: %d", resp.StatusCode)
	return nil
}
