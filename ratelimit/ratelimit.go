package ratelimit

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostRateLimiter 는 호스트마다 독립된 토큰 버킷으로 요청 간격을 보장한다.
// interval 이 0 이하이면 제한하지 않는다.
type HostRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	interval time.Duration
}

func NewHostRateLimiter(interval time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// PerMinute 는 분당 n 회로 제한하는 리미터를 만든다.
func PerMinute(n int) *HostRateLimiter {
	if n <= 0 {
		return NewHostRateLimiter(0)
	}
	return NewHostRateLimiter(time.Minute / time.Duration(n))
}

func (h *HostRateLimiter) WaitForHost(ctx context.Context, urlStr string) error {
	if h == nil || h.interval <= 0 {
		return ctx.Err()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return err
	}

	host := parsedURL.Host
	if host == "" {
		return &url.Error{Op: "parse", URL: urlStr, Err: errors.New("missing host in URL")}
	}

	return h.getLimiterForHost(host).Wait(ctx)
}

func (h *HostRateLimiter) getLimiterForHost(host string) *rate.Limiter {
	h.mu.RLock()
	limiter, exists := h.limiters[host]
	h.mu.RUnlock()

	if exists {
		return limiter
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if limiter, exists := h.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Every(h.interval), 1)
	h.limiters[host] = limiter
	return limiter
}
