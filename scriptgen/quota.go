package scriptgen

import (
	"context"
	"sync"
	"time"
)

// QuotaLimiter 는 LLM 호출의 분당/일일 한도를 관리한다.
// 프로세스 메모리에만 있으므로 run --cron 처럼 오래 도는 프로세스에서 의미가 있다.
// 값이 0 이하인 방향은 제한하지 않는다.
type QuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time

	now func() time.Time
}

func NewQuotaLimiter(requestsPerDay, requestsPerMinute int) *QuotaLimiter {
	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}
	if requestsPerDay < 0 {
		requestsPerDay = 0
	}
	return &QuotaLimiter{dailyLimit: requestsPerDay, interval: interval, now: time.Now}
}

// WaitAndReserve 는 호출 한 번을 예약한다.
// 일일 한도를 넘으면 (false, nil), 대기 중 컨텍스트가 끝나면 (false, err) 를 돌려준다.
func (l *QuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	if l == nil {
		return true, nil
	}
	for {
		l.mu.Lock()

		now := l.now().UTC()
		if key := now.Format("2006-01-02"); l.dayKey != key {
			l.dayKey = key
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			delay = l.lastCall.Add(l.interval).Sub(now)
		}
		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		l.mu.Unlock()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
