package feeder

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"news-shorts/config"
)

// loggingRoundTripper 는 모든 아웃바운드 HTTP 호출에 공통 디버그 로깅과
// X-Request-Id 헤더를 붙인다.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func newLoggingTransport(inner http.RoundTripper) http.RoundTripper {
	if inner == nil {
		inner = http.DefaultTransport
	}
	return &loggingRoundTripper{inner: inner}
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID := req.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()[:8]
		// RoundTripper 는 원본 요청을 수정하면 안 된다.
		req = req.Clone(req.Context())
		req.Header.Set("X-Request-Id", requestID)
	}

	fields := config.Fields{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"request_id": requestID,
	}

	resp, err := l.inner.RoundTrip(req)
	fields["duration"] = time.Since(start).String()
	if err != nil {
		fields["error"] = err.Error()
		config.DebugWithFields("httpclient request failed", fields)
		return nil, err
	}
	fields["status"] = resp.StatusCode
	config.DebugWithFields("httpclient request", fields)
	return resp, nil
}
