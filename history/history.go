package history

import (
	"context"
	"regexp"
	"strings"

	"news-shorts/models"
)

// Store 는 이미 사용한 기사 집합이다. 추가만 가능하다.
type Store interface {
	// Contains 는 link 또는 정규화된 title 이 이미 기록되어 있는지 확인한다.
	Contains(ctx context.Context, link, title string) (bool, error)
	// Add 는 항목을 기록한다. 이미 있는 link 는 다시 기록하지 않는다.
	Add(ctx context.Context, entry models.HistoryEntry) error
	// Recent 는 최근 사용 순으로 최대 limit 개를 돌려준다. limit 이 0 이하이면 전부.
	Recent(ctx context.Context, limit int64) ([]models.HistoryEntry, error)
	Close(ctx context.Context) error
}

var spaceRegex = regexp.MustCompile(`\s+`)

// NormalizeTitle 은 " - 매체명" 접미사와 대소문자, 공백 차이를 없앤 비교용 제목이다.
func NormalizeTitle(title string) string {
	if i := strings.LastIndex(title, " - "); i > 0 {
		title = title[:i]
	}
	title = strings.ToLower(strings.TrimSpace(title))
	return spaceRegex.ReplaceAllString(title, " ")
}

// NormalizeLink 는 비교를 위해 fragment 와 끝 슬래시를 제거한다.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.Index(link, "#"); i >= 0 {
		link = link[:i]
	}
	return strings.TrimRight(link, "/")
}
