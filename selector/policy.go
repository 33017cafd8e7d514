package selector

import (
	"net/url"
	"strings"

	"news-shorts/config"
	"news-shorts/models"
)

// Policy 는 출처 도메인의 신뢰 등급과 제외 규칙이다.
type Policy struct {
	trusted       []string
	secondary     []string
	excluded      []string
	excludedPaths []string
	allowUnlisted bool
}

func NewPolicy(cfg config.SelectionConfig) *Policy {
	return &Policy{
		trusted:       lowerAll(cfg.Trusted),
		secondary:     lowerAll(cfg.Secondary),
		excluded:      lowerAll(cfg.Excluded),
		excludedPaths: lowerAll(cfg.ExcludedPaths),
		allowUnlisted: cfg.AllowUnlisted,
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Tiers 는 탐색 순서대로의 등급 목록이다.
func (p *Policy) Tiers() []models.Tier {
	tiers := []models.Tier{models.TierTrusted, models.TierSecondary}
	if p.allowUnlisted {
		tiers = append(tiers, models.TierUnlisted)
	}
	return tiers
}

// Classify 는 host 의 등급을 돌려준다. 허용 목록은 접미사로 비교한다.
func (p *Policy) Classify(host string) models.Tier {
	host = normalizeHost(host)
	switch {
	case matchesAny(host, p.trusted):
		return models.TierTrusted
	case matchesAny(host, p.secondary):
		return models.TierSecondary
	default:
		return models.TierUnlisted
	}
}

// Excluded 는 블로그/포럼/소셜 계열 주소인지 판단한다. 등급과 무관하게 적용된다.
func (p *Policy) Excluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	host := normalizeHost(u.Hostname())
	for _, pat := range p.excluded {
		if strings.Contains(host, pat) {
			return true
		}
	}
	path := strings.ToLower(u.Path)
	for _, pat := range p.excludedPaths {
		if strings.Contains(path, pat) {
			return true
		}
	}
	return false
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}
	return strings.TrimSuffix(host, ".")
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// HostOf 는 URL 의 소문자 호스트다.
func HostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return normalizeHost(u.Hostname())
}
