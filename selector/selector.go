package selector

import (
	"context"
	"errors"
	"sort"
	"time"

	"news-shorts/config"
	"news-shorts/feeder"
	"news-shorts/history"
	"news-shorts/models"
)

// ErrNoNews 는 어떤 창/등급 조합에서도 후보를 찾지 못했음을 뜻한다.
var ErrNoNews = errors.New("no qualifying news found")

// FeedSource 는 키워드 검색 피드다.
type FeedSource interface {
	Search(ctx context.Context, keyword string) ([]feeder.RssFeedItem, error)
}

// LinkResolver 는 리다이렉트 링크를 원문 주소로 바꾼다.
type LinkResolver interface {
	Resolve(ctx context.Context, link string) (string, bool)
}

// Window 는 최신성 창이다. Span 이 0 이면 제한이 없다.
type Window struct {
	Label string
	Span  time.Duration
}

var DefaultWindows = []Window{
	{Label: "24 hours", Span: 24 * time.Hour},
	{Label: "7 days", Span: 7 * 24 * time.Hour},
	{Label: "30 days", Span: 30 * 24 * time.Hour},
	{Label: "any", Span: 0},
}

type Selector struct {
	feeds    FeedSource
	resolver LinkResolver
	history  history.Store
	policy   *Policy
	windows  []Window
	now      func() time.Time
}

type Option func(*Selector)

// WithClock 은 현재 시각 함수를 바꾼다.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) { s.now = now }
}

// WithWindows 는 최신성 창 목록을 바꾼다.
func WithWindows(windows []Window) Option {
	return func(s *Selector) { s.windows = windows }
}

func New(feeds FeedSource, resolver LinkResolver, store history.Store, policy *Policy, opts ...Option) *Selector {
	s := &Selector{
		feeds:    feeds,
		resolver: resolver,
		history:  store,
		policy:   policy,
		windows:  DefaultWindows,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// candidate 는 피드 항목 하나와 지연 계산되는 해석 결과다.
type candidate struct {
	keyword   string
	item      feeder.RssFeedItem
	published time.Time

	resolved  bool
	link      string // 원문 주소, 해석 실패 시 피드 링크
	checkURL  string // 제외 규칙을 적용할 주소
	host      string
	tier      models.Tier
	linkFound bool
}

func (c *candidate) resolve(ctx context.Context, r LinkResolver, p *Policy) {
	if c.resolved {
		return
	}
	c.resolved = true

	c.link = c.item.Link
	c.checkURL = c.item.Link
	if r != nil {
		c.link, c.linkFound = r.Resolve(ctx, c.item.Link)
	} else {
		c.linkFound = true
	}
	if c.linkFound {
		c.checkURL = c.link
	} else if c.item.SourceURL != "" {
		// 해석에 실패하면 <source url> 을 도메인 힌트로 쓴다
		c.checkURL = c.item.SourceURL
	}
	c.host = HostOf(c.checkURL)
	c.tier = p.Classify(c.host)
}

// Select 는 히스토리에 없는 기사 하나를 고른다.
// 창을 넓혀 가며, 각 창 안에서는 등급 순서대로, 등급 안에서는 키워드 순서대로 찾는다.
// 키워드 하나에 대해서는 조건을 만족하는 가장 최근 항목이 선택된다.
func (s *Selector) Select(ctx context.Context, keywords []string) (*models.Topic, error) {
	now := s.now()
	cache := make(map[string][]*candidate, len(keywords))

	for _, w := range s.windows {
		var earliest time.Time
		if w.Span > 0 {
			earliest = now.Add(-w.Span)
		}
		for _, tier := range s.policy.Tiers() {
			config.Logger.Infof("[fetch-news] trying window=%s tier=%s", w.Label, tier)
			for _, kw := range keywords {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				cands, ok := cache[kw]
				if !ok {
					cands = s.load(ctx, kw)
					cache[kw] = cands
				}
				if c := s.pick(ctx, cands, earliest, tier); c != nil {
					return s.topic(c, w), nil
				}
			}
		}
	}
	return nil, ErrNoNews
}

// load 는 키워드 피드를 한 번만 가져와 발행 시각 내림차순으로 정렬한다.
func (s *Selector) load(ctx context.Context, kw string) []*candidate {
	items, err := s.feeds.Search(ctx, kw)
	if err != nil {
		config.Logger.Warnf("[fetch-news] feed for %q failed: %v", kw, err)
		return nil
	}

	cands := make([]*candidate, 0, len(items))
	for _, it := range items {
		if it.PublishedAt == nil || it.Link == "" {
			continue
		}
		cands = append(cands, &candidate{keyword: kw, item: it, published: *it.PublishedAt})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].published.After(cands[j].published)
	})
	return cands
}

func (s *Selector) pick(ctx context.Context, cands []*candidate, earliest time.Time, tier models.Tier) *candidate {
	for _, c := range cands {
		if !earliest.IsZero() && c.published.Before(earliest) {
			break
		}
		// <source url> 이 이미 다른 등급을 가리키면 이번 등급에서는 해석하지 않는다
		if !c.resolved && c.item.SourceURL != "" && s.policy.Classify(HostOf(c.item.SourceURL)) != tier {
			continue
		}
		c.resolve(ctx, s.resolver, s.policy)
		if c.tier != tier {
			continue
		}
		if s.policy.Excluded(c.checkURL) {
			continue
		}
		if s.history != nil {
			used, err := s.history.Contains(ctx, c.link, c.item.Title)
			if err != nil {
				config.Logger.Warnf("[fetch-news] history lookup failed for %s: %v", c.link, err)
				continue
			}
			if used {
				continue
			}
			if c.item.Link != c.link {
				if used, _ := s.history.Contains(ctx, c.item.Link, ""); used {
					continue
				}
			}
		}
		return c
	}
	return nil
}

func (s *Selector) topic(c *candidate, w Window) *models.Topic {
	published := c.published.UTC()
	return &models.Topic{
		Keyword:   c.keyword,
		Title:     c.item.Title,
		Link:      c.link,
		FeedLink:  c.item.Link,
		Summary:   c.item.Summary,
		Published: &published,
		Source:    c.host,
		Tier:      c.tier,
		Window:    w.Label,
	}
}
