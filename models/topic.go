package models

import (
	"strings"
	"time"
)

// ErrorNoNews 는 조건을 만족하는 기사가 없을 때 topic.json 에 기록되는 오류 코드다.
const ErrorNoNews = "no_news"

// Tier 는 출처 도메인의 신뢰 등급이다.
type Tier string

const (
	TierTrusted   Tier = "trusted"
	TierSecondary Tier = "secondary"
	TierUnlisted  Tier = "unlisted"
)

// Topic represents the selected news lead handed from fetch-news to the later stages.
// File: topic.json
type Topic struct {
	Keyword   string     `json:"keyword,omitempty" bson:"keyword"`
	Title     string     `json:"title,omitempty" bson:"title"`
	Link      string     `json:"link,omitempty" bson:"link"`
	FeedLink  string     `json:"feed_link,omitempty" bson:"feed_link"`
	Summary   string     `json:"summary,omitempty" bson:"summary"`
	Published *time.Time `json:"published,omitempty" bson:"published"`
	Source    string     `json:"source,omitempty" bson:"source"`
	Tier      Tier       `json:"tier,omitempty" bson:"tier"`
	Window    string     `json:"window,omitempty" bson:"window"`
	Error     string     `json:"error,omitempty" bson:"-"`
}

// NoNewsTopic 는 {"error": "no_news"} 센티널 레코드를 만든다.
func NoNewsTopic() *Topic {
	return &Topic{Error: ErrorNoNews}
}

// IsError 는 센티널이거나 제목/링크가 비어 있어 사용할 수 없는 레코드인지 판단한다.
func (t *Topic) IsError() bool {
	if t == nil {
		return true
	}
	return t.Error != "" || (strings.TrimSpace(t.Title) == "" && strings.TrimSpace(t.Link) == "")
}

// Headline 은 " - 매체명" 접미사를 떼어낸 제목이다.
func (t *Topic) Headline() string {
	if t == nil {
		return ""
	}
	head, _, _ := strings.Cut(t.Title, " - ")
	return strings.TrimSpace(head)
}
