package scriptgen

import (
	"fmt"
	"regexp"
	"strings"

	"news-shorts/models"
)

// templateMaxWords 는 템플릿 스크립트 본문에 쓰는 요약의 최대 단어 수다.
const templateMaxWords = 180

var tagRegex = regexp.MustCompile(`<[^>]+>`)

func cleanSummary(s string) string {
	s = tagRegex.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// TruncateWords 는 max 단어를 넘으면 잘라내고 "..." 을 붙인다.
func TruncateWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:max], " ") + "..."
}

// TemplateScript 는 LLM 없이 기사 제목과 요약으로 스크립트를 만든다.
func TemplateScript(topic *models.Topic, maxKeywords int) *models.Script {
	hook := fmt.Sprintf("Pernah dengar tentang %s?", topic.Headline())
	body := TruncateWords(cleanSummary(topic.Summary), templateMaxWords)
	if body == "" {
		body = topic.Headline() + "."
	}
	if topic.Link != "" {
		body += "\n\nSumber: " + topic.Link
	}

	return &models.Script{
		Hook:      hook,
		Narration: body,
		Keywords:  templateKeywords(topic, maxKeywords),
		Provider:  "template",
	}
}

var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "their": {}, "there": {}, "these": {}, "those": {},
	"where": {}, "which": {}, "while": {}, "would": {}, "could": {}, "should": {}, "being": {},
	"first": {}, "says": {}, "said": {}, "from": {}, "with": {}, "into": {}, "over": {},
}

var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func templateKeywords(topic *models.Topic, max int) []string {
	var kws []string
	if topic.Keyword != "" {
		kws = append(kws, topic.Keyword)
	}
	headline := topic.Headline()
	if words := strings.Fields(headline); len(words) > 0 {
		if len(words) > 5 {
			words = words[:5]
		}
		kws = append(kws, strings.Join(words, " "))
	}
	for _, w := range strings.Fields(nonWordRegex.ReplaceAllString(headline, " ")) {
		lw := strings.ToLower(w)
		if len([]rune(lw)) < 5 {
			continue
		}
		if _, stop := stopwords[lw]; stop {
			continue
		}
		kws = append(kws, lw)
	}
	kws = append(kws, cannedKeywords...)
	return CleanKeywords(kws, max)
}

var cannedKeywords = []string{"breaking news", "world map", "city skyline", "newspaper"}

// CannedScript 는 모든 방법이 실패했을 때 쓰는 고정 스크립트다.
func CannedScript(subject string, maxKeywords int) *models.Script {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "dunia di sekitar kita"
	}
	narration := fmt.Sprintf(
		"Hari ini kita membahas %s. "+
			"Topik ini sedang ramai dibicarakan dan banyak orang penasaran dengan fakta di baliknya. "+
			"Ada banyak hal yang belum kita ketahui, dan setiap hari muncul kabar baru yang mengejutkan. "+
			"Menurut kamu, apa yang akan terjadi selanjutnya? Tulis pendapatmu di kolom komentar dan ikuti untuk cerita menarik lainnya.",
		subject)

	kws := append([]string{subject}, cannedKeywords...)
	return &models.Script{
		Hook:      fmt.Sprintf("Tahukah kamu fakta menarik tentang %s?", subject),
		Narration: narration,
		Keywords:  CleanKeywords(kws, maxKeywords),
		Provider:  "canned",
		Fallback:  true,
	}
}
