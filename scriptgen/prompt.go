package scriptgen

import (
	"fmt"
	"strings"

	"news-shorts/config"
	"news-shorts/models"
)

var languageNames = map[string]string{
	"id": "Indonesian (Bahasa Indonesia)",
	"en": "English",
	"ko": "Korean",
	"ms": "Malay",
	"es": "Spanish",
}

func languageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// SystemInstruction 은 나레이션 스크립트 응답 형식을 고정하는 시스템 지시문이다.
func SystemInstruction(cfg config.ScriptConfig) string {
	return fmt.Sprintf(`You write narration for 60-second vertical short videos (TikTok, Reels, Shorts) about news stories.
The response MUST be a valid JSON object with three keys:

1. hook: One attention-grabbing opening line that can be spoken in under 3 seconds (at most 10 words).
2. narration: The rest of the narration, about %d words, written in %s.
   Use short spoken sentences. Explain what happened, why it matters and end with a question to the viewer.
   Do not include stage directions, emojis, hashtags or URLs.
3. keywords: %d to %d short English stock-photo search phrases (1-3 words each) that visually match the story,
   most important first. Avoid names of private people and brand logos.

Additional constraints:
- hook and narration are written in %s. keywords stay in English.
- Stick to the facts given. Do not invent numbers, names or quotes.
- You MUST NOT wrap the JSON output in a markdown code block.
- The response should contain ONLY the raw JSON string.
`, cfg.TargetWords, languageName(cfg.Language), 3, maxKeywords(cfg), languageName(cfg.Language))
}

func maxKeywords(cfg config.ScriptConfig) int {
	if cfg.MaxKeywords < 3 {
		return 3
	}
	return cfg.MaxKeywords
}

// UserPrompt 는 기사 정보(또는 키워드만)로 사용자 메시지를 만든다.
func UserPrompt(topic *models.Topic, keywords []string, excerpt string) string {
	var b strings.Builder
	if topic.IsError() {
		subject := "interesting world facts"
		if len(keywords) > 0 {
			subject = keywords[0]
		}
		fmt.Fprintf(&b, "There is no specific news article today. Write an engaging explainer about: %s\n", subject)
		if len(keywords) > 1 {
			fmt.Fprintf(&b, "Related topics you may mention: %s\n", strings.Join(keywords[1:], ", "))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Title: %s\n", topic.Headline())
	if topic.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", topic.Source)
	}
	if topic.Published != nil {
		fmt.Fprintf(&b, "Published: %s\n", topic.Published.Format("2006-01-02"))
	}
	if topic.Keyword != "" {
		fmt.Fprintf(&b, "Search keyword: %s\n", topic.Keyword)
	}
	if topic.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", topic.Summary)
	}
	if excerpt != "" {
		fmt.Fprintf(&b, "\nArticle excerpt:\n%s\n", excerpt)
	}
	return b.String()
}
