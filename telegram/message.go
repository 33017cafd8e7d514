package telegram

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode/utf8"

	"news-shorts/models"
)

const (
	// Telegram sendMessage 본문 한도
	MaxMessageRunes = 4096
	maxErrorRunes   = 300
)

// RunMessage 는 파이프라인 실행 결과를 HTML 메시지로 만든다.
func RunMessage(state *models.PipelineState) string {
	var sb strings.Builder
	if state.Success {
		sb.WriteString("✅ <b>Pipeline finished</b>\n")
	} else {
		sb.WriteString("❌ <b>Pipeline failed</b>\n")
	}
	fmt.Fprintf(&sb, "run: <code>%s</code>\n", html.EscapeString(state.RunID))

	if t := state.Topic; t != nil && !t.IsError() {
		fmt.Fprintf(&sb, "topic: %s\n", html.EscapeString(t.Headline()))
		if t.Link != "" {
			fmt.Fprintf(&sb, "source: %s\n", html.EscapeString(t.Link))
		}
	} else {
		sb.WriteString("topic: (no news, keyword fallback)\n")
	}

	if v := state.Artifacts["video"]; v != "" {
		fmt.Fprintf(&sb, "video: <code>%s</code>\n", html.EscapeString(v))
	}

	stages := make([]string, 0, len(state.Errors))
	for s := range state.Errors {
		stages = append(stages, s)
	}
	sort.Strings(stages)
	for i, s := range stages {
		line := fmt.Sprintf("• %s: %s\n", html.EscapeString(s), html.EscapeString(truncateRunes(state.Errors[s], maxErrorRunes)))
		// 남은 항목 수 안내가 들어갈 자리를 남긴다
		if utf8.RuneCountInString(sb.String())+utf8.RuneCountInString(line) > MaxMessageRunes-40 {
			fmt.Fprintf(&sb, "• … %d more errors\n", len(stages)-i)
			break
		}
		sb.WriteString(line)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
