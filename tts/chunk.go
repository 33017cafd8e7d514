package tts

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var sentenceEnd = regexp.MustCompile(`[.!?…]+["')\]]*\s+|\n+`)

// Chunk 는 text 를 max 글자 이하 조각으로 나눈다.
// 문장 경계를 먼저 시도하고, 긴 문장은 단어 경계에서, 긴 단어는 글자 단위로 자른다.
func Chunk(text string, max int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if max <= 0 {
		return []string{strings.Join(strings.Fields(text), " ")}
	}

	var chunks []string
	cur := ""
	flush := func() {
		if cur != "" {
			chunks = append(chunks, cur)
			cur = ""
		}
	}
	add := func(piece string) {
		switch {
		case cur == "":
			cur = piece
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(piece) <= max:
			cur += " " + piece
		default:
			flush()
			cur = piece
		}
	}

	for _, sentence := range splitSentences(text) {
		if utf8.RuneCountInString(sentence) <= max {
			add(sentence)
			continue
		}
		// 긴 문장은 다른 문장과 섞지 않는다
		flush()
		for _, w := range strings.Fields(sentence) {
			for utf8.RuneCountInString(w) > max {
				r := []rune(w)
				flush()
				chunks = append(chunks, string(r[:max]))
				w = string(r[max:])
			}
			add(w)
		}
		flush()
	}
	flush()
	return chunks
}

func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.Join(strings.Fields(text[last:loc[1]]), " "); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if s := strings.Join(strings.Fields(text[last:]), " "); s != "" {
		out = append(out, s)
	}
	return out
}
