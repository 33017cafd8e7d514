package models

import "strings"

// Script 는 generate-script 단계의 산출물이다.
// Files: script.txt (Narration), image_keywords.json (Keywords)
type Script struct {
	Hook      string   `json:"hook"`
	Narration string   `json:"narration"`
	Keywords  []string `json:"keywords"`
	Provider  string   `json:"provider"`
	Fallback  bool     `json:"fallback"`
}

// Text 는 hook 을 첫 줄로 하는 script.txt 본문이다.
// narration 이 이미 hook 으로 시작하면 중복하지 않는다.
func (s *Script) Text() string {
	hook := strings.TrimSpace(s.Hook)
	body := strings.TrimSpace(s.Narration)
	if hook == "" || strings.HasPrefix(body, hook) {
		return body
	}
	if body == "" {
		return hook
	}
	return hook + "\n\n" + body
}
