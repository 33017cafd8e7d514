package scriptgen

import (
	"encoding/json"
	"regexp"
	"strings"

	"news-shorts/models"
)

var fenceRegex = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// stripFences 는 ```json ... ``` 코드 블록 표기를 제거한다.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fenceRegex.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return raw
}

// ParseResponse 는 JSON, 코드 블록 JSON, HOOK:/SCRIPT:/KEYWORDS: 구분 형식을 모두 받아들인다.
func ParseResponse(raw string, maxKeywords int) (*models.Script, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var resp ScriptResponse
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var loose struct {
			ScriptResponse
			Script string `json:"script"`
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &loose); err == nil {
			resp = loose.ScriptResponse
			if resp.Narration == "" {
				resp.Narration = loose.Script
			}
		}
	}
	if strings.TrimSpace(resp.Narration) == "" {
		resp = parseDelimited(text)
	}

	resp.Hook = strings.TrimSpace(resp.Hook)
	resp.Narration = strings.TrimSpace(resp.Narration)
	if resp.Narration == "" {
		return nil, ErrEmptyResponse
	}

	return &models.Script{
		Hook:      resp.Hook,
		Narration: resp.Narration,
		Keywords:  CleanKeywords(resp.Keywords, maxKeywords),
	}, nil
}

var sectionRegex = regexp.MustCompile(`(?im)^\s*(HOOK|SCRIPT|NARRATION|KEYWORDS)\s*:\s*`)

func parseDelimited(text string) ScriptResponse {
	var resp ScriptResponse
	locs := sectionRegex.FindAllStringSubmatchIndex(text, -1)
	for i, loc := range locs {
		name := strings.ToUpper(text[loc[2]:loc[3]])
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		switch name {
		case "HOOK":
			resp.Hook = body
		case "SCRIPT", "NARRATION":
			resp.Narration = body
		case "KEYWORDS":
			resp.Keywords = splitKeywords(body)
		}
	}
	return resp
}

func splitKeywords(body string) []string {
	return strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';' || r == '|'
	})
}

var listMarkerRegex = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// CleanKeywords 는 목록 기호와 따옴표를 제거하고 중복을 없앤 뒤 최대 max 개로 자른다.
func CleanKeywords(in []string, max int) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, kw := range in {
		kw = listMarkerRegex.ReplaceAllString(kw, "")
		kw = strings.Trim(kw, `"'`+"`")
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
