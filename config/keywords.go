package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadKeywords 는 줄 단위 키워드 파일을 읽는다. 빈 줄과 '#' 주석은 무시한다.
func ReadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.ToLower(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read keywords %s: %w", path, err)
	}
	return out, nil
}
