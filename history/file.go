package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"news-shorts/models"
)

// FileStore 는 JSON 파일 기반 히스토리다.
// 예전 형식(문자열 배열)과 항목 객체 배열을 모두 읽고, 쓸 때는 항목 객체 배열로 쓴다.
type FileStore struct {
	path    string
	mu      sync.Mutex
	entries []models.HistoryEntry
	links   map[string]struct{}
	titles  map[string]struct{}
}

// OpenFile 은 히스토리 파일을 읽는다. 파일이 없으면 빈 집합으로 시작한다.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		links:  map[string]struct{}{},
		titles: map[string]struct{}{},
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}

	entries, err := decodeEntries(data)
	if err != nil {
		return nil, fmt.Errorf("decode history %s: %w", path, err)
	}
	for _, e := range entries {
		s.index(e)
	}
	return s, nil
}

func decodeEntries(data []byte) ([]models.HistoryEntry, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make([]models.HistoryEntry, 0, len(raw))
	for _, r := range raw {
		var link string
		if err := json.Unmarshal(r, &link); err == nil {
			if link != "" {
				out = append(out, models.HistoryEntry{Link: link})
			}
			continue
		}
		var e models.HistoryEntry
		if err := json.Unmarshal(r, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *FileStore) index(e models.HistoryEntry) bool {
	key := NormalizeLink(e.Link)
	if key != "" {
		if _, ok := s.links[key]; ok {
			return false
		}
		s.links[key] = struct{}{}
	}
	if t := NormalizeTitle(e.Title); t != "" {
		s.titles[t] = struct{}{}
	}
	s.entries = append(s.entries, e)
	return true
}

func (s *FileStore) Contains(_ context.Context, link, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key := NormalizeLink(link); key != "" {
		if _, ok := s.links[key]; ok {
			return true, nil
		}
	}
	if t := NormalizeTitle(title); t != "" {
		if _, ok := s.titles[t]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStore) Add(_ context.Context, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.UsedAt.IsZero() {
		entry.UsedAt = time.Now().UTC()
	}
	if !s.index(entry) {
		return nil
	}
	return models.WriteJSONFile(s.path, s.entries)
}

// Entries 는 기록된 항목의 복사본이다.
func (s *FileStore) Entries() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.HistoryEntry(nil), s.entries...)
}

// Recent 는 최근에 기록된 순서로 최대 limit 개를 돌려준다.
func (s *FileStore) Recent(_ context.Context, limit int64) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HistoryEntry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *FileStore) Close(context.Context) error { return nil }
