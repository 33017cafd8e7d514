package tiktok

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"

	"news-shorts/models"
)

// State 는 로그인 세션 쿠키 파일이다.
// Playwright storage_state 의 cookies 필드와 같은 모양이라 기존 파일도 그대로 읽힌다.
type State struct {
	Cookies []StoredCookie `json:"cookies"`
	Origins []any          `json:"origins"`
	SavedAt *time.Time     `json:"saved_at,omitempty"`
}

type StoredCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// LoadState 는 상태 파일을 읽는다. 파일이 없으면 빈 상태를 돌려준다.
func LoadState(path string) (*State, error) {
	var s State
	err := models.ReadJSONFile(path, &s)
	if errors.Is(err, fs.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tiktok state: %w", err)
	}
	return &s, nil
}

func SaveState(path string, s *State) error {
	now := time.Now().UTC()
	s.SavedAt = &now
	if s.Origins == nil {
		s.Origins = []any{}
	}
	return models.WriteJSONFile(path, s)
}

// CookieParams 는 만료되지 않은 쿠키를 network.SetCookies 인자로 바꾼다.
func (s *State) CookieParams(now time.Time) []*network.CookieParam {
	var out []*network.CookieParam
	for _, c := range s.Cookies {
		if c.Name == "" {
			continue
		}
		// expires == -1 은 세션 쿠키
		if c.Expires > 0 && time.Unix(int64(c.Expires), 0).Before(now) {
			continue
		}
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			exp := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &exp
		}
		if c.SameSite != "" {
			p.SameSite = network.CookieSameSite(c.SameSite)
		}
		out = append(out, p)
	}
	return out
}

// StateFromCookies 는 브라우저에서 읽은 쿠키로 상태를 만든다.
func StateFromCookies(cookies []*network.Cookie) *State {
	s := &State{Origins: []any{}}
	for _, c := range cookies {
		if c == nil {
			continue
		}
		expires := c.Expires
		if c.Session {
			expires = -1
		}
		s.Cookies = append(s.Cookies, StoredCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		})
	}
	return s
}
