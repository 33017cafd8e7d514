package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"news-shorts/ratelimit"
)

// PexelsClient 는 Pexels 사진 검색 API 클라이언트다.
type PexelsClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *ratelimit.HostRateLimiter
}

func NewPexelsClient(endpoint, apiKey string, client *http.Client, limiter *ratelimit.HostRateLimiter) *PexelsClient {
	return &PexelsClient{endpoint: endpoint, apiKey: apiKey, client: client, limiter: limiter}
}

type pexelsResponse struct {
	Photos []struct {
		ID  int64 `json:"id"`
		Src struct {
			Original string `json:"original"`
			Large2x  string `json:"large2x"`
			Large    string `json:"large"`
			Portrait string `json:"portrait"`
		} `json:"src"`
	} `json:"photos"`
}

// Search 는 query 로 세로 사진을 검색하고 다운로드할 주소 목록을 돌려준다.
func (p *PexelsClient) Search(ctx context.Context, query string, perPage int) ([]string, error) {
	if perPage <= 0 {
		perPage = 1
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("orientation", "portrait")
	reqURL := p.endpoint + "?" + q.Encode()

	if err := p.limiter.WaitForHost(ctx, reqURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("pexels search status %d: %s", resp.StatusCode, string(body))
	}

	var data pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode pexels response: %w", err)
	}

	var urls []string
	for _, ph := range data.Photos {
		for _, u := range []string{ph.Src.Large2x, ph.Src.Portrait, ph.Src.Large, ph.Src.Original} {
			if u != "" {
				urls = append(urls, u)
				break
			}
		}
	}
	return urls, nil
}
