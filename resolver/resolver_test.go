package resolver_test

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-shorts/resolver"
)

func encodeArticleID(target string) string {
	raw := []byte{0x08, 0x13, 0x22}
	raw = binary.AppendUvarint(raw, uint64(len(target)))
	raw = append(raw, target...)
	raw = append(raw, 0xd2, 0x01, 0x00)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func TestDecodeArticleID(t *testing.T) {
	target := "https://www.reuters.com/world/europe/volcano-erupts-2025-10-13/"
	id := encodeArticleID(target)
	assert.True(t, strings.HasPrefix(id, "CBMi"))
	assert.Equal(t, target, resolver.DecodeArticleID(id))

	// 패딩이 붙어 있어도 동일하게 동작한다
	assert.Equal(t, target, resolver.DecodeArticleID(id+"=="))
}

func TestDecodeArticleIDScanFallback(t *testing.T) {
	raw := append([]byte{0x0a, 0x7f, 0x01}, []byte("https://apnews.com/article/abc")...)
	raw = append(raw, 0x12, 0x03)
	id := base64.RawStdEncoding.EncodeToString(raw)
	assert.Equal(t, "https://apnews.com/article/abc", resolver.DecodeArticleID(id))
}

func TestDecodeArticleIDOversizedLength(t *testing.T) {
	target := "https://www.bbc.com/news/x"
	raw := []byte{0x08, 0x13, 0x22}
	raw = binary.AppendUvarint(raw, 1<<63)
	raw = append(raw, target...)
	id := base64.RawURLEncoding.EncodeToString(raw)

	var got string
	require.NotPanics(t, func() { got = resolver.DecodeArticleID(id) })
	// 길이 접두어를 버리고 본문 스캔으로 찾는다
	assert.Equal(t, target, got)

	raw = binary.AppendUvarint([]byte{0x08, 0x13, 0x22}, 1<<40)
	raw = append(raw, "xyz"...)
	assert.Empty(t, resolver.DecodeArticleID(base64.RawURLEncoding.EncodeToString(raw)))
}

func TestDecodeArticleIDGarbage(t *testing.T) {
	assert.Empty(t, resolver.DecodeArticleID(""))
	assert.Empty(t, resolver.DecodeArticleID("!!!not-base64!!!"))
	assert.Empty(t, resolver.DecodeArticleID(base64.RawURLEncoding.EncodeToString([]byte("no url inside"))))
}

func TestResolve(t *testing.T) {
	r := resolver.New(false)
	ctx := context.Background()

	link, ok := r.Resolve(ctx, "https://www.bbc.com/news/science-123")
	assert.True(t, ok)
	assert.Equal(t, "https://www.bbc.com/news/science-123", link)

	link, ok = r.Resolve(ctx, "https://www.google.com/url?q=https://www.nature.com/articles/x&sa=U")
	assert.True(t, ok)
	assert.Equal(t, "https://www.nature.com/articles/x", link)

	target := "https://www.theguardian.com/science/2025/oct/13/mars"
	link, ok = r.Resolve(ctx, "https://news.google.com/rss/articles/"+encodeArticleID(target)+"?oc=5")
	assert.True(t, ok)
	assert.Equal(t, target, link)

	link, ok = r.Resolve(ctx, "https://news.google.com/rss/articles/AU_yqLOpaque?oc=5")
	assert.False(t, ok)
	assert.Equal(t, "https://news.google.com/rss/articles/AU_yqLOpaque?oc=5", link)
}

func TestFromDocument(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{"canonical", `<html><head><link rel="canonical" href="https://apnews.com/a"></head></html>`, "https://apnews.com/a"},
		{"data attribute", `<html><body><c-wiz data-n-au="https://cnn.com/b"></c-wiz></body></html>`, "https://cnn.com/b"},
		{"refresh", `<html><head><meta http-equiv="Refresh" content="0; URL='https://Reuters.com/C'"></head></html>`, "https://Reuters.com/C"},
		{"anchor", `<html><body><a href="https://news.google.com/x">g</a><a href="https://pbs.org/d">d</a></body></html>`, "https://pbs.org/d"},
		{"nothing", `<html><body><a href="/relative">r</a></body></html>`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tc.html))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resolver.FromDocument(doc))
		})
	}
}

func TestIsAggregatorHost(t *testing.T) {
	assert.True(t, resolver.IsAggregatorHost("news.google.com"))
	assert.True(t, resolver.IsAggregatorHost("www.google.com"))
	assert.False(t, resolver.IsAggregatorHost("googleblog.com"))
	assert.False(t, resolver.IsAggregatorHost("bbc.com"))
}
