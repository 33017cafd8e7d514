package feeder

import (
	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

const (
	customSourceURL  = "source_url"
	customSourceName = "source_name"
)

// sourceTranslator 는 기본 RSS 변환 결과에 <source> 요소를 Custom 필드로 덧붙인다.
// gofeed.Item 에는 source 에 해당하는 필드가 없다.
type sourceTranslator struct {
	gofeed.DefaultRSSTranslator
}

func (t *sourceTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultRSSTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}

	raw, ok := feed.(*rss.Feed)
	if !ok || len(raw.Items) != len(out.Items) {
		return out, nil
	}

	for i, it := range raw.Items {
		if it.Source == nil {
			continue
		}
		if out.Items[i].Custom == nil {
			out.Items[i].Custom = map[string]string{}
		}
		out.Items[i].Custom[customSourceURL] = it.Source.URL
		out.Items[i].Custom[customSourceName] = it.Source.Title
	}
	return out, nil
}
