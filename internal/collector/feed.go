package collector

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

// Feed 统一 RSS / Atom / JSON Feed 后只保留我们需要的字段
type Feed struct {
	Title   string
	Entries []FeedEntry
}

type FeedEntry struct {
	Title           string
	Link            string
	Published       string
	PublishedParsed *time.Time
	Publisher       string
}

// ParseFeed RSS 用 rss 包解析以保留 <source>，其它格式交给通用解析器
func ParseFeed(body []byte) (*Feed, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(body)) {
	case gofeed.FeedTypeRSS:
		return parseRSS(body)
	case gofeed.FeedTypeAtom, gofeed.FeedTypeJSON:
		return parseUniversal(body)
	default:
		return nil, errors.New("unrecognized feed format")
	}
}

func parseRSS(body []byte) (*Feed, error) {
	fp := &rss.Parser{}
	f, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	out := &Feed{Title: strings.TrimSpace(f.Title)}
	for _, it := range f.Items {
		if it == nil {
			continue
		}
		e := FeedEntry{
			Title:           it.Title,
			Link:            it.Link,
			Published:       it.PubDate,
			PublishedParsed: it.PubDateParsed,
		}
		if e.Link == "" && it.GUID != nil && it.GUID.IsPermalink != "false" {
			e.Link = it.GUID.Value
		}
		if it.Source != nil {
			e.Publisher = strings.TrimSpace(it.Source.Title)
		}
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}

func parseUniversal(body []byte) (*Feed, error) {
	f, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	out := &Feed{Title: strings.TrimSpace(f.Title)}
	for _, it := range f.Items {
		if it == nil {
			continue
		}
		e := FeedEntry{
			Title:           it.Title,
			Link:            it.Link,
			Published:       it.Published,
			PublishedParsed: it.PublishedParsed,
		}
		if e.PublishedParsed == nil {
			e.Published = it.Updated
			e.PublishedParsed = it.UpdatedParsed
		}
		if e.Link == "" && len(it.Links) > 0 {
			e.Link = it.Links[0]
		}
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}
