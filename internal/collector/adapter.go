package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// SourceAdapter 把一个 Source 描述组装成完整的抓取流水线：
// 获取 → 选择器链 → 字段抽取 → 相关性过滤 → 规范化
type SourceAdapter struct {
	src     Source
	fetcher PageFetcher
	origin  *url.URL
	loc     *time.Location
	now     func() time.Time
	html    []Strategy[*goquery.Document, *goquery.Selection]
}

func NewSourceAdapter(src Source, fetcher PageFetcher, loc *time.Location) (*SourceAdapter, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, errors.New("source adapter: nil page fetcher")
	}
	origin, err := src.OriginURL()
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Code, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SourceAdapter{
		src:     src,
		fetcher: fetcher,
		origin:  origin,
		loc:     loc,
		now:     time.Now,
		html:    HTMLStrategies(src.Selectors),
	}, nil
}

// NewAdapters 为每个启用的源创建适配器，顺序与 sources 一致
func NewAdapters(sources []Source, fetcher PageFetcher, loc *time.Location) ([]Fetcher, error) {
	enabled := EnabledSources(sources)
	if len(enabled) == 0 {
		return nil, ErrNoSources
	}
	out := make([]Fetcher, 0, len(enabled))
	for _, s := range enabled {
		a, err := NewSourceAdapter(s, fetcher, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (a *SourceAdapter) Name() string { return a.src.Code }

func (a *SourceAdapter) Source() Source { return a.src }

// Fetch 返回 *FetchError 或 *ParseError 时该源本轮为 0 条；
// 单条候选的问题只会让那一条被跳过
func (a *SourceAdapter) Fetch(ctx context.Context) ([]NewsItem, error) {
	body, err := a.fetcher.Get(ctx, a.src.URL, a.src.Headers)
	if err != nil {
		return nil, err
	}

	switch a.src.Kind {
	case KindHTML:
		doc, err := parseHTML(body, a.src.Encoding)
		if err != nil {
			return nil, &ParseError{Source: a.src.Code, Err: err}
		}
		strategy, found := Select(doc, a.html)
		return a.build(strategy, len(found), func(i int) Candidate {
			return ExtractElement(found[i], a.src.Fields)
		}), nil

	case KindFeed:
		feed, err := ParseFeed(body)
		if err != nil {
			return nil, &ParseError{Source: a.src.Code, Err: err}
		}
		strategy, found := Select(feed, FeedStrategies())
		return a.build(strategy, len(found), func(i int) Candidate {
			return ExtractEntry(found[i])
		}), nil
	}
	return nil, fmt.Errorf("source %s: %w %q", a.src.Code, ErrUnknownKind, a.src.Kind)
}

// build 按文档顺序逐条抽取、过滤、规范化，达到上限即停止
func (a *SourceAdapter) build(strategy string, n int, extract func(int) Candidate) []NewsItem {
	if n == 0 {
		log.Printf("%s: no candidates matched", a.src.Code)
		return nil
	}

	limit := a.src.Limit()
	rel := a.src.Relevance()
	norm := a.src.Normalizer(a.origin, a.loc, a.now())

	items := make([]NewsItem, 0, limit)
	skipped := 0
	for i := 0; i < n && len(items) < limit; i++ {
		c := extract(i)
		if err := rel.Check(c); err != nil {
			skipped++
			continue
		}
		item, err := norm.Normalize(c)
		if err != nil {
			skipped++
			continue
		}
		items = append(items, item)
	}

	log.Printf("%s: %d items (strategy=%q, candidates=%d, skipped=%d)",
		a.src.Code, len(items), strategy, n, skipped)
	return items
}

// parseHTML 仅在正文不是合法 UTF-8 时按源声明的编码转换，避免二次解码
func parseHTML(body []byte, encoding string) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(body)
	if encoding != "" && !utf8.Valid(body) {
		cr, err := charset.NewReaderLabel(encoding, r)
		if err != nil {
			return nil, err
		}
		r = cr
	}
	return goquery.NewDocumentFromReader(r)
}
