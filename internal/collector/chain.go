package collector

import (
	"github.com/PuerkitoBio/goquery"
)

// Strategy 是在文档 D 中定位候选元素 E 的一种方式
type Strategy[D, E any] struct {
	Name string
	Find func(D) []E
}

// Select 按顺序尝试 strategies，返回第一个非空结果及其策略名。
// 后面的策略不会被执行，多个策略的结果也不会合并；全部为空时返回 ("", nil)。
func Select[D, E any](doc D, strategies []Strategy[D, E]) (string, []E) {
	for _, s := range strategies {
		if s.Find == nil {
			continue
		}
		if found := s.Find(doc); len(found) > 0 {
			return s.Name, found
		}
	}
	return "", nil
}

// CSSStrategy 用一个 CSS 选择器匹配元素，结果保持文档顺序
func CSSStrategy(selector string) Strategy[*goquery.Document, *goquery.Selection] {
	return Strategy[*goquery.Document, *goquery.Selection]{
		Name: selector,
		Find: func(doc *goquery.Document) []*goquery.Selection {
			var out []*goquery.Selection
			doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
				out = append(out, s)
			})
			return out
		},
	}
}

func HTMLStrategies(selectors []string) []Strategy[*goquery.Document, *goquery.Selection] {
	out := make([]Strategy[*goquery.Document, *goquery.Selection], 0, len(selectors))
	for _, sel := range selectors {
		out = append(out, CSSStrategy(sel))
	}
	return out
}

// FeedStrategies feed 只有一种定位方式：条目列表本身
func FeedStrategies() []Strategy[*Feed, FeedEntry] {
	return []Strategy[*Feed, FeedEntry]{
		{Name: "item", Find: func(f *Feed) []FeedEntry { return f.Entries }},
	}
}
