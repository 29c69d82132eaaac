package collector

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Candidate 字段抽取后的原始条目，尚未过滤和规范化
type Candidate struct {
	Title    string
	Link     string // 原始 href，可能是相对地址
	DateText string
	// feed 自带已解析的时间时优先使用
	Published *time.Time
	// feed 条目自身的来源（如 Google News 的 <source>）
	Publisher string
}

// FieldRules 单个源对字段位置的覆盖，留空走默认规则
type FieldRules struct {
	TitleSelector string `yaml:"title_selector"`
	LinkSelector  string `yaml:"link_selector"`
	DateSelector  string `yaml:"date_selector"`
}

// ExtractElement 从一个 HTML 候选元素中取出标题、链接和日期文本。
// 缺失的字段返回空串，由后续过滤和规范化决定是否丢弃。
func ExtractElement(e *goquery.Selection, rules FieldRules) Candidate {
	link := linkElement(e, rules.LinkSelector)

	var title string
	if rules.TitleSelector != "" {
		title = cleanText(e.Find(rules.TitleSelector).First().Text())
	}
	if title == "" && link != nil {
		title = cleanText(link.Text())
	}
	if title == "" {
		title = cleanText(e.Text())
	}

	var href string
	if link != nil {
		href, _ = link.Attr("href")
		href = strings.TrimSpace(href)
	}

	return Candidate{
		Title:    title,
		Link:     href,
		DateText: extractDate(e, rules.DateSelector),
	}
}

// ExtractEntry feed 条目的字段已经结构化，这里只做清洗
func ExtractEntry(entry FeedEntry) Candidate {
	publisher := cleanText(entry.Publisher)
	return Candidate{
		Title:     trimPublisher(cleanText(entry.Title), publisher),
		Link:      strings.TrimSpace(entry.Link),
		DateText:  strings.TrimSpace(entry.Published),
		Published: entry.PublishedParsed,
		Publisher: publisher,
	}
}

// trimPublisher 聚合类 feed（如 Google News）的标题以 " - 出版方" 结尾，
// 过滤之前去掉，关键词和长度只针对标题本身
func trimPublisher(title, publisher string) string {
	if publisher == "" {
		return title
	}
	return strings.TrimSpace(strings.TrimSuffix(title, " - "+publisher))
}

// linkElement 元素本身是 <a> 时取自身；容器取第一个有文字的内部链接；
// 标题元素（如 h2/h3）被链接包住时取外层 <a>
func linkElement(e *goquery.Selection, selector string) *goquery.Selection {
	if selector != "" {
		if s := e.Find(selector).First(); s.Length() > 0 {
			return s
		}
	}
	if goquery.NodeName(e) == "a" {
		if _, ok := e.Attr("href"); ok {
			return e
		}
	}

	links := e.Find("a[href]")
	if s := links.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return cleanText(s.Text()) != ""
	}).First(); s.Length() > 0 {
		return s
	}
	if s := links.First(); s.Length() > 0 {
		return s
	}
	if s := e.ParentsFiltered("a[href]").First(); s.Length() > 0 {
		return s
	}
	return nil
}

func extractDate(e *goquery.Selection, selector string) string {
	var s *goquery.Selection
	if selector != "" {
		s = e.Find(selector).First()
	} else {
		s = e.Find("time").First()
	}
	if s.Length() == 0 {
		return ""
	}
	if dt, ok := s.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return strings.TrimSpace(dt)
	}
	return cleanText(s.Text())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
