package collector

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// defaultDateLayouts 源未指定格式时依次尝试
var defaultDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DateLayout,
	"2006/01/02",
	"2006.01.02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 January 2006",
	"2006年1月2日",
	"2006年01月02日",
}

// Normalizer 把候选转换成最终的 NewsItem
type Normalizer struct {
	Code     string
	Name     string
	Origin   *url.URL
	Layouts  []string
	Location *time.Location
	// 本次运行的时间，日期无法解析时使用
	RunTime time.Time
	// 为 true 时把 feed 条目的 publisher 附加到来源上
	IncludePublisher bool
}

// Normalize 链接无法解析为绝对 http(s) 地址时返回 *GapError
func (n Normalizer) Normalize(c Candidate) (NewsItem, error) {
	link, err := n.ResolveLink(c.Link)
	if err != nil {
		return NewsItem{}, err
	}

	title := cleanText(c.Title)
	source := n.Name
	if n.IncludePublisher && c.Publisher != "" {
		source = fmt.Sprintf("%s (%s)", n.Name, c.Publisher)
	}

	return NewsItem{
		Title:  TagTitle(n.Code, title),
		Link:   link,
		Source: source,
		Date:   n.CanonicalDate(c),
	}, nil
}

// ResolveLink 相对地址按源的 origin 解析
func (n Normalizer) ResolveLink(href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", gap("link", "missing")
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", gap("link", "unparseable: "+err.Error())
	}
	if !u.IsAbs() && n.Origin != nil {
		u = n.Origin.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", gap("link", "not an absolute http(s) url: "+href)
	}
	if u.Host == "" {
		return "", gap("link", "missing host: "+href)
	}
	return u.String(), nil
}

// CanonicalDate 解析失败时回退到运行日期，统一使用 Location 所在时区
func (n Normalizer) CanonicalDate(c Candidate) string {
	loc := n.Location
	if loc == nil {
		loc = time.UTC
	}
	if c.Published != nil && !c.Published.IsZero() {
		return c.Published.In(loc).Format(DateLayout)
	}
	if t, ok := parseDate(c.DateText, n.Layouts, loc); ok {
		return t.Format(DateLayout)
	}
	return n.RunTime.In(loc).Format(DateLayout)
}

func parseDate(s string, layouts []string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, group := range [][]string{layouts, defaultDateLayouts} {
		for _, layout := range group {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.In(loc), true
			}
		}
	}
	return time.Time{}, false
}

// TagTitle 标题前加 "[CODE] "；已带标记的不重复添加
func TagTitle(code, title string) string {
	if code == "" {
		return title
	}
	tag := "[" + code + "] "
	if strings.HasPrefix(title, tag) {
		return title
	}
	return tag + title
}

// SplitTag 拆出开头的 "[CODE] " 标记，没有标记时 tag 为空
func SplitTag(title string) (tag, rest string) {
	if !strings.HasPrefix(title, "[") {
		return "", title
	}
	end := strings.Index(title, "] ")
	if end <= 1 || strings.ContainsAny(title[1:end], "[] ") {
		return "", title
	}
	return title[:end+2], title[end+2:]
}
