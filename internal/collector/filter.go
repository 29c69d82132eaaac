package collector

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultBlocklist 这些前缀的链接不是可访问的文章
var DefaultBlocklist = []string{"javascript:", "mailto:", "tel:"}

// Relevance 单个源的相关性规则
type Relevance struct {
	MinTitleLen int // 按字符（rune）计，中英文同样对待
	// 非空时标题必须包含其中至少一个（忽略大小写）
	Keywords  []string
	Blocklist []string
}

// Check 返回 nil 表示保留该候选，否则返回 *GapError 说明原因
func (r Relevance) Check(c Candidate) error {
	if c.Title == "" {
		return gap("title", "empty")
	}
	if n := utf8.RuneCountInString(c.Title); n < r.MinTitleLen {
		return gap("title", fmt.Sprintf("too short (%d < %d)", n, r.MinTitleLen))
	}

	link := strings.ToLower(strings.TrimSpace(c.Link))
	if strings.HasPrefix(link, "#") {
		return gap("link", "in-page anchor")
	}
	for _, b := range r.blocklist() {
		if b != "" && strings.Contains(link, strings.ToLower(b)) {
			return gap("link", "blocked by "+b)
		}
	}

	if len(r.Keywords) > 0 && !matchesKeywords(c.Title, r.Keywords) {
		return gap("title", "no keyword match")
	}
	return nil
}

func (r Relevance) blocklist() []string {
	if r.Blocklist == nil {
		return DefaultBlocklist
	}
	return r.Blocklist
}

func matchesKeywords(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
