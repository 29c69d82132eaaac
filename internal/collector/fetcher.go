package collector

import "context"

// NewsItem 统一采集后的基础结构，也是快照中每一条记录的形状
type NewsItem struct {
	Title string `json:"title"`
	// 仅当翻译改变了标题时才有值，保存翻译前的原文
	OriginalTitle string `json:"original_title,omitempty"`
	Link          string `json:"link"`
	Source        string `json:"source"`
	// 日期 YYYY-MM-DD；源没有可解析的发布日期时为本次运行日期
	Date string `json:"date"`
}

// Fetcher 抽象每一个数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]NewsItem, error)
}
