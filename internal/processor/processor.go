package processor

import (
	"log"
	"strings"

	"github.com/Arcshia42/immigration-news/internal/collector"
)

// SourceResult 是单个源一次运行的结果，Err 非空时 Items 为空
type SourceResult struct {
	Source string
	Items  []collector.NewsItem
	Err    error
}

// MergeStats 聚合过程中的计数，用于运行报告
type MergeStats struct {
	Total         int
	Duplicates    int
	FailedSources int
}

// Aggregator 按源优先级拼接结果并按标题去重
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Merge results 的顺序即优先级；重复标题保留第一次出现的那条。
// 失败的源只记录日志，不影响其它源。
func (a *Aggregator) Merge(results []SourceResult) ([]collector.NewsItem, MergeStats) {
	var stats MergeStats
	seen := make(map[string]struct{})
	out := make([]collector.NewsItem, 0)

	for _, r := range results {
		if r.Err != nil {
			stats.FailedSources++
			log.Printf("source %s failed: %v", r.Source, r.Err)
			continue
		}
		var dup int
		out, dup = appendUnique(out, r.Items, seen)
		stats.Duplicates += dup
	}

	stats.Total = len(out)
	return out, stats
}

func appendUnique(out, items []collector.NewsItem, seen map[string]struct{}) ([]collector.NewsItem, int) {
	dup := 0
	for _, it := range items {
		key := dedupKey(it.Title)
		if _, ok := seen[key]; ok {
			dup++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out, dup
}

// dedupKey 折叠空白并忽略大小写
func dedupKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
