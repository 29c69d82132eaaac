package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/Arcshia42/immigration-news/internal/collector"
)

const (
	summaryNameWidth  = 12
	summaryTitleWidth = 60
)

type SourceReport struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
	Err   error  `json:"-"`
	// Err 的文本，供 API 输出
	Error string `json:"error,omitempty"`
}

// Report 一轮采集的结果
type Report struct {
	RunID         string               `json:"runId"`
	Date          string               `json:"date"`
	StartedAt     time.Time            `json:"startedAt"`
	Duration      time.Duration        `json:"duration"`
	Sources       []SourceReport       `json:"sources"`
	Duplicates    int                  `json:"duplicates"`
	FailedSources int                  `json:"failedSources"`
	Translated    int                  `json:"translated"`
	Snapshots     []string             `json:"snapshots"`
	Items         []collector.NewsItem `json:"-"`
}

func (r *Report) Total() int { return len(r.Items) }

// Summary 便于在终端查看的多行摘要，中英文标题按显示宽度对齐截断
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s date=%s total=%d duplicates=%d translated=%d failed=%d took=%s\n",
		r.RunID, r.Date, r.Total(), r.Duplicates, r.Translated, r.FailedSources, r.Duration.Round(time.Millisecond))
	for _, s := range r.Sources {
		status := fmt.Sprintf("%d items", s.Items)
		if s.Err != nil {
			status = "failed: " + s.Err.Error()
		}
		fmt.Fprintf(&b, "  %s %s\n", runewidth.FillRight(s.Name, summaryNameWidth), status)
	}
	for i, it := range r.Items {
		fmt.Fprintf(&b, "  %2d. %s\n", i+1, runewidth.Truncate(it.Title, summaryTitleWidth, "…"))
	}
	return strings.TrimRight(b.String(), "\n")
}
