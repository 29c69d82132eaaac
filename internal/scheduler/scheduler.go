package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Arcshia42/immigration-news/internal/collector"
	"github.com/Arcshia42/immigration-news/internal/processor"
	"github.com/Arcshia42/immigration-news/internal/storage"
)

// ErrRunInProgress 上一轮还没结束时再次触发
var ErrRunInProgress = errors.New("collect run already in progress")

type Options struct {
	// 同时抓取的源数量，默认 1 即按优先级逐个抓取
	Concurrency int
	Location    *time.Location
	// 为空时跳过翻译
	Translator *processor.Translator
	Now        func() time.Time
}

type Scheduler struct {
	cron        *cron.Cron
	fetchers    []collector.Fetcher
	aggregator  *processor.Aggregator
	translator  *processor.Translator
	sink        storage.Sink
	concurrency int
	loc         *time.Location
	now         func() time.Time

	running sync.Mutex
}

func New(fetchers []collector.Fetcher, agg *processor.Aggregator, sink storage.Sink, opts Options) *Scheduler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if agg == nil {
		agg = processor.NewAggregator()
	}
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(opts.Location)),
		fetchers:    fetchers,
		aggregator:  agg,
		translator:  opts.Translator,
		sink:        sink,
		concurrency: opts.Concurrency,
		loc:         opts.Location,
		now:         opts.Now,
	}
}

// Schedule 注册定时采集，spec 为标准 5 段 cron 表达式
func (s *Scheduler) Schedule(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			log.Printf("scheduled collect failed: %v", err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 等待正在执行的定时任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce 执行一轮完整采集：抓取 → 聚合去重 → 翻译 → 写快照。
// 单个源失败只影响该源；快照写入失败返回 *storage.PersistError，
// ctx 被取消时不写快照，返回包装了 ctx.Err() 的错误。
func (s *Scheduler) RunOnce(ctx context.Context) (*Report, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	start := s.now()
	report := &Report{
		RunID:     uuid.NewString(),
		Date:      start.In(s.loc).Format(collector.DateLayout),
		StartedAt: start,
	}
	log.Printf("start collect job %s (sources=%d)...", report.RunID, len(s.fetchers))

	results := s.collect(ctx)
	// 调用方已取消时各源都会失败，不能用空结果覆盖上一份快照
	if err := ctx.Err(); err != nil {
		log.Printf("collect job %s aborted: %v", report.RunID, err)
		return nil, fmt.Errorf("collect job %s aborted: %w", report.RunID, err)
	}
	for _, r := range results {
		sr := SourceReport{Name: r.Source, Items: len(r.Items), Err: r.Err}
		if r.Err != nil {
			sr.Error = r.Err.Error()
		}
		report.Sources = append(report.Sources, sr)
	}

	items, stats := s.aggregator.Merge(results)
	report.Duplicates = stats.Duplicates
	report.FailedSources = stats.FailedSources

	if s.translator != nil && len(items) > 0 {
		items, report.Translated = s.translator.TranslateItems(ctx, items, s.concurrency)
	}
	report.Items = items
	if err := ctx.Err(); err != nil {
		log.Printf("collect job %s aborted: %v", report.RunID, err)
		return nil, fmt.Errorf("collect job %s aborted: %w", report.RunID, err)
	}

	ctx = storage.ContextWithRunID(ctx, report.RunID)
	for _, name := range []string{storage.SnapshotName(report.Date), storage.LatestName} {
		if err := s.sink.Write(ctx, name, items); err != nil {
			report.Duration = s.now().Sub(start)
			log.Printf("collect job %s: %v", report.RunID, err)
			return report, err
		}
		report.Snapshots = append(report.Snapshots, name)
	}

	report.Duration = s.now().Sub(start)
	log.Printf("collect job %s done\n%s", report.RunID, report.Summary())
	return report, nil
}

// collect 并发抓取，结果按 fetchers 的顺序（即优先级）返回，与完成先后无关
func (s *Scheduler) collect(ctx context.Context) []processor.SourceResult {
	results := make([]processor.SourceResult, len(s.fetchers))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, f := range s.fetchers {
		i, f := i, f
		g.Go(func() error {
			name := f.Name()
			// 单个源 panic 只记为该源失败
			defer func() {
				if r := recover(); r != nil {
					log.Printf("fetch %s panic: %v", name, r)
					results[i] = processor.SourceResult{Source: name, Err: fmt.Errorf("fetch %s panic: %v", name, r)}
				}
			}()
			items, err := f.Fetch(ctx)
			if err != nil {
				log.Printf("fetch %s error: %v", name, err)
				results[i] = processor.SourceResult{Source: name, Err: err}
				return nil
			}
			if len(items) == 0 {
				log.Printf("fetch %s got 0 items", name)
			}
			results[i] = processor.SourceResult{Source: name, Items: items}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
