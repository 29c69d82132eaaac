package scheduler

import (
	"io"
	"log"

	"github.com/Arcshia42/immigration-news/internal/collector"
	"github.com/Arcshia42/immigration-news/internal/config"
	"github.com/Arcshia42/immigration-news/internal/processor"
	"github.com/Arcshia42/immigration-news/internal/storage"
)

// Components 由配置组装出的运行时组件，Close 释放可选的外部连接
type Components struct {
	Scheduler *Scheduler
	Files     *storage.FileStore

	closers []io.Closer
}

func (c *Components) Close() {
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil {
			log.Printf("warn: close: %v", err)
		}
	}
}

// Build Redis 与 PostgreSQL 都是可选的，连接失败只告警并降级
func Build(cfg *config.Config) (*Components, error) {
	fetcher := collector.NewCollyFetcher(cfg.UserAgent, cfg.FetchTimeout)
	adapters, err := collector.NewAdapters(cfg.Sources, fetcher, cfg.Location)
	if err != nil {
		return nil, err
	}

	comp := &Components{Files: storage.NewFileStore(cfg.DataDir)}

	var mirrors []storage.Sink
	if cfg.PostgresDSN != "" {
		db, err := storage.NewDBStore(cfg.PostgresDSN)
		if err != nil {
			log.Printf("warn: postgres mirror disabled: %v", err)
		} else {
			mirrors = append(mirrors, db)
			comp.closers = append(comp.closers, db)
		}
	}

	var translator *processor.Translator
	if cfg.TranslateEnabled {
		var cache processor.Cache
		if cfg.RedisAddr != "" {
			rc, err := processor.NewRedisCache(cfg.RedisAddr, cfg.TranslateCacheTTL)
			if err != nil {
				log.Printf("warn: redis ping failed, translate cache disabled: %v", err)
			} else {
				cache = rc
				comp.closers = append(comp.closers, rc)
			}
		}
		translator = processor.NewTranslator(cfg.TranslateTarget, cfg.TranslateTimeout, cache)
		translator.Endpoint = cfg.TranslateURL
		translator.FallbackURL = cfg.TranslateFallbackURL
	}

	comp.Scheduler = New(adapters, processor.NewAggregator(), storage.NewMirrored(comp.Files, mirrors...), Options{
		Concurrency: cfg.Concurrency,
		Location:    cfg.Location,
		Translator:  translator,
	})
	return comp, nil
}
