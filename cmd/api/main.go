package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arcshia42/immigration-news/internal/api"
	"github.com/Arcshia42/immigration-news/internal/config"
	"github.com/Arcshia42/immigration-news/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	comp, err := scheduler.Build(cfg)
	if err != nil {
		log.Fatalf("init collector failed: %v", err)
	}
	defer comp.Close()

	s := comp.Scheduler
	if err := s.Schedule(cfg.CronSpec); err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	// 延迟执行首轮采集，避免与启动时的请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			log.Printf("startup collect failed: %v", err)
		}
	})

	r := api.NewRouter(api.NewServer(comp.Files, s), cfg.BasicAuthUser, cfg.BasicAuthPass)
	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		log.Printf("starting api server at %s (cron=%s) ...", srv.Addr, cfg.CronSpec)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exit: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down ...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
