package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Arcshia42/immigration-news/internal/config"
	"github.com/Arcshia42/immigration-news/internal/scheduler"
)

// 只执行一轮采集并写出快照后退出；快照写入失败或被中断时以状态码 1 退出，不覆盖已有快照
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	comp, err := scheduler.Build(cfg)
	if err != nil {
		log.Fatalf("init collector failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	report, err := comp.Scheduler.RunOnce(ctx)
	stop()
	comp.Close()
	if err != nil {
		log.Printf("collect failed: %v", err)
		os.Exit(1)
	}

	log.Printf("wrote %d items to %v", report.Total(), report.Snapshots)
}
