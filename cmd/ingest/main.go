package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rushnews/newsstream/internal/config"
	"github.com/rushnews/newsstream/internal/ingest"
	"github.com/rushnews/newsstream/pkg/logger"
	"github.com/rushnews/newsstream/pkg/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	var seen ingest.SeenChecker
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// Without Redis every run refetches everything; the upserts make
		// that safe, just slower.
		logger.Warn("redis unavailable, url dedup disabled", zap.Error(err))
	} else {
		seen = ingest.NewRedisSeen(rdb)
	}
	cancel()

	syncClient := ingest.NewSyncClient(cfg.Sync.APIBaseURL, cfg.Sync.APIKey)
	extractor := ingest.NewExtractor()

	storyPipeline := ingest.NewStoryPipeline(
		ingest.NewRSSIngester(ingest.DefaultRSSSources, extractor, seen),
		ingest.NewHTMLIngester(ingest.DefaultHTMLSources, extractor, seen),
		syncClient,
	)

	ctx := context.Background()
	group := worker.NewWorkerGroup(ctx)
	group.Add(storyPipeline, cfg.Ingest.StoryInterval)

	switch {
	case cfg.Ingest.XTrendsFile != "":
		source := ingest.FileTrendSource{Path: cfg.Ingest.XTrendsFile}
		group.Add(ingest.NewTrendPipeline(source, syncClient), cfg.Ingest.TrendInterval)
	case cfg.Ingest.XTrendsURL != "":
		source := ingest.URLTrendSource{URL: cfg.Ingest.XTrendsURL}
		group.Add(ingest.NewTrendPipeline(source, syncClient), cfg.Ingest.TrendInterval)
	default:
		logger.Info("no trend source configured, trend pipeline disabled")
	}

	group.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	group.Stop(30 * time.Second)
}
