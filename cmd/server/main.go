package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rushnews/newsstream/internal/api"
	"github.com/rushnews/newsstream/internal/config"
	"github.com/rushnews/newsstream/internal/service"
	"github.com/rushnews/newsstream/internal/store"
	"github.com/rushnews/newsstream/pkg/logger"
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

	db, err := sql.Open("postgres", cfg.Database.URL())
	if err != nil {
		logger.Fatal("db open", zap.Error(err))
	}
	// The db may still be starting in docker; retry the ping.
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		logger.Info("waiting for db", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		logger.Fatal("could not connect to db", zap.Error(err))
	}

	if err := store.RunMigrations(db); err != nil {
		logger.Fatal("migrations", zap.Error(err))
	}

	repo := store.NewPgStore(db)
	svc := service.NewService(repo)
	handler := api.NewHandler(svc, cfg.Sync.APIKey)

	router := gin.Default()
	router.Use(cors.Default())
	api.RegisterRoutes(router, handler)

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
