package main

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/pkg/cron"
	"InstaCap/internal/pkg/llm"
	"InstaCap/internal/pkg/logger"
	"InstaCap/internal/pkg/minio"
	"InstaCap/internal/pkg/mongo"
	"InstaCap/internal/pkg/redis"
	"InstaCap/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 加载配置
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		panic(err)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger(cfg.Logstash)
	if !cfg.Server.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mongo 连接，服务端暂不可达时以降级状态启动
	store, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Error("Fatal error: failed to create mongo connection", "err", err)
		panic(err)
	}
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if _, err = store.Ping(pingCtx); err != nil {
		log.Warn("MongoDB is unreachable, starting in degraded mode", "err", err)
	} else if err = store.EnsureIndexes(pingCtx); err != nil {
		log.Warn("failed to ensure mongo indexes", "err", err)
	}
	pingCancel()

	// Redis 连接，可选
	if cfg.Redis.Enable {
		if err = redis.InitRedis(cfg.Redis); err != nil {
			log.Warn("Redis is unreachable, cache and rate limit disabled", "err", err)
		}
	}

	// llm 模型初始化
	captions, err := llm.NewCaptionClient(cfg.LLM)
	if err != nil {
		log.Error("Fatal error: failed to initialize llm models", "err", err)
		panic(err)
	}

	// MinIO 连接
	objects, err := minio.Init(ctx, cfg.MinIO)
	if err != nil {
		log.Error("Fatal error: failed to initialize MinIO", "err", err)
		panic(err)
	}

	// 依赖注入
	app, err := wire.BuildApplication(ctx, &wire.Infra{
		Store:    store,
		Objects:  objects,
		Captions: captions,
	}, cfg)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		panic(err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// 定时任务
	if err = cron.InitCron(app.CronMgr, cfg.Cron.Enable); err != nil {
		log.Error("Fatal error: failed to start cron jobs", "err", err)
		panic(err)
	}
	g.Go(func() error {
		<-gctx.Done()
		if cfg.Cron.Enable {
			log.Info("Cron Jobs stopping...")
			app.CronMgr.Stop()
		}
		return nil
	})

	// HTTP 服务器
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr, "identity", app.Provider.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-gctx.Done():
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		if err := store.Disconnect(shutdownCtx); err != nil {
			log.Error("MongoDB disconnect failed", "err", err)
		}
		if err := redis.Close(); err != nil {
			log.Error("Redis close failed", "err", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("App exited with error", "err", err)
	}
	log.Info("App exited successfully.")
}
