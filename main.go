package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"pantun-api/cache"
	"pantun-api/config"
	"pantun-api/logger"
	"pantun-api/metrics"
	"pantun-api/middleware"
	"pantun-api/repository"
	"pantun-api/rpc"
	"pantun-api/search"
)

func main() {
	// ---- Load config
	cfg := config.Load()
	log := logger.InitLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// ---- DB
	pool, err := pgxpool.New(context.Background(), cfg.Database.ConnString())
	if err != nil {
		log.Error("db open error", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		log.Error("db ping error", "error", err)
		os.Exit(1)
	}
	log.Info("DB connected")

	repo := repository.NewPantunRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	svc := &rpc.Service{Store: repo}

	if cfg.Search.Addr != "" {
		es, err := search.New(cfg.Search.Addr, cfg.Search.Index)
		if err != nil {
			log.Error("es init error", "error", err)
			os.Exit(1)
		}
		// best-effort: an existing index answers 400
		if err := es.EnsureIndex(ctx); err != nil {
			log.Warn("es ensure index failed", "error", err)
		}
		svc.Index = es
		log.Info("search index enabled", "addr", cfg.Search.Addr, "index", cfg.Search.Index)
	}

	if cfg.Cache.Addr != "" {
		rc := cache.New(cfg.Cache.Addr, cfg.Cache.DB, cfg.Cache.TTLSeconds)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis ping failed, cache stays best-effort", "error", err)
		}
		svc.Cache = rc
		log.Info("cache enabled", "addr", cfg.Cache.Addr, "ttl_seconds", cfg.Cache.TTLSeconds)
	}

	m := metrics.New()
	srv, err := rpc.NewServer(svc.Procedures(), m)
	if err != nil {
		log.Error("procedure table invalid", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	// Health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now()})
	})
	r.GET("/db/health", func(c *gin.Context) {
		cnt, err := repo.Count(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"db_ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"db_ok": true, "pantun_count": cnt})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	srv.Register(r)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
