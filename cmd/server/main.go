package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"github.com/sifan077/snipr/config"
	appmodel "github.com/sifan077/snipr/internal/app/model"
	apprepository "github.com/sifan077/snipr/internal/app/repository"
	appserver "github.com/sifan077/snipr/internal/app/server"
	appservice "github.com/sifan077/snipr/internal/app/service"
	"github.com/sifan077/snipr/internal/http/middleware"
	"github.com/sifan077/snipr/internal/infra/logger"
	infraPostgres "github.com/sifan077/snipr/internal/infra/postgres"
	infraPrometheus "github.com/sifan077/snipr/internal/infra/prometheus"
	infraRedis "github.com/sifan077/snipr/internal/infra/redis"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := pflag.NewFlagSet("snipr-server", pflag.ExitOnError)
	fs.String("addr", "", "listen address")
	fs.String("public-url", "", "base URL used in returned short links")
	fs.Bool("metrics", false, "expose Prometheus metrics")
	fs.Int("metrics-port", 0, "Prometheus metrics port")
	fs.String("log-level", "", "log level")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		logger.MustInit(logger.Config{Development: true}).Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.MustInit(logger.FromAppConfig(cfg.Log, "stdout"))
	defer func() { _ = logger.Sync() }()

	log.Info("Configuration loaded successfully",
		zap.String("addr", cfg.Server.Addr),
		zap.String("public_base_url", cfg.Server.PublicBaseURL),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.Link{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	registry := prom.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infraPrometheus.NewServiceMetrics(registry)

	if cfg.Prometheus.Enabled {
		promServer := infraPrometheus.NewServer(cfg.Prometheus, registry)
		go func() {
			log.Info("Starting Prometheus metrics server", zap.String("addr", promServer.Addr))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Prometheus metrics server disabled")
	}

	linkRepo := apprepository.NewLinkRepository(gormDB)

	filter := appservice.NewAliasFilter(0)
	seeded, err := filter.Seed(ctx, linkRepo)
	if err != nil {
		log.Fatal("Failed to seed alias filter", zap.Error(err))
	}
	log.Info("Alias filter seeded", zap.Int("codes", seeded))

	links := appservice.NewLinkService(appservice.Deps{
		Repo:       linkRepo,
		Cache:      apprepository.NewLinkCache(redisClient),
		Filter:     filter,
		Logger:     log,
		Metrics:    metrics,
		CodeLength: cfg.Server.CodeLength,
		CacheTTL:   cfg.Server.CacheTTL,
	})

	server := appserver.New(appserver.Dependencies{
		Logger:        log,
		Postgres:      pool,
		Redis:         redisClient,
		Links:         links,
		Metrics:       metrics,
		PublicBaseURL: cfg.Server.PublicBaseURL,
		RateLimit: middleware.RateLimitConfig{
			MaxRequests: cfg.Server.RateLimit,
			Window:      cfg.Server.RateWindow,
		},
		CORS: middleware.CORSConfig{AllowOrigins: cfg.Server.CORSOrigins},
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Fiber shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting HTTP server", zap.String("addr", cfg.Server.Addr))
	if err := server.Listen(cfg.Server.Addr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
