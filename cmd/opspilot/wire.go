package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mark47B/opspilot/internal/app"
	"github.com/mark47B/opspilot/internal/configs"
	"github.com/mark47B/opspilot/internal/domain/repository"
	"github.com/mark47B/opspilot/internal/domain/scoring"
	"github.com/mark47B/opspilot/internal/domain/usecase"
	"github.com/mark47B/opspilot/internal/infra/cache"
	"github.com/mark47B/opspilot/internal/infra/cache/memory"
	"github.com/mark47B/opspilot/internal/infra/cache/redisvec"
	"github.com/mark47B/opspilot/internal/infra/collect/postman"
	"github.com/mark47B/opspilot/internal/infra/reasoning/gemini"
	"github.com/mark47B/opspilot/internal/infra/resilience"
	"github.com/mark47B/opspilot/internal/infra/storage/pg"
	"github.com/mark47B/opspilot/internal/infra/storage/s3"
	"github.com/mark47B/opspilot/internal/infra/storage/sqlite"
	"github.com/mark47B/opspilot/internal/infra/telemetry"
	"github.com/mark47B/opspilot/internal/logger"
)

// components is everything a command may need; close releases what was opened.
type components struct {
	cfg     *configs.Config
	logger  *zap.Logger
	metrics *telemetry.Metrics
	service usecase.Service
	cache   repository.CacheGateway
	reports repository.ReportRepository

	closers []func() error
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}

func loadConfig() (*configs.Config, *zap.Logger, error) {
	cfg, err := configs.FromViper(v)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, log, nil
}

// build wires the full service graph from configuration.
func build(ctx context.Context) (*components, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c := &components{cfg: cfg, logger: log, metrics: telemetry.NewMetrics()}

	shutdown, err := telemetry.SetupTracing(ctx, cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(sctx)
	})

	reports, closeStore, err := openReports(cfg, log.Named("store"))
	if err != nil {
		c.close()
		return nil, err
	}
	c.reports = reports
	c.closers = append(c.closers, closeStore)

	gw, closeCache, err := openCache(ctx, cfg, log.Named("cache"))
	if err != nil {
		c.close()
		return nil, err
	}
	c.cache = gw
	c.closers = append(c.closers, closeCache)

	var reasoning repository.ReasoningGateway
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log.Named("gemini"))
		if err != nil {
			c.close()
			return nil, err
		}
		reasoning = resilience.NewReasoningBreaker(client, resilience.DefaultBreakerConfig("gemini"), log)
	} else {
		log.Warn("GEMINI_API_KEY not set, SOPs fall back to the built-in skeleton")
	}

	runner := postman.NewRunner(postman.Config{
		NewmanBin:      cfg.Postman.NewmanBin,
		CollectionsDir: cfg.Postman.CollectionsDir,
		Environment:    cfg.Postman.Environment,
		APIKey:         cfg.Postman.APIKey,
		RunnerURL:      cfg.Postman.RunnerURL,
		GitHubToken:    cfg.Postman.GitHubToken,
	}, log.Named("postman"))

	pipeline := app.NewPipeline(app.Dependencies{
		Cache:      resilience.NewCacheBreaker(gw, resilience.DefaultBreakerConfig("cache"), log),
		Sources:    runner.Sources(),
		Reasoning:  reasoning,
		Reports:    reports,
		Calculator: scoring.NewCalculator(cfg.Scoring.Weights, cfg.Scoring.Thresholds),
		Logger:     log.Named("pipeline"),
		Recorder:   c.metrics,
	}, app.PipelineConfig{
		SimilarityThreshold: cfg.Cache.SimilarityThreshold,
		ContextTopK:         cfg.Cache.ContextTopK,
		VectorDims:          cfg.Cache.VectorDims,
		CollectTimeout:      cfg.Timeouts.Collect,
		ReasoningTimeout:    cfg.Timeouts.Reasoning,
		CacheTimeout:        cfg.Timeouts.Cache,
		StoreTimeout:        cfg.Timeouts.Store,
	})
	c.service = app.NewService(pipeline, reports, gw, log.Named("service"))
	return c, nil
}

func openReports(cfg *configs.Config, log *zap.Logger) (repository.ReportRepository, func() error, error) {
	switch cfg.Store.Driver {
	case configs.StorePostgres:
		db, err := sql.Open("postgres", cfg.Store.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := pg.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		repo := pg.NewReportStorage(db, pg.NewTxManager(db, log), cfg.Store.ReportBaseURL, log)
		return repo, db.Close, nil

	case configs.StoreS3:
		repo, err := s3.NewReportStorage(s3.Config{
			Endpoint:  cfg.Store.S3Endpoint,
			AccessKey: cfg.Store.S3AccessKey,
			SecretKey: cfg.Store.S3SecretKey,
			Bucket:    cfg.Store.S3Bucket,
			Region:    cfg.Store.S3Region,
			UseSSL:    cfg.Store.S3UseSSL,
			BaseURL:   cfg.Store.ReportBaseURL,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil

	default:
		db, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewReportStorage(db, cfg.Store.ReportBaseURL, log), db.Close, nil
	}
}

func openCache(ctx context.Context, cfg *configs.Config, log *zap.Logger) (repository.CacheGateway, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Cache.Enabled {
		log.Info("semantic cache disabled")
		return cache.Disabled{}, noop, nil
	}
	if cfg.Cache.RedisURL == "" {
		log.Info("using in-process cache", zap.Int("max_entries", cfg.Cache.MaxEntries))
		return memory.New(cfg.Cache.MaxEntries, cfg.Cache.TTL), noop, nil
	}

	client, err := redisvec.NewClient(cfg.Cache.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	gw := redisvec.New(client, redisvec.Config{
		Dims:   cfg.Cache.VectorDims,
		TTL:    cfg.Cache.TTL,
		Logger: log,
	})

	ictx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Cache)
	defer cancel()
	if err := gw.EnsureIndex(ictx); err != nil {
		// key-cache mode still works without the index
		log.Warn("vector index unavailable", zap.Error(err))
	}
	return gw, client.Close, nil
}
