package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Radioacti1ve/MEOWShop/internal/config"
	"github.com/Radioacti1ve/MEOWShop/internal/engine"
	esengine "github.com/Radioacti1ve/MEOWShop/internal/engine/elasticsearch"
	"github.com/Radioacti1ve/MEOWShop/internal/engine/memory"
	"github.com/Radioacti1ve/MEOWShop/internal/event"
	handler "github.com/Radioacti1ve/MEOWShop/internal/handler/http"
	pgrepo "github.com/Radioacti1ve/MEOWShop/internal/repository/postgres"
	redisrepo "github.com/Radioacti1ve/MEOWShop/internal/repository/redis"
	"github.com/Radioacti1ve/MEOWShop/internal/service"
	"github.com/Radioacti1ve/MEOWShop/pkg/database"
	"github.com/Radioacti1ve/MEOWShop/pkg/health"
	pkgkafka "github.com/Radioacti1ve/MEOWShop/pkg/kafka"
)

// Rating cache key prefixes, one per TTL domain.
const (
	detailCachePrefix = "rating:detail:"
	listCachePrefix   = "rating:list:"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	pool        *pgxpool.Pool
	redisClient *redis.Client
	syncService *service.SyncService
	consumer    *event.ProductConsumer
	httpServer  *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Relational store: the source of truth for the index.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	repo := pgrepo.NewCatalogRepository(pool)

	// Redis rating caches, one per TTL domain.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}
	detailCache := redisrepo.NewRatingCache(redisClient, detailCachePrefix, cfg.DetailTTL())
	listCache := redisrepo.NewRatingCache(redisClient, listCachePrefix, cfg.ListTTL())

	// Search engine.
	var eng engine.SearchEngine
	var esEng *esengine.Engine
	switch cfg.SearchEngine {
	case "elasticsearch":
		esEng, err = esengine.New(ctx, esengine.Config{
			URL:            cfg.ElasticsearchURL,
			Alias:          cfg.ElasticsearchAlias,
			ConnectRetries: cfg.ElasticsearchConnectRetries,
		}, logger)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = esEng
		logger.Info("elasticsearch search engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("alias", cfg.ElasticsearchAlias),
		)
	default:
		eng = memory.New()
		logger.Info("in-memory search engine initialized")
	}

	// Service layer.
	syncService := service.NewSyncService(repo, eng, logger)
	searchService := service.NewSearchService(eng, logger)
	ratingService := service.NewRatingService(repo, detailCache, listCache, logger)
	catalogService := service.NewCatalogService(repo, ratingService, logger)

	// Kafka consumer for incremental index sync.
	var consumer *event.ProductConsumer
	if cfg.KafkaSyncEnabled {
		consumer = event.NewProductConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, syncService, logger)
		logger.Info("kafka product consumer initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("group", cfg.KafkaGroupID),
		)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	if esEng != nil {
		healthHandler.Register("elasticsearch", esEng.Ping)
	}
	if cfg.KafkaSyncEnabled {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	// HTTP router.
	router := handler.NewRouter(
		searchService,
		catalogService,
		syncService,
		healthHandler,
		handler.CORSConfig{AllowedOrigins: cfg.AllowedOrigins, Environment: cfg.Environment},
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		pool:        pool,
		redisClient: redisClient,
		syncService: syncService,
		consumer:    consumer,
		httpServer:  httpServer,
	}, nil
}

// Run starts the HTTP server, the Kafka consumer and the startup reindex,
// blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Populate the index in the background. The alias swap keeps the
	// previous document set live until the rebuild completes.
	go func() {
		count, err := a.syncService.ReindexAll(ctx)
		if err != nil {
			a.logger.Error("startup reindex failed", slog.String("error", err.Error()))
			return
		}
		a.logger.Info("startup reindex complete", slog.Int("documents", count))
	}()

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
