package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/fundflow/internal/adapter/http"
	"github.com/iho/fundflow/internal/adapter/http/handler"
	postgresRepo "github.com/iho/fundflow/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fundflow/internal/adapter/repository/redis"
	"github.com/iho/fundflow/internal/infrastructure/config"
	"github.com/iho/fundflow/internal/infrastructure/eventpublisher"
	"github.com/iho/fundflow/internal/infrastructure/logger"
	"github.com/iho/fundflow/internal/infrastructure/metrics"
	"github.com/iho/fundflow/internal/infrastructure/postgres"
	"github.com/iho/fundflow/internal/infrastructure/redis"
	"github.com/iho/fundflow/internal/usecase"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// run wires every dependency and blocks until ctx is cancelled or a component fails.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{
		URL:         cfg.RedisURL,
		PoolSize:    cfg.RedisPoolSize,
		DialTimeout: cfg.RedisDialTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info().Msg("connected to redis")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	fundRepo := postgresRepo.NewFundRepository(pool)
	investorRepo := postgresRepo.NewInvestorRepository(pool)
	callRepo := postgresRepo.NewCapitalCallRepository(pool)
	distRepo := postgresRepo.NewDistributionRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(logger).WithErrorRecorder(m)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	attributionCfg := cfg.Attribution()
	fundUC := usecase.NewFundUseCase(txManager, fundRepo, investorRepo, outboxRepo, idGen, m)
	callUC := usecase.NewCapitalCallUseCase(txManager, fundRepo, investorRepo, callRepo, outboxRepo, idGen, retrier, m, logger)
	distUC := usecase.NewDistributionUseCase(txManager, fundRepo, investorRepo, distRepo, outboxRepo, idGen, retrier, m, logger)
	attributionUC := usecase.NewAttributionUseCase(fundRepo, investorRepo, cache, cfg.AttributionCacheTTL, attributionCfg, m, logger)
	reconciliationUC := usecase.NewReconciliationUseCase(fundRepo, investorRepo, callRepo, distRepo)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		FundHandler:         handler.NewFundHandler(fundUC),
		CapitalCallHandler:  handler.NewCapitalCallHandler(callUC),
		DistributionHandler: handler.NewDistributionHandler(distUC),
		AttributionHandler:  handler.NewAttributionHandler(attributionUC, reconciliationUC),
		CalculatorHandler:   handler.NewCalculatorHandler(attributionCfg),
		HealthHandler:       handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:    idempotencyStore,
		IdempotencyTTL:      cfg.IdempotencyTTL,
		AllowedOrigins:      cfg.CORSAllowedOrigins,
		Logger:              logger,
		Metrics:             m,
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  newPublisher(cfg, redisClient, logger),
		Metrics:    m,
		Logger:     logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	server := newHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}

func newPublisher(cfg *config.Config, client *goredis.Client, logger zerolog.Logger) eventpublisher.Publisher {
	if cfg.EventsPublisher == "log" || client == nil {
		return eventpublisher.NewLogPublisher(logger)
	}
	return eventpublisher.NewRedisPublisher(client, cfg.EventsChannel)
}
