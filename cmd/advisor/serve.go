package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/card-advisor-go/internal/config"
	"github.com/boddenberg/card-advisor-go/internal/handler"
	"github.com/boddenberg/card-advisor-go/internal/infra/artwork"
	"github.com/boddenberg/card-advisor-go/internal/infra/cache"
	"github.com/boddenberg/card-advisor-go/internal/infra/client"
	"github.com/boddenberg/card-advisor-go/internal/infra/observability"
	"github.com/boddenberg/card-advisor-go/internal/infra/resilience"
	"github.com/boddenberg/card-advisor-go/internal/infra/utilization"
	"github.com/boddenberg/card-advisor-go/internal/port"
	"github.com/boddenberg/card-advisor-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the advisor HTTP API until SIGINT or SIGTERM.

Configuration comes from the environment (PORT, LOG_LEVEL, CATALOG_PATH,
ARTWORK_DIR, UTILIZATION_API_URL, REDIS_ADDR, RATE_LIMIT_RPS, ...).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides $PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// --- Config ---
	cfg := config.Load()
	if servePort != 0 {
		cfg.Port = servePort
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("catalog", catalogPath),
		zap.String("utilization_api", cfg.UtilizationAPIURL),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Float64("rate_limit_rps", cfg.RateLimitRPS),
		zap.Bool("tracing", cfg.TracingEnabled),
	)

	// --- Tracing ---
	shutdownTracer := observability.NoopTracer()
	if cfg.TracingEnabled {
		var err error
		shutdownTracer, err = observability.InitTracer(cfg.OTLPEndpoint, "card-advisor")
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Catalog ---
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	logger.Info("catalog loaded",
		zap.Int("cards", cat.Len()),
		zap.Int("categories", len(cat.Categories())),
	)

	// --- Utilization ---
	var source port.UtilizationSource = utilization.Zero{}
	if cfg.UtilizationAPIURL != "" {
		var utilCache port.Cache[string]
		if cfg.RedisAddr != "" {
			rdb := cache.NewRedisClient(cfg.RedisAddr)
			defer rdb.Close()

			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := rdb.Ping(pingCtx).Err(); err != nil {
				logger.Warn("redis unreachable, lookups will miss until it recovers",
					zap.String("addr", cfg.RedisAddr),
					zap.Error(err),
				)
			}
			cancel()
			utilCache = cache.NewRedis(rdb, "advisor:", cfg.CacheTTL, logger)
		} else {
			mem := cache.New[string](cfg.CacheTTL)
			defer mem.Close()
			utilCache = mem
		}

		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		}
		source = client.NewStatementClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.UtilizationAPIURL,
			resilience.NewCircuitBreaker("statement-api", logger),
			resilienceCfg,
			utilCache,
			metrics,
		)
		logger.Info("using Statement API for utilization", zap.String("url", cfg.UtilizationAPIURL))
	} else {
		logger.Info("no utilization source configured, balances start at zero")
	}

	// --- Service ---
	svc := service.NewAdvisorService(
		cat,
		source,
		artwork.NewDir(cfg.ArtworkDir, logger),
		metrics,
		logger,
		cfg.MaxConcurrency,
	)

	// --- Router ---
	limiter := handler.NewLimiter(handler.RateLimit{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst})
	router := handler.NewRouter(svc, metrics, limiter, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
