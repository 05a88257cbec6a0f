package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightquery/internal/config"
	"github.com/dharmasatrya/flightquery/internal/decoder"
	"github.com/dharmasatrya/flightquery/internal/diagnostics"
	"github.com/dharmasatrya/flightquery/internal/handler"
	"github.com/dharmasatrya/flightquery/internal/logger"
	"github.com/dharmasatrya/flightquery/internal/search"
)

func main() {
	cfg, err := config.Load(os.Getenv("FLIGHTQUERY_CONFIG_DIR"))
	if err != nil {
		logger.L().Fatal("Failed to load config", zap.Error(err))
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		logger.L().Fatal("Failed to init logger", zap.Error(err))
	}
	defer logger.Sync()
	log := logger.L()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	store, err := newDiagnosticsStore(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer store.Close()

	dec := decoder.New(
		decoder.WithLogger(log.Named("decoder")),
		decoder.WithDefaultCurrency(cfg.DefaultCurrency),
	)
	var opts []handler.Option
	client, err := newSearchClient(cfg, dec, store)
	if err != nil {
		log.Fatal("Invalid fetch config", zap.Error(err))
	}
	if client != nil {
		opts = append(opts, handler.WithSearch(client))
	}
	h := handler.NewHandler(dec, store, handler.Defaults{
		Currency: cfg.DefaultCurrency,
		Language: cfg.DefaultLanguage,
	}, opts...)
	h.Register(e)

	go func() {
		log.Info("Starting flight query server", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed", zap.Error(err))
	}
}

func newDiagnosticsStore(cfg config.Config) (diagnostics.Store, error) {
	log := logger.L()

	switch cfg.Diagnostics {
	case "redis":
		store, err := diagnostics.NewRedisStore(diagnostics.RedisConfig{
			Addr:      cfg.Redis.Addr(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.TTL,
		})
		if err != nil {
			return nil, err
		}
		log.Info("Redis diagnostics enabled", zap.String("addr", cfg.Redis.Addr()), zap.Duration("ttl", cfg.Redis.TTL))
		return store, nil
	case "memory":
		log.Info("In-memory diagnostics enabled")
		return diagnostics.NewMemoryStore(), nil
	default:
		log.Info("Diagnostics disabled")
		return diagnostics.NewNoOpStore(), nil
	}
}

// newSearchClient returns nil when no fetch endpoint is configured; the
// search routes are then not registered.
func newSearchClient(cfg config.Config, dec *decoder.Decoder, store diagnostics.Store) (*search.Client, error) {
	if cfg.Fetch.URL == "" {
		return nil, nil
	}
	mode, err := search.ParseMode(cfg.Fetch.Mode)
	if err != nil {
		return nil, err
	}

	fetcher := search.NewHTTPFetcher(cfg.Fetch.URL, cfg.Fetch.Timeout, cfg.DefaultLanguage, cfg.DefaultCurrency)
	log := logger.L().Named("search")
	log.Info("Search enabled", zap.String("url", cfg.Fetch.URL), zap.String("mode", string(mode)))

	return search.NewClient(fetcher, dec, store, log, search.Config{
		Mode:        mode,
		Timeout:     cfg.Fetch.Timeout,
		MaxRetries:  cfg.Fetch.Retries,
		RetryDelays: search.DefaultConfig().RetryDelays,
	}), nil
}
