package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/dharmasatrya/flightops/internal/aggregator"
	"github.com/dharmasatrya/flightops/internal/apiclient"
	"github.com/dharmasatrya/flightops/internal/config"
	"github.com/dharmasatrya/flightops/internal/handler"
	"github.com/dharmasatrya/flightops/internal/logging"
	"github.com/dharmasatrya/flightops/internal/ratelimit"
	"github.com/dharmasatrya/flightops/internal/session"
	"github.com/dharmasatrya/flightops/internal/timezone"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogDir)
	slog.SetDefault(logger)

	loc, err := timezone.LoadViewerLocation(cfg.ViewerTZ)
	if err != nil {
		logger.Error("invalid VIEWER_TZ", slog.String("value", cfg.ViewerTZ), slog.Any("error", err))
		os.Exit(1)
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Error("failed to connect to Redis", slog.Any("error", err))
		os.Exit(1)
	}
	sessions := session.NewManager(store, logger)
	defer sessions.Close()

	rateLimiter := ratelimit.NewEndpointLimiter(cfg.RateLimit())
	// Login attempts get a tighter bucket than screen reads.
	rateLimiter.SetEndpointLimit(apiclient.EndpointLogin, 2, 5)
	rateLimiter.SetEndpointLimit(apiclient.EndpointRegister, 1, 3)

	client := apiclient.New(apiclient.Config{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.APITimeout,
		RateLimiter: rateLimiter,
	})
	agg := aggregator.NewAggregator(client, aggregator.Config{
		Timeout: cfg.FetchTimeout,
		Logger:  logger,
	})

	h := handler.New(handler.Config{
		API:          client,
		Aggregator:   agg,
		Sessions:     sessions,
		Location:     loc,
		Logger:       logger,
		CookieSecure: cfg.CookieSecure,
		SessionTTL:   cfg.SessionTTL,
	})

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(io.Discard)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("recovered from panic", slog.Any("error", err), slog.String("stack", string(stack)))
			return err
		},
	}))
	e.Use(slogecho.NewWithConfig(logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
	}))
	e.Use(middleware.RequestID())

	h.Routes(e)

	go func() {
		logger.Info("starting flight operations dashboard",
			slog.String("port", cfg.Port),
			slog.String("api", cfg.APIBaseURL),
			slog.String("session_store", cfg.SessionStore),
			slog.String("viewer_tz", loc.String()))
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", slog.Any("error", err))
	}
}

func newSessionStore(cfg config.Config) (session.Store, error) {
	if cfg.SessionStore == config.StoreRedis {
		store, err := session.NewRedisStore(cfg.Redis())
		if err != nil {
			return nil, err
		}
		slog.Info("redis session store enabled",
			slog.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
			slog.Duration("ttl", cfg.SessionTTL))
		return store, nil
	}
	slog.Info("in-memory session store enabled", slog.Duration("ttl", cfg.SessionTTL))
	return session.NewMemoryStore(cfg.SessionTTL), nil
}
