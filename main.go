package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/movein/movein-api/cache"
	"github.com/movein/movein-api/config"
	"github.com/movein/movein-api/db"
	"github.com/movein/movein-api/events"
	"github.com/movein/movein-api/middleware"
	"github.com/movein/movein-api/repository"
	"github.com/movein/movein-api/repository/memstore"
	"github.com/movein/movein-api/routes"
	"github.com/movein/movein-api/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("starting MoveIn API", slog.String("port", cfg.Port), slog.String("db_driver", cfg.DB.Driver))

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(cfg config.DatabaseConfig) (*repository.Store, error) {
	if cfg.Driver == config.DriverMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return memstore.New(), nil
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}
	return repository.NewGormStore(conn), nil
}

func run(cfg config.Config, logger *slog.Logger) error {
	store, err := openStore(cfg.DB)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		publisher = p
		logger.Info("publishing events", slog.String("exchange", cfg.AMQP.Exchange))
	}
	defer publisher.Close()

	tokens := services.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	svc := routes.Services{
		Tokens:    tokens,
		Auth:      services.NewAuthService(store, tokens),
		Google:    services.NewGoogleAuth(cfg.Google, store, tokens),
		Users:     services.NewUserService(store),
		Listings:  services.NewListingService(store),
		Favorites: services.NewFavoriteService(store),
		Reviews:   services.NewReviewService(store),
		Messages:  services.NewMessageService(store, publisher),
	}
	if svc.Google == nil {
		logger.Info("google sign-in disabled")
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
	)

	if cfg.Redis.Addr != "" {
		redis, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		defer redis.Close()
		router.Use(middleware.RateLimit(redis, cfg.RateLimitPerMinute))
		logger.Info("rate limiting enabled", slog.Int("per_minute", cfg.RateLimitPerMinute))
	}

	routes.Setup(router, svc, routes.Options{
		FrontendURL:   cfg.FrontendURL,
		Ping:          store.Ping,
		SecureCookies: cfg.GinMode == gin.ReleaseMode,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
