package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pvb-admin/internal/listeners"
	"pvb-admin/internal/repositories"
	"pvb-admin/internal/routes"
	"pvb-admin/pkg/config"
	"pvb-admin/pkg/customvalidator"
	"pvb-admin/pkg/database/postgresql"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/eventbus"
	applogger "pvb-admin/pkg/logger"
	"pvb-admin/pkg/metrics"
	appmiddleware "pvb-admin/pkg/middleware"
	"pvb-admin/pkg/service"
	"pvb-admin/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer func() { _ = logger.Sync() }()
	loggers := applogger.NewLoggers(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.MigrateOnStart {
		if err := postgresql.Migrate(ctx, cfg.Postgres.DSN, postgresql.MigrateUp, logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer dbConn.Close()

	cache := newCache(ctx, cfg, logger)

	bus := eventbus.New(loggers.Events)
	listeners.NewOrderListener(loggers.Events).Register(bus)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = utils.ErrorResponse(c, err, loggers.HTTP)
	}

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("registering validation rules failed", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			loggers.HTTP.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusInternalServerError, "Internal server error", err, nil), loggers.HTTP)
			}
			return err
		},
	}))
	e.Use(appmiddleware.RequestLogger(loggers.HTTP))
	e.Use(metrics.Middleware())

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.TokenTTL)
	routes.InitRouter(e, dbConn, cache, bus, jwtSvc, loggers, cfg)

	go func() {
		logger.Info("server started", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	bus.Wait()
}

// newCache prefers Redis and falls back to the in-process LRU when Redis is not
// configured or unreachable at startup.
func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) repositories.CacheRepositoryInterface {
	if cfg.Redis.Address == "" {
		logger.Info("using in-process read cache", zap.Int("size", cfg.Cache.Size))
		return repositories.NewLRUCacheRepository(cfg.Cache.Size, cfg.Cache.TTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, using in-process read cache", zap.String("address", cfg.Redis.Address), zap.Error(err))
		_ = client.Close()
		return repositories.NewLRUCacheRepository(cfg.Cache.Size, cfg.Cache.TTL)
	}
	logger.Info("using redis read cache", zap.String("address", cfg.Redis.Address))
	return repositories.NewRedisCacheRepository(client)
}
