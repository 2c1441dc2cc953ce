package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db     Pinger
	logger *zap.Logger
}

func NewHealthController(db Pinger, logger *zap.Logger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

func (c *HealthController) Health(ctx echo.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
	defer cancel()

	if err := c.db.Ping(pingCtx); err != nil {
		c.logger.Error("health check failed", zap.Error(err))
		return ctx.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "database": "down"})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "database": "up"})
}
