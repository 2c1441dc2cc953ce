package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/repositories"
	"pvb-admin/internal/services"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type OrderController struct {
	service services.OrderServiceInterface
	logger  *zap.Logger
}

func NewOrderController(service services.OrderServiceInterface, logger *zap.Logger) *OrderController {
	return &OrderController{service: service, logger: logger}
}

// orderQuery reads search, status, type, employee_id and open=true.
func orderQuery(ctx echo.Context) (repositories.OrderQuery, error) {
	employeeID, err := utils.ParseUintQuery(ctx, "employee_id")
	if err != nil {
		return repositories.OrderQuery{}, err
	}
	return repositories.OrderQuery{
		Search:     strings.TrimSpace(ctx.QueryParam("search")),
		Status:     strings.TrimSpace(ctx.QueryParam("status")),
		Type:       strings.TrimSpace(ctx.QueryParam("type")),
		EmployeeID: employeeID,
		OpenOnly:   ctx.QueryParam("open") == "true",
	}, nil
}

func actor(ctx echo.Context) string {
	identity, err := utils.GetIdentityFromCtx(ctx.Request().Context())
	if err != nil {
		return ""
	}
	return identity.Email
}

func (c *OrderController) List(ctx echo.Context) error {
	query, err := orderQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	orders, total, err := c.service.List(ctx.Request().Context(), query, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, orders, filter, total)
}

func (c *OrderController) Find(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	order, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "", http.StatusOK)
}

func (c *OrderController) Stats(ctx echo.Context) error {
	stats, err := c.service.Stats(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, stats, "", http.StatusOK)
}

func (c *OrderController) Statuses(ctx echo.Context) error {
	statuses, err := c.service.Statuses(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, statuses, "", http.StatusOK)
}

func (c *OrderController) Export(ctx echo.Context) error {
	query, err := orderQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	file, err := c.service.Export(ctx.Request().Context(), query, ctx.QueryParam("format"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return ctx.Blob(http.StatusOK, file.ContentType, file.Data)
}

func (c *OrderController) UpdateStatus(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.UpdateOrderStatusDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	order, err := c.service.UpdateStatus(ctx.Request().Context(), id, d.Status, actor(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "order status updated", http.StatusOK)
}

func (c *OrderController) Process(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.ProcessOrderDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	order, err := c.service.Process(ctx.Request().Context(), id, d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "order processed", http.StatusOK)
}

// ForUser lists the open orders of the authenticated caller.
func (c *OrderController) ForUser(ctx echo.Context) error {
	identity, err := utils.GetIdentityFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized, c.logger)
	}
	orders, err := c.service.ListForUser(ctx.Request().Context(), identity)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, orders, "", http.StatusOK)
}
