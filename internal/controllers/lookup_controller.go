package controllers

import (
	"net/http"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/services"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LookupController serves admin CRUD for one flat name table.
type LookupController struct {
	service services.LookupServiceInterface
	logger  *zap.Logger
}

func NewLookupController(service services.LookupServiceInterface, logger *zap.Logger) *LookupController {
	return &LookupController{service: service, logger: logger}
}

func badBody(err error) error {
	return apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil)
}

func (c *LookupController) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	items, total, err := c.service.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, items, filter, total)
}

func (c *LookupController) Find(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	item, err := c.service.Find(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, item, "", http.StatusOK)
}

func (c *LookupController) Create(ctx echo.Context) error {
	var d dto.CreateLookupDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	item, err := c.service.Create(ctx.Request().Context(), d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, item, c.service.Table().Entity+" created", http.StatusCreated)
}

func (c *LookupController) Update(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.UpdateLookupDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	item, err := c.service.Update(ctx.Request().Context(), id, d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, item, c.service.Table().Entity+" updated", http.StatusOK)
}

func (c *LookupController) Delete(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, c.service.Table().Entity+" deleted", http.StatusOK)
}
