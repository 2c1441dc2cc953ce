package controllers

import (
	"net/http"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/services"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type EmployeeController struct {
	service services.EmployeeServiceInterface
	logger  *zap.Logger
}

func NewEmployeeController(service services.EmployeeServiceInterface, logger *zap.Logger) *EmployeeController {
	return &EmployeeController{service: service, logger: logger}
}

func (c *EmployeeController) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	items, total, err := c.service.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, items, filter, total)
}

func (c *EmployeeController) Find(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	employee, err := c.service.Find(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, employee, "", http.StatusOK)
}

func (c *EmployeeController) Create(ctx echo.Context) error {
	var d dto.CreateEmployeeDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	employee, err := c.service.Create(ctx.Request().Context(), d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, employee, "employee created", http.StatusCreated)
}

func (c *EmployeeController) Update(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.UpdateEmployeeDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	employee, err := c.service.Update(ctx.Request().Context(), id, d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, employee, "employee updated", http.StatusOK)
}

func (c *EmployeeController) Delete(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "employee deleted", http.StatusOK)
}
