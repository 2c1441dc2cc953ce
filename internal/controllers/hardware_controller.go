package controllers

import (
	"net/http"
	"strings"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/services"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HardwareController struct {
	service services.HardwareServiceInterface
	logger  *zap.Logger
}

func NewHardwareController(service services.HardwareServiceInterface, logger *zap.Logger) *HardwareController {
	return &HardwareController{service: service, logger: logger}
}

// requiredQuery reads a mandatory query parameter; a missing one is answered with 400 and message.
func requiredQuery(ctx echo.Context, name, message string) (string, error) {
	value := strings.TrimSpace(ctx.QueryParam(name))
	if value == "" {
		return "", apperrors.NewHttpError(http.StatusBadRequest, message, nil, nil)
	}
	return value, nil
}

func publicHardware(items []entities.Hardware, assigned bool) []dto.PublicHardwareDTO {
	out := make([]dto.PublicHardwareDTO, 0, len(items))
	for _, h := range items {
		out = append(out, dto.NewPublicHardwareDTO(h, assigned))
	}
	return out
}

func (c *HardwareController) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	items, total, err := c.service.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, items, filter, total)
}

func (c *HardwareController) Find(ctx echo.Context) error {
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

func (c *HardwareController) Create(ctx echo.Context) error {
	var d dto.CreateHardwareDTO
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
	return utils.SuccessResponse(ctx, item, "hardware created", http.StatusCreated)
}

func (c *HardwareController) Update(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.UpdateHardwareDTO
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
	return utils.SuccessResponse(ctx, item, "hardware updated", http.StatusOK)
}

func (c *HardwareController) Delete(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "hardware deleted", http.StatusOK)
}

// Public surface.

func (c *HardwareController) All(ctx echo.Context) error {
	items, err := c.service.All(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"hardware": publicHardware(items, false)})
}

func (c *HardwareController) ForProfile(ctx echo.Context) error {
	ref, err := requiredQuery(ctx, "profile", "Profile parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	profile, items, err := c.service.ForProfile(ctx.Request().Context(), ref)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"profile": profile.Name, "hardware": publicHardware(items, true)})
}

func (c *HardwareController) Additional(ctx echo.Context) error {
	items, err := c.service.Additional(ctx.Request().Context(), ctx.QueryParam("profile"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"hardware": publicHardware(items, false)})
}

func (c *HardwareController) Categories(ctx echo.Context) error {
	categories, err := c.service.Categories(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (c *HardwareController) ByCategory(ctx echo.Context) error {
	ref, err := requiredQuery(ctx, "category", "Category parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	category, items, err := c.service.ByCategory(ctx.Request().Context(), ref)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"category": category.Name, "hardware": publicHardware(items, false)})
}

func (c *HardwareController) Search(ctx echo.Context) error {
	query, err := requiredQuery(ctx, "query", "Query parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	items, err := c.service.Search(ctx.Request().Context(), query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"hardware": publicHardware(items, false)})
}
