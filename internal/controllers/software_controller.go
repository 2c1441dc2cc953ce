package controllers

import (
	"net/http"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/services"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SoftwareController struct {
	service services.SoftwareServiceInterface
	logger  *zap.Logger
}

func NewSoftwareController(service services.SoftwareServiceInterface, logger *zap.Logger) *SoftwareController {
	return &SoftwareController{service: service, logger: logger}
}

func publicSoftware(items []entities.Software, assigned bool) []dto.PublicSoftwareDTO {
	out := make([]dto.PublicSoftwareDTO, 0, len(items))
	for _, s := range items {
		out = append(out, dto.NewPublicSoftwareDTO(s, assigned))
	}
	return out
}

func (c *SoftwareController) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	items, total, err := c.service.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, items, filter, total)
}

func (c *SoftwareController) Find(ctx echo.Context) error {
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

func (c *SoftwareController) Create(ctx echo.Context) error {
	var d dto.CreateSoftwareDTO
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
	return utils.SuccessResponse(ctx, item, "software created", http.StatusCreated)
}

func (c *SoftwareController) Update(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.UpdateSoftwareDTO
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
	return utils.SuccessResponse(ctx, item, "software updated", http.StatusOK)
}

func (c *SoftwareController) Delete(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "software deleted", http.StatusOK)
}

func (c *SoftwareController) All(ctx echo.Context) error {
	items, err := c.service.All(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"software": publicSoftware(items, false)})
}

func (c *SoftwareController) ForProfile(ctx echo.Context) error {
	ref, err := requiredQuery(ctx, "profile", "Profile parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	profile, items, err := c.service.ForProfile(ctx.Request().Context(), ref)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"profile": profile.Name, "software": publicSoftware(items, true)})
}

func (c *SoftwareController) Additional(ctx echo.Context) error {
	items, err := c.service.Additional(ctx.Request().Context(), ctx.QueryParam("profile"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"software": publicSoftware(items, false)})
}

func (c *SoftwareController) Manufacturers(ctx echo.Context) error {
	manufacturers, err := c.service.Manufacturers(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"manufacturers": manufacturers})
}

func (c *SoftwareController) ByManufacturer(ctx echo.Context) error {
	ref, err := requiredQuery(ctx, "manufacturer", "Manufacturer parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	manufacturer, items, err := c.service.ByManufacturer(ctx.Request().Context(), ref)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"manufacturer": manufacturer.Name, "software": publicSoftware(items, false)})
}

func (c *SoftwareController) Search(ctx echo.Context) error {
	query, err := requiredQuery(ctx, "query", "Query parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	items, err := c.service.Search(ctx.Request().Context(), query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"software": publicSoftware(items, false)})
}
