package controllers

import (
	"net/http"
	"strconv"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/services"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SapController serves SAP roles: admin CRUD under the role name, the public surface
// under the form's vocabulary (groups are "categories", roles are "profiles").
type SapController struct {
	service services.SapRoleServiceInterface
	logger  *zap.Logger
}

func NewSapController(service services.SapRoleServiceInterface, logger *zap.Logger) *SapController {
	return &SapController{service: service, logger: logger}
}

func sapProfiles(items []entities.SapRole) []dto.SapProfileDTO {
	out := make([]dto.SapProfileDTO, 0, len(items))
	for _, r := range items {
		out = append(out, dto.NewSapProfileDTO(r))
	}
	return out
}

func (c *SapController) List(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	items, total, err := c.service.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, items, filter, total)
}

func (c *SapController) Find(ctx echo.Context) error {
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

func (c *SapController) Create(ctx echo.Context) error {
	var d dto.CreateSapRoleDTO
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
	return utils.SuccessResponse(ctx, item, "SAP role created", http.StatusCreated)
}

func (c *SapController) Update(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.UpdateSapRoleDTO
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
	return utils.SuccessResponse(ctx, item, "SAP role updated", http.StatusOK)
}

func (c *SapController) Delete(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "SAP role deleted", http.StatusOK)
}

func (c *SapController) Profiles(ctx echo.Context) error {
	groups, err := c.service.Groups(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"groups": groups})
}

func (c *SapController) Categories(ctx echo.Context) error {
	categories, err := c.service.Categories(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (c *SapController) ByCategory(ctx echo.Context) error {
	category, err := requiredQuery(ctx, "category", "Category parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	groups, err := c.service.GroupsByCategory(ctx.Request().Context(), category)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"category": category, "groups": groups})
}

func (c *SapController) Profile(ctx echo.Context) error {
	raw, err := requiredQuery(ctx, "id", "Profile ID parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Profile ID must be numeric", err, nil), c.logger)
	}
	role, err := c.service.Find(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"profile": dto.NewSapProfileDTO(*role)})
}

func (c *SapController) Statistics(ctx echo.Context) error {
	stats, err := c.service.Statistics(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"statistics": stats})
}

func (c *SapController) Search(ctx echo.Context) error {
	query, err := requiredQuery(ctx, "query", "Query parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	items, err := c.service.Search(ctx.Request().Context(), query)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"profiles": sapProfiles(items)})
}
