package controllers

import (
	"net/http"
	"strings"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/repositories"
	"pvb-admin/internal/services"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ReferenceProfileController struct {
	service services.ReferenceProfileServiceInterface
	logger  *zap.Logger
}

func NewReferenceProfileController(service services.ReferenceProfileServiceInterface, logger *zap.Logger) *ReferenceProfileController {
	return &ReferenceProfileController{service: service, logger: logger}
}

func profileDTOs(items []entities.ReferenceProfile) []dto.ReferenceProfileDTO {
	out := make([]dto.ReferenceProfileDTO, 0, len(items))
	for _, p := range items {
		out = append(out, dto.NewReferenceProfileDTO(p))
	}
	return out
}

// profileQuery reads search, division (or bereich) and status=active|inactive.
func profileQuery(ctx echo.Context) (repositories.ProfileQuery, error) {
	query := repositories.ProfileQuery{
		Search:   strings.TrimSpace(ctx.QueryParam("search")),
		Division: strings.TrimSpace(ctx.QueryParam("division")),
	}
	if query.Division == "" {
		query.Division = strings.TrimSpace(ctx.QueryParam("bereich"))
	}
	switch strings.ToLower(strings.TrimSpace(ctx.QueryParam("status"))) {
	case "":
	case "active":
		query.Active = utils.ToPtr(true)
	case "inactive":
		query.Active = utils.ToPtr(false)
	default:
		return query, apperrors.NewValidationError("status", "must be active or inactive")
	}
	return query, nil
}

func (c *ReferenceProfileController) List(ctx echo.Context) error {
	query, err := profileQuery(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.QueryParams())
	items, total, err := c.service.Query(ctx.Request().Context(), query, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.PaginatedResponse(ctx, profileDTOs(items), filter, total)
}

func (c *ReferenceProfileController) Find(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	detail, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, detail, "", http.StatusOK)
}

func (c *ReferenceProfileController) Hardware(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	items, err := c.service.Hardware(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, items, "", http.StatusOK)
}

func (c *ReferenceProfileController) Software(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	items, err := c.service.Software(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, items, "", http.StatusOK)
}

func (c *ReferenceProfileController) SapRoles(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	items, err := c.service.SapRoles(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, items, "", http.StatusOK)
}

func (c *ReferenceProfileController) Create(ctx echo.Context) error {
	var d dto.CreateReferenceProfileDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	detail, err := c.service.Create(ctx.Request().Context(), d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, detail, "reference profile created", http.StatusCreated)
}

func (c *ReferenceProfileController) Update(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var d dto.UpdateReferenceProfileDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, badBody(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	detail, err := c.service.Update(ctx.Request().Context(), id, d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, detail, "reference profile updated", http.StatusOK)
}

// Deactivate answers DELETE; profiles are never removed.
func (c *ReferenceProfileController) Deactivate(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.service.Deactivate(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "reference profile deactivated", http.StatusOK)
}

func (c *ReferenceProfileController) Active(ctx echo.Context) error {
	items, err := c.service.Active(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, profileDTOs(items))
}

func (c *ReferenceProfileController) ByDivision(ctx echo.Context) error {
	division, err := requiredQuery(ctx, "bereich", "Bereich parameter is required")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	items, err := c.service.ByDivision(ctx.Request().Context(), division)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, profileDTOs(items))
}
