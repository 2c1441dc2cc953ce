package controllers

import (
	"net/http"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/services"
	"pvb-admin/pkg/constants"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FormController serves the dropdown sources of the request form. The list
// shapes are consumed by the existing frontend and must not change.
type FormController struct {
	divisions services.LookupServiceInterface
	teams     services.LookupServiceInterface
	functions services.LookupServiceInterface
	positions services.LookupServiceInterface
	employees services.EmployeeServiceInterface
	logger    *zap.Logger
}

func NewFormController(
	divisions, teams, functions, positions services.LookupServiceInterface,
	employees services.EmployeeServiceInterface,
	logger *zap.Logger,
) *FormController {
	return &FormController{
		divisions: divisions,
		teams:     teams,
		functions: functions,
		positions: positions,
		employees: employees,
		logger:    logger,
	}
}

func names(items []entities.LookupItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func (c *FormController) nameList(ctx echo.Context, lookup services.LookupServiceInterface) error {
	items, err := lookup.Names(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.JSON(http.StatusOK, names(items))
}

func (c *FormController) Bereiche(ctx echo.Context) error { return c.nameList(ctx, c.divisions) }

// Sachbereiche and Teams are the same table under two names.
func (c *FormController) Sachbereiche(ctx echo.Context) error { return c.nameList(ctx, c.teams) }
func (c *FormController) Teams(ctx echo.Context) error        { return c.nameList(ctx, c.teams) }
func (c *FormController) Positionen(ctx echo.Context) error   { return c.nameList(ctx, c.positions) }

func (c *FormController) Funktionen(ctx echo.Context) error {
	items, err := c.functions.Names(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	out := make([]dto.SelectOptionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, dto.NewSelectOptionDTO(utils.ToPtr(item.ID), item.Name))
	}
	return ctx.JSON(http.StatusOK, out)
}

func (c *FormController) Vorgesetzte(ctx echo.Context) error {
	supervisors, err := c.employees.Supervisors(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	out := make([]dto.SelectOptionDTO, 0, len(supervisors))
	for _, name := range supervisors {
		out = append(out, dto.NewSelectOptionDTO(nil, name))
	}
	return ctx.JSON(http.StatusOK, out)
}

func (c *FormController) Options(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, constants.AdditionalOptions)
}

func (c *FormController) PhoneTypes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, constants.PhoneTypes)
}
