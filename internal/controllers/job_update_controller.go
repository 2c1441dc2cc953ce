package controllers

import (
	"net/http"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/services"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JobUpdateController accepts the request form. Its responses use the
// {success, message} envelope of the form client instead of the admin error shape.
type JobUpdateController struct {
	service services.JobUpdateServiceInterface
	logger  *zap.Logger
}

func NewJobUpdateController(service services.JobUpdateServiceInterface, logger *zap.Logger) *JobUpdateController {
	return &JobUpdateController{service: service, logger: logger}
}

type jobUpdateFailure struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (c *JobUpdateController) fail(ctx echo.Context, err error) error {
	if fields, ok := utils.ValidationFields(err); ok {
		return ctx.JSON(http.StatusUnprocessableEntity, jobUpdateFailure{Message: services.JobUpdateInvalidMessage, Errors: fields})
	}
	c.logger.Error("job update failed", zap.Error(err))
	return ctx.JSON(http.StatusInternalServerError, jobUpdateFailure{Message: services.JobUpdateFailureMessage})
}

func (c *JobUpdateController) Submit(ctx echo.Context) error {
	var d dto.JobUpdateDTO
	if err := ctx.Bind(&d); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, jobUpdateFailure{
			Message: services.JobUpdateInvalidMessage,
			Errors:  map[string]string{"body": "must be a valid JSON object"},
		})
	}
	if err := ctx.Validate(&d); err != nil {
		return c.fail(ctx, err)
	}

	submittedBy := ""
	if identity, err := utils.GetIdentityFromCtx(ctx.Request().Context()); err == nil {
		submittedBy = identity.Email
	}
	res, err := c.service.Submit(ctx.Request().Context(), d, submittedBy)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, res)
}
