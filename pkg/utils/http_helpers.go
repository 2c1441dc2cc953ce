package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500

	validationMessage = "Validierungsfehler"
	internalMessage   = "Internal server error"
)

// ParseFilterFromQuery reads search, sort[...], filter[...], page and per_page.
// per_page=all (or withPagination=false) disables paging.
func ParseFilterFromQuery(values url.Values) types.Filter {
	filterReq := types.Filter{
		Sort:           make(map[string]string),
		Filter:         make(map[string]interface{}),
		Limit:          DefaultLimit,
		Page:           1,
		WithPagination: true,
	}

	perPage := values.Get("per_page")
	if perPage == "" {
		perPage = values.Get("limit")
	}
	if perPage == "all" {
		filterReq.WithPagination = false
	} else if l, err := strconv.Atoi(perPage); err == nil && l > 0 {
		filterReq.Limit = min(l, MaxLimit)
	}

	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 0 {
		filterReq.Page = p
	}
	filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit

	if values.Get("withPagination") == "false" {
		filterReq.WithPagination = false
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}

		switch {
		case key == "search":
			filterReq.Search = strings.TrimSpace(vals[0])
		case strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]"):
			direction := strings.ToLower(vals[0])
			if direction == "asc" || direction == "desc" {
				filterReq.Sort[key[5:len(key)-1]] = direction
			}
		case strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]"):
			filterReq.Filter[key[7:len(key)-1]] = strings.Join(vals, ",")
		}
	}

	return filterReq
}

// SuccessResponse writes {"message": ..., "data": ...}; an empty message is omitted.
func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	response := map[string]interface{}{"data": body}
	if message != "" {
		response["message"] = message
	}
	return ctx.JSON(code, response)
}

func PaginatedResponse[T any](ctx echo.Context, data []T, filter types.Filter, total uint64) error {
	return ctx.JSON(http.StatusOK, types.NewPage(data, filter, total))
}

// ErrorResponse maps the error taxonomy onto status codes. Internal errors are logged
// and answered with a generic message.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("http error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}
		return c.JSON(httpErr.Code, map[string]interface{}{"error": httpErr.Message})
	}

	if fields, ok := ValidationFields(err); ok {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  validationMessage,
			"errors": fields,
		})
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return c.JSON(echoErr.Code, map[string]interface{}{"error": fmt.Sprint(echoErr.Message)})
	}

	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			if code >= http.StatusInternalServerError {
				break
			}
			return c.JSON(code, map[string]interface{}{"error": err.Error()})
		}
	}

	logger.Error("unexpected error",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{"error": internalMessage})
}

// ValidationFields extracts field errors from a ValidationError or from validator output.
func ValidationFields(err error) (map[string]string, bool) {
	if vErr, ok := apperrors.IsValidation(err); ok {
		return vErr.Fields, true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[fieldPath(fe)] = describeFieldError(fe)
		}
		return fields, true
	}
	return nil, false
}

var errorCodes = map[error]int{
	apperrors.ErrNotFound:             http.StatusNotFound,
	apperrors.ErrConflict:             http.StatusBadRequest,
	apperrors.ErrBadRequest:           http.StatusBadRequest,
	apperrors.ErrUnauthorized:         http.StatusUnauthorized,
	apperrors.ErrEmptyAuthHeader:      http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader:    http.StatusUnauthorized,
	apperrors.ErrInvalidToken:         http.StatusUnauthorized,
	apperrors.ErrTokenExpired:         http.StatusUnauthorized,
	apperrors.ErrInvalidSigningMethod: http.StatusUnauthorized,
	apperrors.ErrForbidden:            http.StatusForbidden,
}

// fieldPath strips the root struct name: "JobUpdateDTO.sapProfiles[0].code" -> "sapProfiles.0.code".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof", "change_type":
		return "is not an allowed value"
	case "iso_date":
		return "must be a date in YYYY-MM-DD format"
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "not_blank":
		return "must not be blank"
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}

// ParseIDParam reads a positive numeric path parameter.
func ParseIDParam(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "invalid "+name, nil, nil)
	}
	return id, nil
}

// ParseUintQuery reads an optional numeric query parameter; absent yields 0.
func ParseUintQuery(ctx echo.Context, name string) (uint64, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(name, "must be a positive number")
	}
	return id, nil
}
