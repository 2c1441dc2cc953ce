package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator adapts validator.Validate to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports field errors under their json names.
func NewValidator(v *validator.Validate) *CustomValidator {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
