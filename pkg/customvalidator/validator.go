package customvalidator

import (
	"strings"
	"time"

	"pvb-admin/pkg/constants"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations installs the domain rules on v.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("change_type", isChangeType); err != nil {
		return err
	}
	if err := v.RegisterValidation("iso_date", isISODate); err != nil {
		return err
	}
	if err := v.RegisterValidation("not_blank", isNotBlank); err != nil {
		return err
	}
	if err := v.RegisterValidation("employee_type", isEmployeeType); err != nil {
		return err
	}
	return nil
}

func isChangeType(fl validator.FieldLevel) bool {
	return constants.IsChangeType(fl.Field().String())
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func isEmployeeType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constants.EmployeeTypeIntern, constants.EmployeeTypeExtern:
		return true
	}
	return false
}
