package customvalidator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Type string  `validate:"required,change_type"`
	Date *string `validate:"omitempty,iso_date"`
	Name string  `validate:"not_blank"`
	Kind string  `validate:"omitempty,employee_type"`
}

func TestCustomRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidations(v))

	date := "2026-03-01"
	assert.NoError(t, v.Struct(sample{Type: "Verlängerung", Date: &date, Name: "Max", Kind: "extern"}))

	bad := "01.03.2026"
	err := v.Struct(sample{Type: "Beförderung", Date: &bad, Name: "   ", Kind: "freelancer"})
	require.Error(t, err)

	tags := map[string]string{}
	for _, fe := range err.(validator.ValidationErrors) {
		tags[fe.Field()] = fe.Tag()
	}
	assert.Equal(t, map[string]string{
		"Type": "change_type",
		"Date": "iso_date",
		"Name": "not_blank",
		"Kind": "employee_type",
	}, tags)
}
