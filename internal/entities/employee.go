package entities

import (
	"strings"

	"pvb-admin/pkg/types"

	"github.com/aarondl/null/v8"
)

type Employee struct {
	ID             uint64      `json:"id"`
	EmployeeNumber null.String `json:"employee_number"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	Email          null.String `json:"email"`
	EmployeeType   string      `json:"employee_type"`
	DivisionID     null.Uint64 `json:"division_id"`
	DivisionName   null.String `json:"division"`
	PositionID     null.Uint64 `json:"position_id"`
	PositionName   null.String `json:"position"`
	SupervisorName null.String `json:"supervisor_name"`

	types.BaseEntity
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
