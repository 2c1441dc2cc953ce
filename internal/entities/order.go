package entities

import (
	"time"

	"pvb-admin/pkg/types"

	"github.com/aarondl/null/v8"
)

type Order struct {
	ID                uint64      `json:"id"`
	ChangeTypeID      uint64      `json:"change_type_id"`
	ChangeTypeName    string      `json:"change_type"`
	EmployeeID        uint64      `json:"employee_id"`
	EmployeeFirstName string      `json:"employee_first_name"`
	EmployeeLastName  string      `json:"employee_last_name"`
	EmployeeEmail     null.String `json:"employee_email"`
	DivisionName      null.String `json:"division"`
	OrderDate         time.Time   `json:"order_date"`
	CreatedBy         string      `json:"created_by"`
	StatusID          uint64      `json:"status_id"`
	StatusName        string      `json:"status"`
	Comment           null.String `json:"comment"`
	EffectiveDate     null.Time   `json:"effective_date"`
	LimitedUntil      null.Time   `json:"limited_until"`
	Services          []string    `json:"services"`
	ProcessedBy       null.String `json:"processed_by"`
	ProcessedAt       null.Time   `json:"processed_at"`

	types.BaseEntity
}

// State parses the stored status label; ok is false for labels outside the workflow.
func (o Order) State() (OrderState, bool) {
	return ParseOrderState(o.StatusName)
}

type OrderStatus struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type OrderStats struct {
	Total      int64            `json:"total"`
	Pending    int64            `json:"pending"`
	InProgress int64            `json:"in_progress"`
	Completed  int64            `json:"completed"`
	Cancelled  int64            `json:"cancelled"`
	Today      int64            `json:"today"`
	ThisWeek   int64            `json:"this_week"`
	ByType     map[string]int64 `json:"by_type"`
}
