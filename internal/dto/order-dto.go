package dto

import (
	"strings"
	"time"

	"pvb-admin/internal/entities"
)

type UpdateOrderStatusDTO struct {
	Status string `json:"status" validate:"required,not_blank,max=100"`
}

type ProcessOrderDTO struct {
	ProcessedBy string  `json:"processed_by" validate:"required,not_blank,max=255"`
	Notes       *string `json:"notes" validate:"omitempty,max=5000"`
}

// OrderStatusOptionDTO is one entry of the status dropdown. State is empty for labels outside the workflow.
type OrderStatusOptionDTO struct {
	ID    uint64   `json:"id"`
	Name  string   `json:"name"`
	State string   `json:"state,omitempty"`
	Next  []string `json:"next"`
}

// OrderDTO is the admin list shape.
type OrderDTO struct {
	ID            uint64     `json:"id"`
	EmployeeName  string     `json:"employee_name"`
	EmployeeEmail *string    `json:"employee_email"`
	Department    *string    `json:"department"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	Notes         *string    `json:"notes"`
	AuftragMA     string     `json:"auftrag_ma"`
	EffectiveDate *string    `json:"effective_date"`
	LimitedUntil  *string    `json:"limited_until"`
	Services      []string   `json:"services"`
	ProcessedBy   *string    `json:"processed_by"`
	ProcessedAt   *time.Time `json:"processed_at"`
}

type OrderProfileDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type OrderElementDTO struct {
	ID       uint64  `json:"id"`
	Type     string  `json:"type"`
	ItemID   uint64  `json:"item_id"`
	ItemName string  `json:"item_name"`
	Label    *string `json:"label"`
}

type OrderDetailDTO struct {
	OrderDTO
	Referenzen []OrderProfileDTO `json:"referenzen"`
	Elemente   []OrderElementDTO `json:"elemente"`
}

func NewOrderDTO(o entities.Order) OrderDTO {
	services := o.Services
	if services == nil {
		services = []string{}
	}
	return OrderDTO{
		ID:            o.ID,
		EmployeeName:  strings.TrimSpace(o.EmployeeFirstName + " " + o.EmployeeLastName),
		EmployeeEmail: o.EmployeeEmail.Ptr(),
		Department:    o.DivisionName.Ptr(),
		Type:          o.ChangeTypeName,
		Status:        entities.NormalizeStatusLabel(o.StatusName),
		CreatedAt:     o.OrderDate,
		Notes:         o.Comment.Ptr(),
		AuftragMA:     o.CreatedBy,
		EffectiveDate: formatDate(o.EffectiveDate.Ptr()),
		LimitedUntil:  formatDate(o.LimitedUntil.Ptr()),
		Services:      services,
		ProcessedBy:   o.ProcessedBy.Ptr(),
		ProcessedAt:   o.ProcessedAt.Ptr(),
	}
}

func NewOrderElementDTO(e entities.Element) OrderElementDTO {
	return OrderElementDTO{
		ID:       e.ID,
		Type:     string(e.Type()),
		ItemID:   e.Item.ItemID(),
		ItemName: e.ItemName,
		Label:    e.Label.Ptr(),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
