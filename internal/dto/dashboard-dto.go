package dto

import "pvb-admin/internal/entities"

// GroupedTotalDTO is a catalog total with its breakdown by group.
type GroupedTotalDTO struct {
	Total  int64                 `json:"total"`
	Groups []entities.NamedCount `json:"groups"`
}

type DashboardDTO struct {
	Hardware         GroupedTotalDTO `json:"hardware"`
	Software         GroupedTotalDTO `json:"software"`
	SapRoles         GroupedTotalDTO `json:"sap_roles"`
	ProfilesActive   uint64          `json:"profiles_active"`
	ProfilesInactive uint64          `json:"profiles_inactive"`
	OrdersOpen       uint64          `json:"orders_open"`
}
