package entities

import (
	"pvb-admin/pkg/types"

	"github.com/aarondl/null/v8"
)

type Hardware struct {
	ID             uint64      `json:"id"`
	Name           string      `json:"name"`
	CategoryID     uint64      `json:"category_id"`
	CategoryName   string      `json:"category"`
	Specifications null.String `json:"specifications"`

	types.BaseEntity
}

type Software struct {
	ID               uint64      `json:"id"`
	Name             string      `json:"name"`
	ManufacturerID   uint64      `json:"manufacturer_id"`
	ManufacturerName string      `json:"manufacturer"`
	Version          null.String `json:"version"`
	Active           bool        `json:"active"`

	types.BaseEntity
}

type SapRole struct {
	ID            uint64      `json:"id"`
	Name          string      `json:"name"`
	Key           string      `json:"key"`
	RoleGroupID   uint64      `json:"role_group_id"`
	RoleGroupName string      `json:"role_group"`
	Description   null.String `json:"description"`

	types.BaseEntity
}

type SapStatistics struct {
	TotalGroups      int64        `json:"total_groups"`
	TotalProfiles    int64        `json:"total_profiles"`
	TotalPermissions int64        `json:"total_permissions"`
	GroupsBreakdown  []NamedCount `json:"groups_breakdown"`
}
