package entities

import (
	"pvb-admin/pkg/types"

	"github.com/aarondl/null/v8"
)

// ReferenceProfile bundles hardware, software and SAP roles for a job archetype.
// The counts are derived on read.
type ReferenceProfile struct {
	ID            uint64      `json:"id"`
	Name          string      `json:"name"`
	DivisionID    null.Uint64 `json:"division_id"`
	DivisionName  null.String `json:"division"`
	Description   null.String `json:"description"`
	Active        bool        `json:"active"`
	HardwareCount int64       `json:"hardware_count"`
	SoftwareCount int64       `json:"software_count"`
	SapRoleCount  int64       `json:"sap_role_count"`

	types.BaseEntity
}

// ProfileRelation names one of the three membership tables of a profile.
type ProfileRelation string

const (
	RelationHardware ProfileRelation = "hardware"
	RelationSoftware ProfileRelation = "software"
	RelationSapRoles ProfileRelation = "sap_roles"
)

var ProfileRelations = []ProfileRelation{RelationHardware, RelationSoftware, RelationSapRoles}
