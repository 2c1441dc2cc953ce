package entities

import (
	"pvb-admin/pkg/types"

	"github.com/aarondl/null/v8"
)

// LookupItem is a row of a flat name table (divisions, teams, functions, positions,
// categories, manufacturers, role groups). Parent is set for tables with a parent FK.
type LookupItem struct {
	ID         uint64      `json:"id"`
	Name       string      `json:"name"`
	ParentID   null.Uint64 `json:"parent_id"`
	ParentName null.String `json:"parent_name"`

	types.BaseEntity
}

// NamedCount is a name with the number of rows referencing it.
type NamedCount struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
