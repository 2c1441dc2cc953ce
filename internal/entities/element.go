package entities

import (
	"fmt"

	"github.com/aarondl/null/v8"
)

type ElementKind string

const (
	ElementSoftware ElementKind = "software"
	ElementHardware ElementKind = "hardware"
	ElementSapRole  ElementKind = "sap_role"
)

// ElementItem is exactly one catalog reference. The implementations below are the only variants.
type ElementItem interface {
	Kind() ElementKind
	ItemID() uint64
	isElementItem()
}

type SoftwareItem struct{ ID uint64 }
type HardwareItem struct{ ID uint64 }
type SapRoleItem struct{ ID uint64 }

func (i SoftwareItem) Kind() ElementKind { return ElementSoftware }
func (i SoftwareItem) ItemID() uint64    { return i.ID }
func (SoftwareItem) isElementItem()      {}

func (i HardwareItem) Kind() ElementKind { return ElementHardware }
func (i HardwareItem) ItemID() uint64    { return i.ID }
func (HardwareItem) isElementItem()      {}

func (i SapRoleItem) Kind() ElementKind { return ElementSapRole }
func (i SapRoleItem) ItemID() uint64    { return i.ID }
func (SapRoleItem) isElementItem()      {}

// Element is one line of an order.
type Element struct {
	ID       uint64      `json:"id"`
	Label    null.String `json:"label"`
	Item     ElementItem `json:"-"`
	ItemName string      `json:"item_name"`
}

func (e Element) Type() ElementKind { return e.Item.Kind() }

// ElementColumns holds the three nullable FK columns an element is stored as.
type ElementColumns struct {
	SoftwareID null.Uint64
	HardwareID null.Uint64
	SapRoleID  null.Uint64
}

func ColumnsOf(item ElementItem) ElementColumns {
	var cols ElementColumns
	switch v := item.(type) {
	case SoftwareItem:
		cols.SoftwareID = null.Uint64From(v.ID)
	case HardwareItem:
		cols.HardwareID = null.Uint64From(v.ID)
	case SapRoleItem:
		cols.SapRoleID = null.Uint64From(v.ID)
	}
	return cols
}

// Item decodes the stored columns; anything but exactly one set FK is an error.
func (c ElementColumns) Item() (ElementItem, error) {
	var items []ElementItem
	if c.SoftwareID.Valid {
		items = append(items, SoftwareItem{ID: c.SoftwareID.Uint64})
	}
	if c.HardwareID.Valid {
		items = append(items, HardwareItem{ID: c.HardwareID.Uint64})
	}
	if c.SapRoleID.Valid {
		items = append(items, SapRoleItem{ID: c.SapRoleID.Uint64})
	}
	if len(items) != 1 {
		return nil, fmt.Errorf("element must reference exactly one item, got %d", len(items))
	}
	return items[0], nil
}
