package dto

import "pvb-admin/internal/entities"

// SelectOptionDTO is an entry of a form dropdown.
type SelectOptionDTO struct {
	ID    *uint64 `json:"id,omitempty"`
	Value string  `json:"value"`
	Label string  `json:"label"`
	Name  string  `json:"name"`
}

func NewSelectOptionDTO(id *uint64, name string) SelectOptionDTO {
	return SelectOptionDTO{ID: id, Value: name, Label: name, Name: name}
}

// PublicHardwareDTO marks items that belong to the requested profile as assigned.
type PublicHardwareDTO struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Specifications *string `json:"specifications"`
	Assigned       bool    `json:"assigned"`
}

func NewPublicHardwareDTO(h entities.Hardware, assigned bool) PublicHardwareDTO {
	return PublicHardwareDTO{
		ID:             h.ID,
		Name:           h.Name,
		Category:       h.CategoryName,
		Specifications: h.Specifications.Ptr(),
		Assigned:       assigned,
	}
}

type PublicSoftwareDTO struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Manufacturer string  `json:"manufacturer"`
	Version      *string `json:"version"`
	Assigned     bool    `json:"assigned"`
}

func NewPublicSoftwareDTO(s entities.Software, assigned bool) PublicSoftwareDTO {
	return PublicSoftwareDTO{
		ID:           s.ID,
		Name:         s.Name,
		Manufacturer: s.ManufacturerName,
		Version:      s.Version.Ptr(),
		Assigned:     assigned,
	}
}

type SapProfileDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description"`
	GroupID     uint64  `json:"group_id"`
	GroupName   string  `json:"group_name"`
}

func NewSapProfileDTO(r entities.SapRole) SapProfileDTO {
	return SapProfileDTO{
		ID:          r.ID,
		Name:        r.Name,
		Code:        r.Key,
		Description: r.Description.Ptr(),
		GroupID:     r.RoleGroupID,
		GroupName:   r.RoleGroupName,
	}
}

type SapGroupDTO struct {
	ID       uint64          `json:"id"`
	Name     string          `json:"name"`
	Profiles []SapProfileDTO `json:"profiles"`
}

type SapCategoryDTO struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	ProfileCount int64  `json:"profile_count"`
}
