package dto

import "pvb-admin/internal/entities"

type CreateReferenceProfileDTO struct {
	Name        string   `json:"name" validate:"required,not_blank,max=255"`
	DivisionID  *uint64  `json:"division_id" validate:"omitempty,gt=0"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Active      *bool    `json:"active"`
	HardwareIDs []uint64 `json:"hardware_ids" validate:"omitempty,dive,gt=0"`
	SoftwareIDs []uint64 `json:"software_ids" validate:"omitempty,dive,gt=0"`
	SapRoleIDs  []uint64 `json:"sap_role_ids" validate:"omitempty,dive,gt=0"`
}

// UpdateReferenceProfileDTO: a nil field is left untouched, an empty list clears the
// relation and division_id 0 detaches the profile from its division.
type UpdateReferenceProfileDTO struct {
	Name        *string  `json:"name" validate:"omitempty,not_blank,max=255"`
	DivisionID  *uint64  `json:"division_id"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Active      *bool    `json:"active"`
	HardwareIDs []uint64 `json:"hardware_ids" validate:"omitempty,dive,gt=0"`
	SoftwareIDs []uint64 `json:"software_ids" validate:"omitempty,dive,gt=0"`
	SapRoleIDs  []uint64 `json:"sap_role_ids" validate:"omitempty,dive,gt=0"`
}

// Relations returns the requested membership per relation; absent relations are omitted.
func (d UpdateReferenceProfileDTO) Relations() map[entities.ProfileRelation][]uint64 {
	out := make(map[entities.ProfileRelation][]uint64)
	if d.HardwareIDs != nil {
		out[entities.RelationHardware] = d.HardwareIDs
	}
	if d.SoftwareIDs != nil {
		out[entities.RelationSoftware] = d.SoftwareIDs
	}
	if d.SapRoleIDs != nil {
		out[entities.RelationSapRoles] = d.SapRoleIDs
	}
	return out
}

// ReferenceProfileDTO is the list shape served to the request form.
type ReferenceProfileDTO struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	BereichID     *uint64 `json:"bereich_id"`
	Bereich       *string `json:"bereich"`
	Description   *string `json:"description"`
	Active        bool    `json:"active"`
	HardwareCount int64   `json:"hardwareCount"`
	SoftwareCount int64   `json:"softwareCount"`
	SapRoleCount  int64   `json:"sapRoleCount"`
}

type ReferenceProfileDetailDTO struct {
	ReferenceProfileDTO
	Hardware []entities.Hardware `json:"hardware"`
	Software []entities.Software `json:"software"`
	SapRoles []entities.SapRole  `json:"sap_roles"`
}

func NewReferenceProfileDTO(p entities.ReferenceProfile) ReferenceProfileDTO {
	return ReferenceProfileDTO{
		ID:            p.ID,
		Name:          p.Name,
		BereichID:     p.DivisionID.Ptr(),
		Bereich:       p.DivisionName.Ptr(),
		Description:   p.Description.Ptr(),
		Active:        p.Active,
		HardwareCount: p.HardwareCount,
		SoftwareCount: p.SoftwareCount,
		SapRoleCount:  p.SapRoleCount,
	}
}
