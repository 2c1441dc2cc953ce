package dto

type CreateHardwareDTO struct {
	Name           string  `json:"name" validate:"required,not_blank,max=255"`
	CategoryID     uint64  `json:"category_id" validate:"required,gt=0"`
	Specifications *string `json:"specifications" validate:"omitempty,max=2000"`
}

type UpdateHardwareDTO struct {
	Name           *string `json:"name" validate:"omitempty,not_blank,max=255"`
	CategoryID     *uint64 `json:"category_id" validate:"omitempty,gt=0"`
	Specifications *string `json:"specifications" validate:"omitempty,max=2000"`
}

type CreateSoftwareDTO struct {
	Name           string  `json:"name" validate:"required,not_blank,max=255"`
	ManufacturerID uint64  `json:"manufacturer_id" validate:"required,gt=0"`
	Version        *string `json:"version" validate:"omitempty,max=100"`
	Active         *bool   `json:"active"`
}

type UpdateSoftwareDTO struct {
	Name           *string `json:"name" validate:"omitempty,not_blank,max=255"`
	ManufacturerID *uint64 `json:"manufacturer_id" validate:"omitempty,gt=0"`
	Version        *string `json:"version" validate:"omitempty,max=100"`
	Active         *bool   `json:"active"`
}

type CreateSapRoleDTO struct {
	Name        string  `json:"name" validate:"required,not_blank,max=255"`
	Key         string  `json:"key" validate:"required,not_blank,max=100"`
	RoleGroupID uint64  `json:"role_group_id" validate:"required,gt=0"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type UpdateSapRoleDTO struct {
	Name        *string `json:"name" validate:"omitempty,not_blank,max=255"`
	Key         *string `json:"key" validate:"omitempty,not_blank,max=100"`
	RoleGroupID *uint64 `json:"role_group_id" validate:"omitempty,gt=0"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}
