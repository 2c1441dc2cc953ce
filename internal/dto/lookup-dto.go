package dto

// ParentID is the division of a team or the team of a function; other tables ignore it.
type CreateLookupDTO struct {
	Name     string  `json:"name" validate:"required,not_blank,max=255"`
	ParentID *uint64 `json:"parent_id"`
}

// UpdateLookupDTO leaves nil fields untouched; parent_id 0 detaches the row.
type UpdateLookupDTO struct {
	Name     *string `json:"name" validate:"omitempty,not_blank,max=255"`
	ParentID *uint64 `json:"parent_id"`
}
