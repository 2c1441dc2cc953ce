package dto

type CreateEmployeeDTO struct {
	EmployeeNumber *string `json:"employee_number" validate:"omitempty,max=50"`
	FirstName      string  `json:"first_name" validate:"required,not_blank,max=255"`
	LastName       string  `json:"last_name" validate:"required,not_blank,max=255"`
	Email          *string `json:"email" validate:"omitempty,email"`
	EmployeeType   string  `json:"employee_type" validate:"omitempty,employee_type"`
	DivisionID     *uint64 `json:"division_id" validate:"omitempty,gt=0"`
	PositionID     *uint64 `json:"position_id" validate:"omitempty,gt=0"`
	SupervisorName *string `json:"supervisor_name" validate:"omitempty,max=255"`
}

// UpdateEmployeeDTO leaves nil fields untouched; division_id/position_id 0 clears the link.
type UpdateEmployeeDTO struct {
	EmployeeNumber *string `json:"employee_number" validate:"omitempty,max=50"`
	FirstName      *string `json:"first_name" validate:"omitempty,not_blank,max=255"`
	LastName       *string `json:"last_name" validate:"omitempty,not_blank,max=255"`
	Email          *string `json:"email" validate:"omitempty,email"`
	EmployeeType   *string `json:"employee_type" validate:"omitempty,employee_type"`
	DivisionID     *uint64 `json:"division_id"`
	PositionID     *uint64 `json:"position_id"`
	SupervisorName *string `json:"supervisor_name" validate:"omitempty,max=255"`
}
