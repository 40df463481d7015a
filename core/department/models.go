package department

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

type Department struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewDepartment struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (nd *NewDepartment) Validate(validate *validator.Validate) error {
	nd.Name = core.CleanString(nd.Name)
	nd.Description = core.CleanString(nd.Description)
	return validate.Struct(nd)
}

// UpdateDepartment holds the mutable fields of a Department.
// The name identifies the department and cannot be changed.
type UpdateDepartment struct {
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (ud *UpdateDepartment) Validate(validate *validator.Validate) error {
	if ud.Description != nil {
		desc := core.CleanString(*ud.Description)
		ud.Description = &desc
	}
	return validate.Struct(ud)
}
