package course

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

type Course struct {
	ID           int       `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Credits      int       `json:"credits"`
	DepartmentID null.Int  `json:"department_id"`
	TeacherID    null.Int  `json:"teacher_id"`
	Students     []int     `json:"students"` // IDs of enrolled students, read from the enrollment relation
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

type NewCourse struct {
	Code         string   `json:"code" validate:"required,max=20,code"`
	Name         string   `json:"name" validate:"required,max=100"`
	Description  string   `json:"description" validate:"max=500"`
	Credits      int      `json:"credits" validate:"min=0,max=60"`
	DepartmentID null.Int `json:"department_id"`
	TeacherID    null.Int `json:"teacher_id"`
}

func (nc *NewCourse) Clean() {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Clean()
	return validate.Struct(nc)
}

// UpdateCourse holds the mutable fields of a Course; nil fields are left untouched.
// The course code identifies the course and cannot be changed.
type UpdateCourse struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description  *string          `json:"description" validate:"omitempty,max=500"`
	Credits      *int             `json:"credits" validate:"omitempty,min=0,max=60"`
	DepartmentID core.OptionalInt `json:"department_id"`
	TeacherID    core.OptionalInt `json:"teacher_id"` // explicit null unassigns the teacher
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	core.CleanOptional(uc.Name)
	core.CleanOptional(uc.Description)
	return validate.Struct(uc)
}

func (uc UpdateCourse) apply(c *Course) {
	if uc.Name != nil {
		if name := core.CleanString(*uc.Name); name != "" {
			c.Name = name
		}
	}
	if uc.Description != nil {
		c.Description = core.CleanString(*uc.Description)
	}
	if uc.Credits != nil {
		c.Credits = *uc.Credits
	}
	uc.DepartmentID.Apply(&c.DepartmentID)
	uc.TeacherID.Apply(&c.TeacherID)
}
