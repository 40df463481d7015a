package teacher

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
)

type Teacher struct {
	ID             int       `json:"id"`
	AccountID      int       `json:"account_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	EmployeeCode   string    `json:"employee_code"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	Specialization string    `json:"specialization"`
	DepartmentID   null.Int  `json:"department_id"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// NewTeacher registers a Teacher profile together with its TEACHER account.
type NewTeacher struct {
	account.NewAccount
	FirstName      string   `json:"first_name" validate:"required,max=100"`
	LastName       string   `json:"last_name" validate:"required,max=100"`
	EmployeeCode   string   `json:"employee_code" validate:"required,max=50,code"`
	Phone          string   `json:"phone" validate:"max=30"`
	Address        string   `json:"address" validate:"max=255"`
	Specialization string   `json:"specialization" validate:"max=100"`
	DepartmentID   null.Int `json:"department_id"`
}

func (nt *NewTeacher) Clean() {
	nt.NewAccount.Clean()
	nt.Role = core.RoleTeacher
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.EmployeeCode = core.CleanString(nt.EmployeeCode)
	nt.Phone = core.CleanString(nt.Phone)
	nt.Address = core.CleanString(nt.Address)
	nt.Specialization = core.CleanString(nt.Specialization)
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Clean()
	return validate.Struct(nt)
}

// UpdateTeacher holds the mutable fields of a Teacher; nil fields are left untouched.
// The employee code identifies the teacher and cannot be changed.
type UpdateTeacher struct {
	FirstName      *string          `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName       *string          `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone          *string          `json:"phone" validate:"omitempty,max=30"`
	Address        *string          `json:"address" validate:"omitempty,max=255"`
	Specialization *string          `json:"specialization" validate:"omitempty,max=100"`
	DepartmentID   core.OptionalInt `json:"department_id"`
}

func (ut *UpdateTeacher) Clean() {
	core.CleanOptional(ut.FirstName)
	core.CleanOptional(ut.LastName)
	core.CleanOptional(ut.Phone)
	core.CleanOptional(ut.Address)
	core.CleanOptional(ut.Specialization)
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.Clean()
	return validate.Struct(ut)
}

func (ut UpdateTeacher) apply(t *Teacher) {
	ut.Clean()
	if ut.FirstName != nil && *ut.FirstName != "" {
		t.FirstName = *ut.FirstName
	}
	if ut.LastName != nil && *ut.LastName != "" {
		t.LastName = *ut.LastName
	}
	if ut.Phone != nil {
		t.Phone = *ut.Phone
	}
	if ut.Address != nil {
		t.Address = *ut.Address
	}
	if ut.Specialization != nil {
		t.Specialization = *ut.Specialization
	}
	ut.DepartmentID.Apply(&t.DepartmentID)
}
