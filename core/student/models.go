package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
)

type Student struct {
	ID           int       `json:"id"`
	AccountID    int       `json:"account_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	StudentCode  string    `json:"student_code"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	DepartmentID null.Int  `json:"department_id"`
	Courses      []int     `json:"courses"` // IDs of enrolled courses, read from the enrollment relation
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

func (s Student) IsEnrolledIn(courseID int) bool {
	for _, id := range s.Courses {
		if id == courseID {
			return true
		}
	}
	return false
}

// NewStudent registers a Student profile together with its STUDENT account.
type NewStudent struct {
	account.NewAccount
	FirstName    string   `json:"first_name" validate:"required,max=100"`
	LastName     string   `json:"last_name" validate:"required,max=100"`
	StudentCode  string   `json:"student_code" validate:"required,max=50,code"`
	Phone        string   `json:"phone" validate:"max=30"`
	Address      string   `json:"address" validate:"max=255"`
	DepartmentID null.Int `json:"department_id"`
}

func (ns *NewStudent) Clean() {
	ns.NewAccount.Clean()
	ns.Role = core.RoleStudent
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.StudentCode = core.CleanString(ns.StudentCode)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Address = core.CleanString(ns.Address)
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// UpdateStudent holds the mutable fields of a Student; nil fields are left untouched.
// The student code identifies the student and cannot be changed.
type UpdateStudent struct {
	FirstName    *string          `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName     *string          `json:"last_name" validate:"omitempty,min=1,max=100"`
	Phone        *string          `json:"phone" validate:"omitempty,max=30"`
	Address      *string          `json:"address" validate:"omitempty,max=255"`
	DepartmentID core.OptionalInt `json:"department_id"` // explicit null detaches the student
}

func (us *UpdateStudent) Clean() {
	core.CleanOptional(us.FirstName)
	core.CleanOptional(us.LastName)
	core.CleanOptional(us.Phone)
	core.CleanOptional(us.Address)
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Clean()
	return validate.Struct(us)
}

func (us UpdateStudent) apply(s *Student) {
	us.Clean()
	if us.FirstName != nil && *us.FirstName != "" {
		s.FirstName = *us.FirstName
	}
	if us.LastName != nil && *us.LastName != "" {
		s.LastName = *us.LastName
	}
	if us.Phone != nil {
		s.Phone = *us.Phone
	}
	if us.Address != nil {
		s.Address = *us.Address
	}
	us.DepartmentID.Apply(&s.DepartmentID)
}
