package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/department"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("teacher")
	ErrEmployeeCodeExists = core.NewDuplicateKeyError("employee_code", "a teacher with this employee code already exists")

	errRefNotFound = core.NewValidationError(nil, core.FieldError{Field: "teacher_id", Error: "teacher not found"})
)

type (
	Repository interface {
		CheckEmployeeCodeUniqueness(ctx context.Context, code string) error
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		QueryTeachersByDepartment(ctx context.Context, deptID int) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		GetTeacherByAccountID(ctx context.Context, accID int) (Teacher, error)
		GetTeacherByEmployeeCode(ctx context.Context, code string) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		// DeleteTeacher detaches the courses taught by the teacher.
		DeleteTeacher(ctx context.Context, id int) error
	}

	Service struct {
		tx       core.Transactor
		repo     Repository
		accounts *account.Service
		depts    department.Repository
		mailSvc  core.EmailService
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	accounts *account.Service,
	depts department.Repository,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		accounts: accounts,
		depts:    depts,
		mailSvc:  mailSvc,
	}
}

func (svc *Service) isSelf(caller core.Identity, id int) access.SelfFunc {
	return func(ctx context.Context) (bool, error) {
		t, err := svc.repo.GetTeacherByAccountID(ctx, caller.AccountID)
		if err != nil {
			return false, err
		}
		return t.ID == id, nil
	}
}

// Register creates the TEACHER account and the Teacher profile in one transaction.
func (svc *Service) Register(ctx context.Context, caller core.Identity, nt NewTeacher) (Teacher, error) {
	if err := access.Authorize(ctx, caller, access.KindTeacher, access.Create, nil); err != nil {
		return Teacher{}, err
	}
	nt.Clean()

	var t Teacher
	var acc account.Account
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := department.CheckRef(ctx, svc.depts, nt.DepartmentID); err != nil {
			return err
		}
		if err := svc.repo.CheckEmployeeCodeUniqueness(ctx, nt.EmployeeCode); err != nil {
			return err
		}

		var err error
		if acc, err = svc.accounts.Create(ctx, nt.NewAccount); err != nil {
			return err
		}

		now := time.Now().UTC()
		t, err = svc.repo.CreateTeacher(ctx, Teacher{
			AccountID:      acc.ID,
			FirstName:      nt.FirstName,
			LastName:       nt.LastName,
			EmployeeCode:   nt.EmployeeCode,
			Phone:          nt.Phone,
			Address:        nt.Address,
			Specialization: nt.Specialization,
			DepartmentID:   nt.DepartmentID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		return err
	})
	if err != nil {
		return Teacher{}, errors.Wrap(err, "registering teacher")
	}

	svc.mailSvc.SendMessages(account.WelcomeMessage(acc))
	return t, nil
}

func (svc *Service) QueryAll(ctx context.Context, caller core.Identity) ([]Teacher, error) {
	if err := access.Authorize(ctx, caller, access.KindTeacher, access.Read, nil); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllTeachers(ctx)
}

func (svc *Service) QueryByDepartment(ctx context.Context, caller core.Identity, deptID int) ([]Teacher, error) {
	if err := access.Authorize(ctx, caller, access.KindTeacher, access.Read, nil); err != nil {
		return nil, err
	}
	return svc.repo.QueryTeachersByDepartment(ctx, deptID)
}

func (svc *Service) GetByID(ctx context.Context, caller core.Identity, id int) (Teacher, error) {
	if err := access.Authorize(ctx, caller, access.KindTeacher, access.Read, svc.isSelf(caller, id)); err != nil {
		return Teacher{}, err
	}
	return svc.repo.GetTeacherByID(ctx, id)
}

// GetOwn returns the caller's own Teacher profile.
func (svc *Service) GetOwn(ctx context.Context, caller core.Identity) (Teacher, error) {
	if !caller.IsTeacher() {
		return Teacher{}, core.ErrForbidden
	}
	return svc.repo.GetTeacherByAccountID(ctx, caller.AccountID)
}

func (svc *Service) Update(ctx context.Context, caller core.Identity, id int, ut UpdateTeacher) (Teacher, error) {
	var t Teacher
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Authorize(ctx, caller, access.KindTeacher, access.Update, svc.isSelf(caller, id)); err != nil {
			return err
		}

		var err error
		if t, err = svc.repo.GetTeacherByID(ctx, id); err != nil {
			return err
		}
		if err = department.CheckRef(ctx, svc.depts, ut.DepartmentID.Value); err != nil {
			return err
		}
		ut.apply(&t)
		t.UpdatedAt = time.Now().UTC()
		t, err = svc.repo.UpdateTeacher(ctx, t)
		return err
	})
	if err != nil {
		return Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return t, nil
}

// Delete removes the teacher's account, then the profile.
func (svc *Service) Delete(ctx context.Context, caller core.Identity, id int) error {
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Authorize(ctx, caller, access.KindTeacher, access.Delete, svc.isSelf(caller, id)); err != nil {
			return err
		}
		t, err := svc.repo.GetTeacherByID(ctx, id)
		if err != nil {
			return err
		}
		if err = svc.accounts.Delete(ctx, t.AccountID); err != nil {
			return err
		}
		return svc.repo.DeleteTeacher(ctx, t.ID)
	})
	return errors.Wrap(err, "deleting teacher")
}

// CheckRef validates an optional teacher reference held by another record.
func CheckRef(ctx context.Context, repo Repository, id null.Int) error {
	if !id.Valid {
		return nil
	}
	if _, err := repo.GetTeacherByID(ctx, id.Int); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return errRefNotFound
		}
		return errors.Wrap(err, "finding teacher by ID")
	}
	return nil
}
