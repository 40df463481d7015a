package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/department"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("student")
	ErrStudentCodeExists = core.NewDuplicateKeyError("student_code", "a student with this student code already exists")
)

type (
	// Repository fills Student.Courses from the enrollment relation on every read.
	Repository interface {
		CheckStudentCodeUniqueness(ctx context.Context, code string) error
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		QueryStudentsByDepartment(ctx context.Context, deptID int) ([]Student, error)
		QueryStudentsByID(ctx context.Context, ids ...int) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByAccountID(ctx context.Context, accID int) (Student, error)
		GetStudentByStudentCode(ctx context.Context, code string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// DeleteStudent also removes the student's enrollments.
		DeleteStudent(ctx context.Context, id int) error
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

// IsSelf resolves whether student `id` is the caller's own profile.
func IsSelf(repo Repository, caller core.Identity, id int) access.SelfFunc {
	return func(ctx context.Context) (bool, error) {
		s, err := repo.GetStudentByAccountID(ctx, caller.AccountID)
		if err != nil {
			return false, err
		}
		return s.ID == id, nil
	}
}

// Register creates the STUDENT account and the Student profile in one transaction.
func (svc *Service) Register(ctx context.Context, caller core.Identity, ns NewStudent) (Student, error) {
	if err := access.Authorize(ctx, caller, access.KindStudent, access.Create, nil); err != nil {
		return Student{}, err
	}
	ns.Clean()

	var s Student
	var acc account.Account
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := department.CheckRef(ctx, svc.depts, ns.DepartmentID); err != nil {
			return err
		}
		if err := svc.repo.CheckStudentCodeUniqueness(ctx, ns.StudentCode); err != nil {
			return err
		}

		var err error
		if acc, err = svc.accounts.Create(ctx, ns.NewAccount); err != nil {
			return err
		}

		now := time.Now().UTC()
		s, err = svc.repo.CreateStudent(ctx, Student{
			AccountID:    acc.ID,
			FirstName:    ns.FirstName,
			LastName:     ns.LastName,
			StudentCode:  ns.StudentCode,
			Phone:        ns.Phone,
			Address:      ns.Address,
			DepartmentID: ns.DepartmentID,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		return err
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "registering student")
	}

	svc.mailSvc.SendMessages(account.WelcomeMessage(acc))
	return s, nil
}

func (svc *Service) QueryAll(ctx context.Context, caller core.Identity) ([]Student, error) {
	if err := access.Authorize(ctx, caller, access.KindStudent, access.Read, nil); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) QueryByDepartment(ctx context.Context, caller core.Identity, deptID int) ([]Student, error) {
	if err := access.Authorize(ctx, caller, access.KindStudent, access.Read, nil); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudentsByDepartment(ctx, deptID)
}

func (svc *Service) GetByID(ctx context.Context, caller core.Identity, id int) (Student, error) {
	if err := access.Authorize(ctx, caller, access.KindStudent, access.Read, IsSelf(svc.repo, caller, id)); err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudentByID(ctx, id)
}

// GetOwn returns the caller's own Student profile.
func (svc *Service) GetOwn(ctx context.Context, caller core.Identity) (Student, error) {
	if !caller.IsStudent() {
		return Student{}, core.ErrForbidden
	}
	return svc.repo.GetStudentByAccountID(ctx, caller.AccountID)
}

func (svc *Service) Update(ctx context.Context, caller core.Identity, id int, us UpdateStudent) (Student, error) {
	var s Student
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Authorize(ctx, caller, access.KindStudent, access.Update, IsSelf(svc.repo, caller, id)); err != nil {
			return err
		}

		var err error
		if s, err = svc.repo.GetStudentByID(ctx, id); err != nil {
			return err
		}
		if err = department.CheckRef(ctx, svc.depts, us.DepartmentID.Value); err != nil {
			return err
		}
		us.apply(&s)
		s.UpdatedAt = time.Now().UTC()
		s, err = svc.repo.UpdateStudent(ctx, s)
		return err
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	return s, nil
}

// Delete removes the student's account, then the profile and its enrollments.
func (svc *Service) Delete(ctx context.Context, caller core.Identity, id int) error {
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := access.Authorize(ctx, caller, access.KindStudent, access.Delete, IsSelf(svc.repo, caller, id)); err != nil {
			return err
		}
		s, err := svc.repo.GetStudentByID(ctx, id)
		if err != nil {
			return err
		}
		if err = svc.accounts.Delete(ctx, s.AccountID); err != nil {
			return err
		}
		return svc.repo.DeleteStudent(ctx, s.ID)
	})
	return errors.Wrap(err, "deleting student")
}
