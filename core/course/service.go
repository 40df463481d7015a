package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/department"
	"github.com/trezcool/academia/core/teacher"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("course")
	ErrCodeExists = core.NewDuplicateKeyError("code", "a course with this code already exists")
)

type (
	// Repository fills Course.Students from the enrollment relation on every read.
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string) error
		CreateCourse(ctx context.Context, c Course) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		QueryCoursesByDepartment(ctx context.Context, deptID int) ([]Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacherID int) ([]Course, error)
		QueryCoursesByID(ctx context.Context, ids ...int) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		GetCourseByCode(ctx context.Context, code string) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		// DeleteCourse also removes the course's enrollments.
		DeleteCourse(ctx context.Context, id int) error
	}

	Service struct {
		tx       core.Transactor
		repo     Repository
		depts    department.Repository
		teachers teacher.Repository
	}
)

func NewService(tx core.Transactor, repo Repository, depts department.Repository, teachers teacher.Repository) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		depts:    depts,
		teachers: teachers,
	}
}

func (svc *Service) checkRefs(ctx context.Context, c Course) error {
	if err := department.CheckRef(ctx, svc.depts, c.DepartmentID); err != nil {
		return err
	}
	return teacher.CheckRef(ctx, svc.teachers, c.TeacherID)
}

func (svc *Service) Create(ctx context.Context, caller core.Identity, nc NewCourse) (Course, error) {
	if err := access.Authorize(ctx, caller, access.KindCourse, access.Create, nil); err != nil {
		return Course{}, err
	}
	nc.Clean()

	var c Course
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		c = Course{
			Code:         nc.Code,
			Name:         nc.Name,
			Description:  nc.Description,
			Credits:      nc.Credits,
			DepartmentID: nc.DepartmentID,
			TeacherID:    nc.TeacherID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := svc.checkRefs(ctx, c); err != nil {
			return err
		}
		if err := svc.repo.CheckCodeUniqueness(ctx, nc.Code); err != nil {
			return err
		}
		var err error
		c, err = svc.repo.CreateCourse(ctx, c)
		return err
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "creating course")
	}
	return c, nil
}

func (svc *Service) QueryAll(ctx context.Context, caller core.Identity) ([]Course, error) {
	if err := access.Authorize(ctx, caller, access.KindCourse, access.Read, nil); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) QueryByDepartment(ctx context.Context, caller core.Identity, deptID int) ([]Course, error) {
	if err := access.Authorize(ctx, caller, access.KindCourse, access.Read, nil); err != nil {
		return nil, err
	}
	return svc.repo.QueryCoursesByDepartment(ctx, deptID)
}

func (svc *Service) QueryByTeacher(ctx context.Context, caller core.Identity, teacherID int) ([]Course, error) {
	if err := access.Authorize(ctx, caller, access.KindCourse, access.Read, nil); err != nil {
		return nil, err
	}
	return svc.repo.QueryCoursesByTeacher(ctx, teacherID)
}

func (svc *Service) GetByID(ctx context.Context, caller core.Identity, id int) (Course, error) {
	if err := access.Authorize(ctx, caller, access.KindCourse, access.Read, nil); err != nil {
		return Course{}, err
	}
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) GetByCode(ctx context.Context, caller core.Identity, code string) (Course, error) {
	if err := access.Authorize(ctx, caller, access.KindCourse, access.Read, nil); err != nil {
		return Course{}, err
	}
	return svc.repo.GetCourseByCode(ctx, core.CleanString(code))
}

func (svc *Service) Update(ctx context.Context, caller core.Identity, id int, uc UpdateCourse) (Course, error) {
	if err := access.Authorize(ctx, caller, access.KindCourse, access.Update, nil); err != nil {
		return Course{}, err
	}

	var c Course
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if c, err = svc.repo.GetCourseByID(ctx, id); err != nil {
			return err
		}
		uc.apply(&c)
		if err = svc.checkRefs(ctx, c); err != nil {
			return err
		}
		c.UpdatedAt = time.Now().UTC()
		c, err = svc.repo.UpdateCourse(ctx, c)
		return err
	})
	if err != nil {
		return Course{}, errors.Wrap(err, "updating course")
	}
	return c, nil
}

func (svc *Service) Delete(ctx context.Context, caller core.Identity, id int) error {
	if err := access.Authorize(ctx, caller, access.KindCourse, access.Delete, nil); err != nil {
		return err
	}
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := svc.repo.GetCourseByID(ctx, id); err != nil {
			return err
		}
		return svc.repo.DeleteCourse(ctx, id)
	})
	return errors.Wrap(err, "deleting course")
}
