// Package enrollment maintains the Student<->Course relation.
// The relation is stored once, as (student, course) pairs; Student.Courses and
// Course.Students are read projections of it.
package enrollment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/student"
)

type (
	Repository interface {
		// AddEnrollment inserts the pair unless it already exists and reports whether it did.
		AddEnrollment(ctx context.Context, studentID, courseID int) (bool, error)
		// RemoveEnrollment deletes the pair if it exists and reports whether it did.
		RemoveEnrollment(ctx context.Context, studentID, courseID int) (bool, error)
		QueryCourseIDs(ctx context.Context, studentID int) ([]int, error)
		QueryStudentIDs(ctx context.Context, courseID int) ([]int, error)
	}

	Service struct {
		tx       core.Transactor
		repo     Repository
		students student.Repository
		courses  course.Repository
		logger   core.Logger
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	students student.Repository,
	courses course.Repository,
	logger core.Logger,
) *Service {
	return &Service{
		tx:       tx,
		repo:     repo,
		students: students,
		courses:  courses,
		logger:   logger,
	}
}

// lookup authorizes the caller on the student, then makes sure both records exist.
func (svc *Service) lookup(ctx context.Context, caller core.Identity, studentID, courseID int) error {
	if err := access.Authorize(ctx, caller, access.KindStudent, access.Enroll, student.IsSelf(svc.students, caller, studentID)); err != nil {
		return err
	}
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return err
	}
	_, err := svc.courses.GetCourseByID(ctx, courseID)
	return err
}

// Enroll adds the course to the student's courses. Enrolling twice is a no-op.
func (svc *Service) Enroll(ctx context.Context, caller core.Identity, studentID, courseID int) (student.Student, error) {
	var s student.Student
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := svc.lookup(ctx, caller, studentID, courseID); err != nil {
			return err
		}
		added, err := svc.repo.AddEnrollment(ctx, studentID, courseID)
		if err != nil {
			return err
		}
		if added {
			svc.logger.Debug("enrolled", map[string]interface{}{"student": studentID, "course": courseID}, caller)
		}
		s, err = svc.students.GetStudentByID(ctx, studentID)
		return err
	})
	if err != nil {
		return student.Student{}, errors.Wrap(err, "enrolling student")
	}
	return s, nil
}

// Unenroll removes the course from the student's courses. Removing a course the student
// is not enrolled in is a no-op.
func (svc *Service) Unenroll(ctx context.Context, caller core.Identity, studentID, courseID int) (student.Student, error) {
	var s student.Student
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := svc.lookup(ctx, caller, studentID, courseID); err != nil {
			return err
		}
		removed, err := svc.repo.RemoveEnrollment(ctx, studentID, courseID)
		if err != nil {
			return err
		}
		if removed {
			svc.logger.Debug("unenrolled", map[string]interface{}{"student": studentID, "course": courseID}, caller)
		}
		s, err = svc.students.GetStudentByID(ctx, studentID)
		return err
	})
	if err != nil {
		return student.Student{}, errors.Wrap(err, "unenrolling student")
	}
	return s, nil
}

// CoursesOf lists the courses the student is enrolled in.
func (svc *Service) CoursesOf(ctx context.Context, caller core.Identity, studentID int) ([]course.Course, error) {
	if err := access.Authorize(ctx, caller, access.KindStudent, access.Read, student.IsSelf(svc.students, caller, studentID)); err != nil {
		return nil, err
	}
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	ids, err := svc.repo.QueryCourseIDs(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course IDs")
	}
	return svc.courses.QueryCoursesByID(ctx, ids...)
}

// StudentsOf lists the students enrolled in the course.
func (svc *Service) StudentsOf(ctx context.Context, caller core.Identity, courseID int) ([]student.Student, error) {
	if err := access.Authorize(ctx, caller, access.KindStudent, access.Read, nil); err != nil {
		return nil, err
	}
	if _, err := svc.courses.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	ids, err := svc.repo.QueryStudentIDs(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying student IDs")
	}
	return svc.students.QueryStudentsByID(ctx, ids...)
}
