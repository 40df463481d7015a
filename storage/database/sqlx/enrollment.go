package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/storage/database"
)

type enrollmentRepository struct {
	store
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *database.DB) enrollment.Repository {
	return &enrollmentRepository{store{db: db}}
}

func (repo *enrollmentRepository) AddEnrollment(ctx context.Context, studentID, courseID int) (bool, error) {
	n, err := repo.exec(ctx, psql.Insert("enrollments").
		Columns("student_id", "course_id").
		Values(studentID, courseID).
		Suffix("ON CONFLICT (student_id, course_id) DO NOTHING"))
	if err != nil {
		return false, errors.Wrap(database.TranslateError(err, nil), "inserting enrollment")
	}
	return n > 0, nil
}

func (repo *enrollmentRepository) RemoveEnrollment(ctx context.Context, studentID, courseID int) (bool, error) {
	n, err := repo.exec(ctx, psql.Delete("enrollments").
		Where(sq.Eq{"student_id": studentID, "course_id": courseID}))
	if err != nil {
		return false, errors.Wrap(database.TranslateError(err, nil), "deleting enrollment")
	}
	return n > 0, nil
}

func (repo *enrollmentRepository) queryIDs(ctx context.Context, col string, where sq.Eq) ([]int, error) {
	ids := make([]int, 0)
	q := psql.Select(col).From("enrollments").Where(where).OrderBy(col)
	if err := repo.selectAll(ctx, &ids, q); err != nil {
		return nil, errors.Wrap(database.TranslateError(err, nil), "querying enrollments")
	}
	return ids, nil
}

func (repo *enrollmentRepository) QueryCourseIDs(ctx context.Context, studentID int) ([]int, error) {
	return repo.queryIDs(ctx, "course_id", sq.Eq{"student_id": studentID})
}

func (repo *enrollmentRepository) QueryStudentIDs(ctx context.Context, courseID int) ([]int, error) {
	return repo.queryIDs(ctx, "student_id", sq.Eq{"course_id": courseID})
}
