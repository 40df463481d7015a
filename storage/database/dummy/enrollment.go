package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/academia/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) AddEnrollment(ctx context.Context, studentID, courseID int) (bool, error) {
	defer repo.db.lock(ctx)()

	key := enrollmentKey{studentID: studentID, courseID: courseID}
	if _, ok := repo.db.data.enrollments[key]; ok {
		return false, nil
	}
	repo.db.data.enrollments[key] = time.Now().UTC()
	return true, nil
}

func (repo *enrollmentRepository) RemoveEnrollment(ctx context.Context, studentID, courseID int) (bool, error) {
	defer repo.db.lock(ctx)()

	key := enrollmentKey{studentID: studentID, courseID: courseID}
	if _, ok := repo.db.data.enrollments[key]; !ok {
		return false, nil
	}
	delete(repo.db.data.enrollments, key)
	return true, nil
}

func (repo *enrollmentRepository) QueryCourseIDs(ctx context.Context, studentID int) ([]int, error) {
	defer repo.db.lock(ctx)()
	return repo.db.courseIDsOf(studentID), nil
}

func (repo *enrollmentRepository) QueryStudentIDs(ctx context.Context, courseID int) ([]int, error) {
	defer repo.db.lock(ctx)()
	return repo.db.studentIDsOf(courseID), nil
}
