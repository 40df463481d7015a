package dummydb

import (
	"context"

	"github.com/trezcool/academia/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

// get returns a copy of the stored row with its enrolled students.
func (repo *courseRepository) get(id int) (course.Course, bool) {
	c, ok := repo.db.data.courses[id]
	if !ok {
		return course.Course{}, false
	}
	c.Students = repo.db.studentIDsOf(id)
	return c, true
}

func (repo *courseRepository) filter(keep func(c course.Course) bool) []course.Course {
	courses := make([]course.Course, 0)
	for _, id := range sortedIDs(repo.db.data.courses) {
		if c, _ := repo.get(id); keep(c) {
			courses = append(courses, c)
		}
	}
	return courses
}

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	defer repo.db.lock(ctx)()

	if found := repo.filter(func(c course.Course) bool { return c.Code == code }); len(found) > 0 {
		return course.ErrCodeExists
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	defer repo.db.lock(ctx)()

	if found := repo.filter(func(o course.Course) bool { return o.Code == c.Code }); len(found) > 0 {
		return course.Course{}, course.ErrCodeExists
	}
	c.ID = repo.db.data.nextID("courses")
	c.Students = nil
	repo.db.data.courses[c.ID] = c

	c, _ = repo.get(c.ID)
	return c, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(course.Course) bool { return true }), nil
}

func (repo *courseRepository) QueryCoursesByDepartment(ctx context.Context, deptID int) ([]course.Course, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(c course.Course) bool {
		return c.DepartmentID.Valid && c.DepartmentID.Int == deptID
	}), nil
}

func (repo *courseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID int) ([]course.Course, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(c course.Course) bool {
		return c.TeacherID.Valid && c.TeacherID.Int == teacherID
	}), nil
}

func (repo *courseRepository) QueryCoursesByID(ctx context.Context, ids ...int) ([]course.Course, error) {
	defer repo.db.lock(ctx)()

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return repo.filter(func(c course.Course) bool { return wanted[c.ID] }), nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	defer repo.db.lock(ctx)()

	if c, ok := repo.get(id); ok {
		return c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseByCode(ctx context.Context, code string) (course.Course, error) {
	defer repo.db.lock(ctx)()

	if found := repo.filter(func(c course.Course) bool { return c.Code == code }); len(found) > 0 {
		return found[0], nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.data.courses[c.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	// only mutable fields
	orig.Name = c.Name
	orig.Description = c.Description
	orig.Credits = c.Credits
	orig.DepartmentID = c.DepartmentID
	orig.TeacherID = c.TeacherID
	orig.UpdatedAt = c.UpdatedAt
	repo.db.data.courses[c.ID] = orig

	c, _ = repo.get(c.ID)
	return c, nil
}

// DeleteCourse mirrors ON DELETE CASCADE on enrollments.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	defer repo.db.lock(ctx)()

	data := repo.db.data
	if _, ok := data.courses[id]; !ok {
		return course.ErrNotFound
	}
	for k := range data.enrollments {
		if k.courseID == id {
			delete(data.enrollments, k)
		}
	}
	delete(data.courses, id)
	return nil
}
