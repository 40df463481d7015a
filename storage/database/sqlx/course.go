package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/storage/database"
)

var courseUniques = map[string]error{
	"courses_code_key": course.ErrCodeExists,
}

type courseRow struct {
	ID           int       `db:"id"`
	Code         string    `db:"code"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	Credits      int       `db:"credits"`
	DepartmentID null.Int  `db:"department_id"`
	TeacherID    null.Int  `db:"teacher_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r courseRow) toModel(students []int) course.Course {
	return course.Course{
		ID:           r.ID,
		Code:         r.Code,
		Name:         r.Name,
		Description:  r.Description,
		Credits:      r.Credits,
		DepartmentID: r.DepartmentID,
		TeacherID:    r.TeacherID,
		Students:     idsOrEmpty(students),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type courseRepository struct {
	store
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *database.DB) course.Repository {
	return &courseRepository{store{db: db}}
}

// withStudents reads the enrolled students of every row in one query.
func (repo *courseRepository) withStudents(ctx context.Context, rows ...courseRow) ([]course.Course, error) {
	courses := make([]course.Course, 0, len(rows))
	if len(rows) == 0 {
		return courses, nil
	}

	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	students, err := repo.groupIDs(ctx, psql.
		Select("course_id AS key", "student_id AS value").
		From("enrollments").
		Where(sq.Eq{"course_id": ids}).
		OrderBy("student_id"))
	if err != nil {
		return nil, errors.Wrap(database.TranslateError(err, nil), "querying course students")
	}

	for _, r := range rows {
		courses = append(courses, r.toModel(students[r.ID]))
	}
	return courses, nil
}

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string) error {
	found, err := repo.exists(ctx, psql.Select("1").From("courses").Where(sq.Eq{"code": code}))
	if err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "checking course uniqueness")
	}
	if found {
		return course.ErrCodeExists
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	var r courseRow
	q := psql.Insert("courses").
		Columns("code", "name", "description", "credits", "department_id", "teacher_id", "created_at", "updated_at").
		Values(c.Code, c.Name, c.Description, c.Credits, c.DepartmentID, c.TeacherID, c.CreatedAt, c.UpdatedAt).
		Suffix("RETURNING *")
	if err := repo.get(ctx, &r, q); err != nil {
		return course.Course{}, errors.Wrap(database.TranslateError(err, courseUniques), "inserting course")
	}
	return r.toModel(nil), nil
}

func (repo *courseRepository) query(ctx context.Context, where sq.Sqlizer) ([]course.Course, error) {
	q := psql.Select("*").From("courses").OrderBy("id")
	if where != nil {
		q = q.Where(where)
	}
	var rows []courseRow
	if err := repo.selectAll(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(database.TranslateError(err, nil), "querying courses")
	}
	return repo.withStudents(ctx, rows...)
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	return repo.query(ctx, nil)
}

func (repo *courseRepository) QueryCoursesByDepartment(ctx context.Context, deptID int) ([]course.Course, error) {
	return repo.query(ctx, sq.Eq{"department_id": deptID})
}

func (repo *courseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID int) ([]course.Course, error) {
	return repo.query(ctx, sq.Eq{"teacher_id": teacherID})
}

func (repo *courseRepository) QueryCoursesByID(ctx context.Context, ids ...int) ([]course.Course, error) {
	if len(ids) == 0 {
		return []course.Course{}, nil
	}
	return repo.query(ctx, sq.Eq{"id": ids})
}

func (repo *courseRepository) getBy(ctx context.Context, where sq.Eq) (course.Course, error) {
	var r courseRow
	if err := repo.get(ctx, &r, psql.Select("*").From("courses").Where(where)); err != nil {
		return course.Course{}, database.TrapNoRows(err, course.ErrNotFound, "getting course")
	}
	courses, err := repo.withStudents(ctx, r)
	if err != nil {
		return course.Course{}, err
	}
	return courses[0], nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id int) (course.Course, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *courseRepository) GetCourseByCode(ctx context.Context, code string) (course.Course, error) {
	return repo.getBy(ctx, sq.Eq{"code": code})
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := psql.Update("courses").
		SetMap(map[string]interface{}{
			"name":          c.Name,
			"description":   c.Description,
			"credits":       c.Credits,
			"department_id": c.DepartmentID,
			"teacher_id":    c.TeacherID,
			"updated_at":    c.UpdatedAt,
		}).
		Where(sq.Eq{"id": c.ID})
	n, err := repo.exec(ctx, q)
	if err != nil {
		return course.Course{}, errors.Wrap(database.TranslateError(err, nil), "updating course")
	}
	if n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, c.ID)
}

// DeleteCourse relies on ON DELETE CASCADE to remove the course's enrollments.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	n, err := repo.exec(ctx, psql.Delete("courses").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "deleting course")
	}
	if n == 0 {
		return course.ErrNotFound
	}
	return nil
}
