package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/student"
	"github.com/trezcool/academia/storage/database"
)

var studentUniques = map[string]error{
	"students_student_code_key": student.ErrStudentCodeExists,
}

type studentRow struct {
	ID           int       `db:"id"`
	AccountID    int       `db:"account_id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	StudentCode  string    `db:"student_code"`
	Phone        string    `db:"phone"`
	Address      string    `db:"address"`
	DepartmentID null.Int  `db:"department_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r studentRow) toModel(courses []int) student.Student {
	return student.Student{
		ID:           r.ID,
		AccountID:    r.AccountID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		StudentCode:  r.StudentCode,
		Phone:        r.Phone,
		Address:      r.Address,
		DepartmentID: r.DepartmentID,
		Courses:      idsOrEmpty(courses),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	store
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *database.DB) student.Repository {
	return &studentRepository{store{db: db}}
}

// withCourses reads the enrolled courses of every row in one query.
func (repo *studentRepository) withCourses(ctx context.Context, rows ...studentRow) ([]student.Student, error) {
	students := make([]student.Student, 0, len(rows))
	if len(rows) == 0 {
		return students, nil
	}

	ids := make([]int, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	courses, err := repo.groupIDs(ctx, psql.
		Select("student_id AS key", "course_id AS value").
		From("enrollments").
		Where(sq.Eq{"student_id": ids}).
		OrderBy("course_id"))
	if err != nil {
		return nil, errors.Wrap(database.TranslateError(err, nil), "querying student courses")
	}

	for _, r := range rows {
		students = append(students, r.toModel(courses[r.ID]))
	}
	return students, nil
}

func (repo *studentRepository) CheckStudentCodeUniqueness(ctx context.Context, code string) error {
	found, err := repo.exists(ctx, psql.Select("1").From("students").Where(sq.Eq{"student_code": code}))
	if err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "checking student uniqueness")
	}
	if found {
		return student.ErrStudentCodeExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	var r studentRow
	q := psql.Insert("students").
		Columns(
			"account_id", "first_name", "last_name", "student_code", "phone", "address",
			"department_id", "created_at", "updated_at").
		Values(
			s.AccountID, s.FirstName, s.LastName, s.StudentCode, s.Phone, s.Address,
			s.DepartmentID, s.CreatedAt, s.UpdatedAt).
		Suffix("RETURNING *")
	if err := repo.get(ctx, &r, q); err != nil {
		return student.Student{}, errors.Wrap(database.TranslateError(err, studentUniques), "inserting student")
	}
	return r.toModel(nil), nil
}

func (repo *studentRepository) query(ctx context.Context, where sq.Sqlizer) ([]student.Student, error) {
	q := psql.Select("*").From("students").OrderBy("id")
	if where != nil {
		q = q.Where(where)
	}
	var rows []studentRow
	if err := repo.selectAll(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(database.TranslateError(err, nil), "querying students")
	}
	return repo.withCourses(ctx, rows...)
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	return repo.query(ctx, nil)
}

func (repo *studentRepository) QueryStudentsByDepartment(ctx context.Context, deptID int) ([]student.Student, error) {
	return repo.query(ctx, sq.Eq{"department_id": deptID})
}

func (repo *studentRepository) QueryStudentsByID(ctx context.Context, ids ...int) ([]student.Student, error) {
	if len(ids) == 0 {
		return []student.Student{}, nil
	}
	return repo.query(ctx, sq.Eq{"id": ids})
}

func (repo *studentRepository) getBy(ctx context.Context, where sq.Eq) (student.Student, error) {
	var r studentRow
	if err := repo.get(ctx, &r, psql.Select("*").From("students").Where(where)); err != nil {
		return student.Student{}, database.TrapNoRows(err, student.ErrNotFound, "getting student")
	}
	students, err := repo.withCourses(ctx, r)
	if err != nil {
		return student.Student{}, err
	}
	return students[0], nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *studentRepository) GetStudentByAccountID(ctx context.Context, accID int) (student.Student, error) {
	return repo.getBy(ctx, sq.Eq{"account_id": accID})
}

func (repo *studentRepository) GetStudentByStudentCode(ctx context.Context, code string) (student.Student, error) {
	return repo.getBy(ctx, sq.Eq{"student_code": code})
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := psql.Update("students").
		SetMap(map[string]interface{}{
			"first_name":    s.FirstName,
			"last_name":     s.LastName,
			"phone":         s.Phone,
			"address":       s.Address,
			"department_id": s.DepartmentID,
			"updated_at":    s.UpdatedAt,
		}).
		Where(sq.Eq{"id": s.ID})
	n, err := repo.exec(ctx, q)
	if err != nil {
		return student.Student{}, errors.Wrap(database.TranslateError(err, nil), "updating student")
	}
	if n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, s.ID)
}

// DeleteStudent relies on ON DELETE CASCADE to remove the student's enrollments.
func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	n, err := repo.exec(ctx, psql.Delete("students").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "deleting student")
	}
	if n == 0 {
		return student.ErrNotFound
	}
	return nil
}
