package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/teacher"
	"github.com/trezcool/academia/storage/database"
)

var teacherUniques = map[string]error{
	"teachers_employee_code_key": teacher.ErrEmployeeCodeExists,
}

type teacherRow struct {
	ID             int       `db:"id"`
	AccountID      int       `db:"account_id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	EmployeeCode   string    `db:"employee_code"`
	Phone          string    `db:"phone"`
	Address        string    `db:"address"`
	Specialization string    `db:"specialization"`
	DepartmentID   null.Int  `db:"department_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r teacherRow) toModel() teacher.Teacher {
	return teacher.Teacher{
		ID:             r.ID,
		AccountID:      r.AccountID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		EmployeeCode:   r.EmployeeCode,
		Phone:          r.Phone,
		Address:        r.Address,
		Specialization: r.Specialization,
		DepartmentID:   r.DepartmentID,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

type teacherRepository struct {
	store
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *database.DB) teacher.Repository {
	return &teacherRepository{store{db: db}}
}

func (repo *teacherRepository) CheckEmployeeCodeUniqueness(ctx context.Context, code string) error {
	found, err := repo.exists(ctx, psql.Select("1").From("teachers").Where(sq.Eq{"employee_code": code}))
	if err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "checking teacher uniqueness")
	}
	if found {
		return teacher.ErrEmployeeCodeExists
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	var r teacherRow
	q := psql.Insert("teachers").
		Columns(
			"account_id", "first_name", "last_name", "employee_code", "phone", "address",
			"specialization", "department_id", "created_at", "updated_at").
		Values(
			t.AccountID, t.FirstName, t.LastName, t.EmployeeCode, t.Phone, t.Address,
			t.Specialization, t.DepartmentID, t.CreatedAt, t.UpdatedAt).
		Suffix("RETURNING *")
	if err := repo.get(ctx, &r, q); err != nil {
		return teacher.Teacher{}, errors.Wrap(database.TranslateError(err, teacherUniques), "inserting teacher")
	}
	return r.toModel(), nil
}

func (repo *teacherRepository) query(ctx context.Context, where sq.Sqlizer) ([]teacher.Teacher, error) {
	q := psql.Select("*").From("teachers").OrderBy("id")
	if where != nil {
		q = q.Where(where)
	}
	var rows []teacherRow
	if err := repo.selectAll(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(database.TranslateError(err, nil), "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, r.toModel())
	}
	return teachers, nil
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	return repo.query(ctx, nil)
}

func (repo *teacherRepository) QueryTeachersByDepartment(ctx context.Context, deptID int) ([]teacher.Teacher, error) {
	return repo.query(ctx, sq.Eq{"department_id": deptID})
}

func (repo *teacherRepository) getBy(ctx context.Context, where sq.Eq) (teacher.Teacher, error) {
	var r teacherRow
	if err := repo.get(ctx, &r, psql.Select("*").From("teachers").Where(where)); err != nil {
		return teacher.Teacher{}, database.TrapNoRows(err, teacher.ErrNotFound, "getting teacher")
	}
	return r.toModel(), nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int) (teacher.Teacher, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *teacherRepository) GetTeacherByAccountID(ctx context.Context, accID int) (teacher.Teacher, error) {
	return repo.getBy(ctx, sq.Eq{"account_id": accID})
}

func (repo *teacherRepository) GetTeacherByEmployeeCode(ctx context.Context, code string) (teacher.Teacher, error) {
	return repo.getBy(ctx, sq.Eq{"employee_code": code})
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	var r teacherRow
	q := psql.Update("teachers").
		SetMap(map[string]interface{}{
			"first_name":     t.FirstName,
			"last_name":      t.LastName,
			"phone":          t.Phone,
			"address":        t.Address,
			"specialization": t.Specialization,
			"department_id":  t.DepartmentID,
			"updated_at":     t.UpdatedAt,
		}).
		Where(sq.Eq{"id": t.ID}).
		Suffix("RETURNING *")
	if err := repo.get(ctx, &r, q); err != nil {
		return teacher.Teacher{}, database.TrapNoRows(err, teacher.ErrNotFound, "updating teacher")
	}
	return r.toModel(), nil
}

// DeleteTeacher relies on ON DELETE SET NULL to detach the teacher's courses.
func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id int) error {
	n, err := repo.exec(ctx, psql.Delete("teachers").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "deleting teacher")
	}
	if n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}
