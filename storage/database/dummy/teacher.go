package dummydb

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) filter(keep func(t teacher.Teacher) bool) []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0)
	for _, id := range sortedIDs(repo.db.data.teachers) {
		if t := repo.db.data.teachers[id]; keep(t) {
			teachers = append(teachers, t)
		}
	}
	return teachers
}

func (repo *teacherRepository) first(keep func(t teacher.Teacher) bool) (teacher.Teacher, error) {
	if found := repo.filter(keep); len(found) > 0 {
		return found[0], nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) CheckEmployeeCodeUniqueness(ctx context.Context, code string) error {
	defer repo.db.lock(ctx)()

	if _, err := repo.first(func(t teacher.Teacher) bool { return t.EmployeeCode == code }); err == nil {
		return teacher.ErrEmployeeCodeExists
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.first(func(o teacher.Teacher) bool { return o.EmployeeCode == t.EmployeeCode }); err == nil {
		return teacher.Teacher{}, teacher.ErrEmployeeCodeExists
	}
	t.ID = repo.db.data.nextID("teachers")
	repo.db.data.teachers[t.ID] = t
	return t, nil
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(teacher.Teacher) bool { return true }), nil
}

func (repo *teacherRepository) QueryTeachersByDepartment(ctx context.Context, deptID int) ([]teacher.Teacher, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(t teacher.Teacher) bool {
		return t.DepartmentID.Valid && t.DepartmentID.Int == deptID
	}), nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int) (teacher.Teacher, error) {
	defer repo.db.lock(ctx)()

	if t, ok := repo.db.data.teachers[id]; ok {
		return t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByAccountID(ctx context.Context, accID int) (teacher.Teacher, error) {
	defer repo.db.lock(ctx)()
	return repo.first(func(t teacher.Teacher) bool { return t.AccountID == accID })
}

func (repo *teacherRepository) GetTeacherByEmployeeCode(ctx context.Context, code string) (teacher.Teacher, error) {
	defer repo.db.lock(ctx)()
	return repo.first(func(t teacher.Teacher) bool { return t.EmployeeCode == code })
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.data.teachers[t.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	// only mutable fields
	orig.FirstName = t.FirstName
	orig.LastName = t.LastName
	orig.Phone = t.Phone
	orig.Address = t.Address
	orig.Specialization = t.Specialization
	orig.DepartmentID = t.DepartmentID
	orig.UpdatedAt = t.UpdatedAt

	repo.db.data.teachers[t.ID] = orig
	return orig, nil
}

// DeleteTeacher mirrors ON DELETE SET NULL on courses.teacher_id.
func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id int) error {
	defer repo.db.lock(ctx)()

	data := repo.db.data
	if _, ok := data.teachers[id]; !ok {
		return teacher.ErrNotFound
	}
	for k, c := range data.courses {
		if c.TeacherID.Valid && c.TeacherID.Int == id {
			c.TeacherID = null.Int{}
			data.courses[k] = c
		}
	}
	delete(data.teachers, id)
	return nil
}
