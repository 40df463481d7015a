package dummydb

import (
	"context"

	"github.com/trezcool/academia/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// get returns a copy of the stored row with its enrolled courses.
func (repo *studentRepository) get(id int) (student.Student, bool) {
	s, ok := repo.db.data.students[id]
	if !ok {
		return student.Student{}, false
	}
	s.Courses = repo.db.courseIDsOf(id)
	return s, true
}

func (repo *studentRepository) filter(keep func(s student.Student) bool) []student.Student {
	students := make([]student.Student, 0)
	for _, id := range sortedIDs(repo.db.data.students) {
		if s, _ := repo.get(id); keep(s) {
			students = append(students, s)
		}
	}
	return students
}

func (repo *studentRepository) first(keep func(s student.Student) bool) (student.Student, error) {
	if found := repo.filter(keep); len(found) > 0 {
		return found[0], nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) CheckStudentCodeUniqueness(ctx context.Context, code string) error {
	defer repo.db.lock(ctx)()

	if _, err := repo.first(func(s student.Student) bool { return s.StudentCode == code }); err == nil {
		return student.ErrStudentCodeExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	defer repo.db.lock(ctx)()

	if _, err := repo.first(func(o student.Student) bool { return o.StudentCode == s.StudentCode }); err == nil {
		return student.Student{}, student.ErrStudentCodeExists
	}
	s.ID = repo.db.data.nextID("students")
	s.Courses = nil
	repo.db.data.students[s.ID] = s

	s, _ = repo.get(s.ID)
	return s, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(student.Student) bool { return true }), nil
}

func (repo *studentRepository) QueryStudentsByDepartment(ctx context.Context, deptID int) ([]student.Student, error) {
	defer repo.db.lock(ctx)()
	return repo.filter(func(s student.Student) bool {
		return s.DepartmentID.Valid && s.DepartmentID.Int == deptID
	}), nil
}

func (repo *studentRepository) QueryStudentsByID(ctx context.Context, ids ...int) ([]student.Student, error) {
	defer repo.db.lock(ctx)()

	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return repo.filter(func(s student.Student) bool { return wanted[s.ID] }), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	defer repo.db.lock(ctx)()

	if s, ok := repo.get(id); ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByAccountID(ctx context.Context, accID int) (student.Student, error) {
	defer repo.db.lock(ctx)()
	return repo.first(func(s student.Student) bool { return s.AccountID == accID })
}

func (repo *studentRepository) GetStudentByStudentCode(ctx context.Context, code string) (student.Student, error) {
	defer repo.db.lock(ctx)()
	return repo.first(func(s student.Student) bool { return s.StudentCode == code })
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.data.students[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	// only mutable fields
	orig.FirstName = s.FirstName
	orig.LastName = s.LastName
	orig.Phone = s.Phone
	orig.Address = s.Address
	orig.DepartmentID = s.DepartmentID
	orig.UpdatedAt = s.UpdatedAt
	repo.db.data.students[s.ID] = orig

	s, _ = repo.get(s.ID)
	return s, nil
}

// DeleteStudent mirrors ON DELETE CASCADE on enrollments.
func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	defer repo.db.lock(ctx)()

	data := repo.db.data
	if _, ok := data.students[id]; !ok {
		return student.ErrNotFound
	}
	for k := range data.enrollments {
		if k.studentID == id {
			delete(data.enrollments, k)
		}
	}
	delete(data.students, id)
	return nil
}
