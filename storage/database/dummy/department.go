package dummydb

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/department"
)

type departmentRepository struct {
	db *DB
}

var _ department.Repository = (*departmentRepository)(nil) // interface compliance check

func NewDepartmentRepository(db *DB) department.Repository {
	return &departmentRepository{db: db}
}

func (repo *departmentRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	defer repo.db.lock(ctx)()

	for _, dept := range repo.db.data.departments {
		if dept.Name == name {
			return department.ErrNameExists
		}
	}
	return nil
}

func (repo *departmentRepository) CreateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	defer repo.db.lock(ctx)()

	for _, d := range repo.db.data.departments {
		if d.Name == dept.Name {
			return department.Department{}, department.ErrNameExists
		}
	}
	dept.ID = repo.db.data.nextID("departments")
	repo.db.data.departments[dept.ID] = dept
	return dept, nil
}

func (repo *departmentRepository) QueryAllDepartments(ctx context.Context) ([]department.Department, error) {
	defer repo.db.lock(ctx)()

	depts := make([]department.Department, 0, len(repo.db.data.departments))
	for _, id := range sortedIDs(repo.db.data.departments) {
		depts = append(depts, repo.db.data.departments[id])
	}
	return depts, nil
}

func (repo *departmentRepository) GetDepartmentByID(ctx context.Context, id int) (department.Department, error) {
	defer repo.db.lock(ctx)()

	if dept, ok := repo.db.data.departments[id]; ok {
		return dept, nil
	}
	return department.Department{}, department.ErrNotFound
}

func (repo *departmentRepository) GetDepartmentByName(ctx context.Context, name string) (department.Department, error) {
	defer repo.db.lock(ctx)()

	for _, dept := range repo.db.data.departments {
		if dept.Name == name {
			return dept, nil
		}
	}
	return department.Department{}, department.ErrNotFound
}

func (repo *departmentRepository) UpdateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	defer repo.db.lock(ctx)()

	orig, ok := repo.db.data.departments[dept.ID]
	if !ok {
		return department.Department{}, department.ErrNotFound
	}
	orig.Description = dept.Description
	orig.UpdatedAt = dept.UpdatedAt

	repo.db.data.departments[dept.ID] = orig
	return orig, nil
}

// DeleteDepartment mirrors ON DELETE SET NULL on the referencing tables.
func (repo *departmentRepository) DeleteDepartment(ctx context.Context, id int) error {
	defer repo.db.lock(ctx)()

	data := repo.db.data
	if _, ok := data.departments[id]; !ok {
		return department.ErrNotFound
	}
	for k, s := range data.students {
		if s.DepartmentID.Valid && s.DepartmentID.Int == id {
			s.DepartmentID = null.Int{}
			data.students[k] = s
		}
	}
	for k, t := range data.teachers {
		if t.DepartmentID.Valid && t.DepartmentID.Int == id {
			t.DepartmentID = null.Int{}
			data.teachers[k] = t
		}
	}
	for k, c := range data.courses {
		if c.DepartmentID.Valid && c.DepartmentID.Int == id {
			c.DepartmentID = null.Int{}
			data.courses[k] = c
		}
	}
	delete(data.departments, id)
	return nil
}
