package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/department"
	"github.com/trezcool/academia/storage/database"
)

var departmentUniques = map[string]error{
	"departments_name_key": department.ErrNameExists,
}

type departmentRow struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r departmentRow) toModel() department.Department {
	return department.Department{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type departmentRepository struct {
	store
}

var _ department.Repository = (*departmentRepository)(nil) // interface compliance check

func NewDepartmentRepository(db *database.DB) department.Repository {
	return &departmentRepository{store{db: db}}
}

func (repo *departmentRepository) CheckNameUniqueness(ctx context.Context, name string) error {
	found, err := repo.exists(ctx, psql.Select("1").From("departments").Where(sq.Eq{"name": name}))
	if err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "checking department uniqueness")
	}
	if found {
		return department.ErrNameExists
	}
	return nil
}

func (repo *departmentRepository) CreateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	var r departmentRow
	q := psql.Insert("departments").
		Columns("name", "description", "created_at", "updated_at").
		Values(dept.Name, dept.Description, dept.CreatedAt, dept.UpdatedAt).
		Suffix("RETURNING *")
	if err := repo.get(ctx, &r, q); err != nil {
		return department.Department{}, errors.Wrap(database.TranslateError(err, departmentUniques), "inserting department")
	}
	return r.toModel(), nil
}

func (repo *departmentRepository) QueryAllDepartments(ctx context.Context) ([]department.Department, error) {
	var rows []departmentRow
	if err := repo.selectAll(ctx, &rows, psql.Select("*").From("departments").OrderBy("id")); err != nil {
		return nil, errors.Wrap(database.TranslateError(err, nil), "querying departments")
	}
	depts := make([]department.Department, 0, len(rows))
	for _, r := range rows {
		depts = append(depts, r.toModel())
	}
	return depts, nil
}

func (repo *departmentRepository) getBy(ctx context.Context, where sq.Eq) (department.Department, error) {
	var r departmentRow
	if err := repo.get(ctx, &r, psql.Select("*").From("departments").Where(where)); err != nil {
		return department.Department{}, database.TrapNoRows(err, department.ErrNotFound, "getting department")
	}
	return r.toModel(), nil
}

func (repo *departmentRepository) GetDepartmentByID(ctx context.Context, id int) (department.Department, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *departmentRepository) GetDepartmentByName(ctx context.Context, name string) (department.Department, error) {
	return repo.getBy(ctx, sq.Eq{"name": name})
}

func (repo *departmentRepository) UpdateDepartment(ctx context.Context, dept department.Department) (department.Department, error) {
	var r departmentRow
	q := psql.Update("departments").
		Set("description", dept.Description).
		Set("updated_at", dept.UpdatedAt).
		Where(sq.Eq{"id": dept.ID}).
		Suffix("RETURNING *")
	if err := repo.get(ctx, &r, q); err != nil {
		return department.Department{}, database.TrapNoRows(err, department.ErrNotFound, "updating department")
	}
	return r.toModel(), nil
}

// DeleteDepartment relies on ON DELETE SET NULL to detach referencing rows.
func (repo *departmentRepository) DeleteDepartment(ctx context.Context, id int) error {
	n, err := repo.exec(ctx, psql.Delete("departments").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(database.TranslateError(err, nil), "deleting department")
	}
	if n == 0 {
		return department.ErrNotFound
	}
	return nil
}
