package department

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/access"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("department")
	ErrNameExists = core.NewDuplicateKeyError("name", "a department with this name already exists")

	errRefNotFound = core.NewValidationError(nil, core.FieldError{Field: "department_id", Error: "department not found"})
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		CreateDepartment(ctx context.Context, dept Department) (Department, error)
		QueryAllDepartments(ctx context.Context) ([]Department, error)
		GetDepartmentByID(ctx context.Context, id int) (Department, error)
		GetDepartmentByName(ctx context.Context, name string) (Department, error)
		UpdateDepartment(ctx context.Context, dept Department) (Department, error)
		// DeleteDepartment detaches students, teachers & courses still referencing the department.
		DeleteDepartment(ctx context.Context, id int) error
	}

	Service struct {
		tx   core.Transactor
		repo Repository
	}
)

func NewService(tx core.Transactor, repo Repository) *Service {
	return &Service{tx: tx, repo: repo}
}

func (svc *Service) Create(ctx context.Context, caller core.Identity, nd NewDepartment) (Department, error) {
	if err := access.Authorize(ctx, caller, access.KindDepartment, access.Create, nil); err != nil {
		return Department{}, err
	}

	var dept Department
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := svc.repo.CheckNameUniqueness(ctx, nd.Name); err != nil {
			return err
		}
		now := time.Now().UTC()
		var err error
		dept, err = svc.repo.CreateDepartment(ctx, Department{
			Name:        nd.Name,
			Description: nd.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	})
	if err != nil {
		return Department{}, errors.Wrap(err, "creating department")
	}
	return dept, nil
}

func (svc *Service) QueryAll(ctx context.Context, caller core.Identity) ([]Department, error) {
	if err := access.Authorize(ctx, caller, access.KindDepartment, access.Read, nil); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllDepartments(ctx)
}

func (svc *Service) GetByID(ctx context.Context, caller core.Identity, id int) (Department, error) {
	if err := access.Authorize(ctx, caller, access.KindDepartment, access.Read, nil); err != nil {
		return Department{}, err
	}
	return svc.repo.GetDepartmentByID(ctx, id)
}

func (svc *Service) GetByName(ctx context.Context, caller core.Identity, name string) (Department, error) {
	if err := access.Authorize(ctx, caller, access.KindDepartment, access.Read, nil); err != nil {
		return Department{}, err
	}
	return svc.repo.GetDepartmentByName(ctx, core.CleanString(name))
}

func (svc *Service) Update(ctx context.Context, caller core.Identity, id int, ud UpdateDepartment) (Department, error) {
	if err := access.Authorize(ctx, caller, access.KindDepartment, access.Update, nil); err != nil {
		return Department{}, err
	}

	var dept Department
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if dept, err = svc.repo.GetDepartmentByID(ctx, id); err != nil {
			return err
		}
		if ud.Description != nil {
			dept.Description = *ud.Description
		}
		dept.UpdatedAt = time.Now().UTC()
		dept, err = svc.repo.UpdateDepartment(ctx, dept)
		return err
	})
	if err != nil {
		return Department{}, errors.Wrap(err, "updating department")
	}
	return dept, nil
}

func (svc *Service) Delete(ctx context.Context, caller core.Identity, id int) error {
	if err := access.Authorize(ctx, caller, access.KindDepartment, access.Delete, nil); err != nil {
		return err
	}
	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := svc.repo.GetDepartmentByID(ctx, id); err != nil {
			return err
		}
		return svc.repo.DeleteDepartment(ctx, id)
	})
	return errors.Wrap(err, "deleting department")
}

// CheckRef validates an optional department reference held by another record.
func CheckRef(ctx context.Context, repo Repository, id null.Int) error {
	if !id.Valid {
		return nil
	}
	if _, err := repo.GetDepartmentByID(ctx, id.Int); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return errRefNotFound
		}
		return errors.Wrap(err, "finding department by ID")
	}
	return nil
}
