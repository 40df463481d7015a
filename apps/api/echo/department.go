package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/department"
	"github.com/trezcool/academia/core/student"
	"github.com/trezcool/academia/core/teacher"
)

type departmentAPI struct {
	svc      *department.Service
	students *student.Service
	teachers *teacher.Service
	courses  *course.Service
	validate *validator.Validate
}

func registerDepartmentAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := departmentAPI{
		svc:      deps.Departments,
		students: deps.Students,
		teachers: deps.Teachers,
		courses:  deps.Courses,
		validate: deps.Validate,
	}

	dg := g.Group("/departments", authed)
	dg.GET("", api.query)
	dg.POST("", api.create)
	dg.GET("/:id", api.retrieve)
	dg.PUT("/:id", api.update)
	dg.DELETE("/:id", api.destroy)
	dg.GET("/:id/students", api.queryStudents)
	dg.GET("/:id/teachers", api.queryTeachers)
	dg.GET("/:id/courses", api.queryCourses)
}

// Handlers

func (api *departmentAPI) create(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	var data department.NewDepartment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	dept, err := api.svc.Create(ctx.Request().Context(), caller, data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dept)
}

func (api *departmentAPI) query(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	depts, err := api.svc.QueryAll(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *departmentAPI) retrieve(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	dept, err := api.svc.GetByID(ctx.Request().Context(), caller, id)
	if err != nil {
		return errors.Wrap(err, "finding department by ID")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *departmentAPI) update(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data department.UpdateDepartment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDepartment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	dept, err := api.svc.Update(ctx.Request().Context(), caller, id, data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *departmentAPI) destroy(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), caller, id); err != nil {
		return errors.Wrap(err, "deleting department")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *departmentAPI) queryStudents(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	students, err := api.students.QueryByDepartment(ctx.Request().Context(), caller, id)
	if err != nil {
		return errors.Wrap(err, "querying department students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *departmentAPI) queryTeachers(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	teachers, err := api.teachers.QueryByDepartment(ctx.Request().Context(), caller, id)
	if err != nil {
		return errors.Wrap(err, "querying department teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *departmentAPI) queryCourses(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	courses, err := api.courses.QueryByDepartment(ctx.Request().Context(), caller, id)
	if err != nil {
		return errors.Wrap(err, "querying department courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}
