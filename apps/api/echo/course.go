package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/enrollment"
)

type courseAPI struct {
	svc         *course.Service
	enrollments *enrollment.Service
	validate    *validator.Validate
}

func registerCourseAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := courseAPI{
		svc:         deps.Courses,
		enrollments: deps.Enrollments,
		validate:    deps.Validate,
	}

	cg := g.Group("/courses", authed)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/students", api.queryStudents)
}

// Handlers

func (api *courseAPI) create(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), caller, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseAPI) query(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	courses, err := api.svc.QueryAll(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseAPI) retrieve(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	c, err := api.svc.GetByID(ctx.Request().Context(), caller, id)
	if err != nil {
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseAPI) update(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), caller, id, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseAPI) destroy(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), caller, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseAPI) queryStudents(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	students, err := api.enrollments.StudentsOf(ctx.Request().Context(), caller, id)
	if err != nil {
		return errors.Wrap(err, "querying course students")
	}
	return ctx.JSON(http.StatusOK, students)
}
