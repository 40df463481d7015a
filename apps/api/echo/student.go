package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/student"
)

type studentAPI struct {
	svc         *student.Service
	enrollments *enrollment.Service
	validate    *validator.Validate
}

func registerStudentAPI(g *echo.Group, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := studentAPI{
		svc:         deps.Students,
		enrollments: deps.Enrollments,
		validate:    deps.Validate,
	}

	sg := g.Group("/students", authed)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)

	// enrollments
	sg.GET("/:id/courses", api.queryCourses)
	sg.PUT("/:id/courses/:courseID", api.enroll)
	sg.DELETE("/:id/courses/:courseID", api.unenroll)
}

// Handlers

func (api *studentAPI) create(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Register(ctx.Request().Context(), caller, data)
	if err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentAPI) query(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	students, err := api.svc.QueryAll(ctx.Request().Context(), caller)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentAPI) retrieve(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	s, err := api.svc.GetByID(ctx.Request().Context(), caller, id)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentAPI) update(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), caller, id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentAPI) destroy(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), caller, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentAPI) queryCourses(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	courses, err := api.enrollments.CoursesOf(ctx.Request().Context(), caller, id)
	if err != nil {
		return errors.Wrap(err, "querying student courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *studentAPI) enroll(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	courseID, err := paramID(ctx, "courseID")
	if err != nil {
		return err
	}

	s, err := api.enrollments.Enroll(ctx.Request().Context(), caller, id, courseID)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentAPI) unenroll(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	courseID, err := paramID(ctx, "courseID")
	if err != nil {
		return err
	}

	s, err := api.enrollments.Unenroll(ctx.Request().Context(), caller, id, courseID)
	if err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return ctx.JSON(http.StatusOK, s)
}
