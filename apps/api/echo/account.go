package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/student"
	"github.com/trezcool/academia/core/teacher"
)

type accountAPI struct {
	conf     *core.Config
	svc      *account.Service
	students *student.Service
	teachers *teacher.Service
	validate *validator.Validate
}

func registerAccountAPI(g *echo.Group, jwt, authed echo.MiddlewareFunc, deps ServerDeps) {
	api := accountAPI{
		conf:     deps.Conf,
		svc:      deps.Accounts,
		students: deps.Students,
		teachers: deps.Teachers,
		validate: deps.Validate,
	}

	// un-authed endpoints
	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/token-refresh", api.refreshToken, jwt)

	// authed endpoints
	mg := g.Group("/me", authed)
	mg.GET("", api.me)
	mg.PUT("/password", api.changePassword)
}

// Handlers

func (api *accountAPI) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(NewClaims(acc, api.conf), api.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *accountAPI) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *accountAPI) me(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	acc, err := api.svc.GetByID(rctx, caller.AccountID)
	if err != nil {
		return errors.Wrap(err, "finding caller account")
	}
	resp := MeResponse{Account: acc}

	switch acc.Role {
	case core.RoleStudent:
		s, err := api.students.GetOwn(rctx, caller)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return errors.Wrap(err, "finding own student profile")
		} else if err == nil {
			resp.Student = &s
		}
	case core.RoleTeacher:
		t, err := api.teachers.GetOwn(rctx, caller)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return errors.Wrap(err, "finding own teacher profile")
		} else if err == nil {
			resp.Teacher = &t
		}
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (api *accountAPI) changePassword(ctx echo.Context) error {
	caller, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	var data account.NewPassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPassword")
	}
	acc, err := api.svc.GetByID(rctx, caller.AccountID)
	if err != nil {
		return errors.Wrap(err, "finding caller account")
	}
	if err = data.Validate(api.validate, acc); err != nil {
		return err
	}

	if err = api.svc.ChangePassword(rctx, caller, data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been changed."})
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	MeResponse struct {
		Account account.Account  `json:"account"`
		Student *student.Student `json:"student,omitempty"`
		Teacher *teacher.Teacher `json:"teacher,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}
