package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/teacher"
	"github.com/trezcool/academia/tests"
)

func Test_teacherAPI(t *testing.T) {
	app, env := setup(t)
	tina, tinaID := env.CreateTeacher(t, "tina", "EMP-1")
	_, samID := env.CreateStudent(t, "sam", "STU-1")
	tinaToken := getToken(t, env, tinaID.AccountID)
	samToken := getToken(t, env, samID.AccountID)
	c := env.CreateCourse(t, "CS101", "Programming", null.Int{}, null.IntFrom(tina.ID))

	nt := teacher.NewTeacher{
		NewAccount: account.NewAccount{
			Username:        "newteacher",
			Email:           "newteacher@academia.test",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		},
		FirstName:    "Grace",
		LastName:     "Hopper",
		EmployeeCode: "EMP-2",
	}

	tests := []httpTest{
		{name: "student cannot list", path: "/v1/teachers", token: samToken, wantCode: http.StatusForbidden},
		{name: "student cannot read", path: fmt.Sprintf("/v1/teachers/%d", tina.ID), token: samToken, wantCode: http.StatusForbidden},
		{name: "register", method: http.MethodPost, path: "/v1/teachers", token: tinaToken, body: marchallObj(t, nt), wantCode: http.StatusCreated},
		{
			name: "duplicate employee code", method: http.MethodPost, path: "/v1/teachers", token: tinaToken,
			body: func() []byte {
				data := nt
				data.Username = "another"
				data.Email = "another@academia.test"
				return marchallObj(t, data)
			}(),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"employee_code": "a teacher with this employee code already exists"}),
		},
		{name: "courses", path: fmt.Sprintf("/v1/teachers/%d/courses", tina.ID), token: samToken, wantData: marchallObj(t, []course.Course{c})},
		{
			name: "update", method: http.MethodPut, path: fmt.Sprintf("/v1/teachers/%d", tina.ID), token: tinaToken,
			body: []byte(`{"specialization": "Compilers"}`),
		},
		{
			name: "blank first name", method: http.MethodPut, path: fmt.Sprintf("/v1/teachers/%d", tina.ID), token: tinaToken,
			body:     []byte(`{"first_name": "  "}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"first_name": "first_name must be at least 1 character in length"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, app)
		})
	}

	got, err := env.TeacherRepo.GetTeacherByID(context.Background(), tina.ID)
	require.NoError(t, err)
	assert.Equal(t, "Compilers", got.Specialization)
	assert.Equal(t, "Teacher", got.FirstName)

	_, err = env.TeacherRepo.GetTeacherByEmployeeCode(context.Background(), "EMP-2")
	assert.NoError(t, err)
}
