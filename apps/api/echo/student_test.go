package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/student"
	emailsvc "github.com/trezcool/academia/services/email"
	"github.com/trezcool/academia/tests"
)

func Test_studentAPI_create(t *testing.T) {
	app, env := setup(t)
	_, tinaID := env.CreateTeacher(t, "tina", "EMP-1")
	_, samID := env.CreateStudent(t, "sam", "STU-1")
	tinaToken := getToken(t, env, tinaID.AccountID)

	ns := student.NewStudent{
		NewAccount: account.NewAccount{
			Username:        "newstudent",
			Email:           "newstudent@academia.test",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		},
		FirstName:   "Ada",
		LastName:    "Lovelace",
		StudentCode: "STU-2",
	}
	dupCode := ns
	dupCode.Username = "other"
	dupCode.Email = "other@academia.test"
	dupCode.StudentCode = "STU-1"

	tests := []httpTest{
		{
			name: "student is forbidden", method: http.MethodPost, path: "/v1/students", token: getToken(t, env, samID.AccountID),
			body: marchallObj(t, ns), wantCode: http.StatusForbidden,
		},
		{
			name: "invalid student code", method: http.MethodPost, path: "/v1/students", token: tinaToken,
			body:     []byte(`{"username": "x_y", "email": "x@academia.test", "password": "Acad3mia-Pwd", "password_confirm": "Acad3mia-Pwd", "first_name": "X", "last_name": "Y", "student_code": "STU 9"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_code": "only alphanumeric characters and hyphens are allowed"}),
		},
		{
			name: "duplicate student code", method: http.MethodPost, path: "/v1/students", token: tinaToken,
			body:     marchallObj(t, dupCode),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_code": "a student with this student code already exists"}),
		},
		{
			name: "unknown department", method: http.MethodPost, path: "/v1/students", token: tinaToken,
			body: func() []byte {
				data := ns
				data.DepartmentID = null.IntFrom(999)
				return marchallObj(t, data)
			}(),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"department_id": "department not found"}),
		},
		{name: "success", method: http.MethodPost, path: "/v1/students", token: tinaToken, body: marchallObj(t, ns), wantCode: http.StatusCreated},
		{
			name: "duplicate username", method: http.MethodPost, path: "/v1/students", token: tinaToken,
			body: func() []byte {
				data := ns
				data.StudentCode = "STU-3"
				data.Email = "ada@academia.test"
				return marchallObj(t, data)
			}(),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "an account with this username already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, app)
		})
	}

	ctx := context.Background()
	_, err := env.Accounts.GetByUsername(ctx, "other")
	assert.True(t, errors.Is(err, core.ErrNotFound), err)

	s, err := env.StudentRepo.GetStudentByStudentCode(ctx, "STU-2")
	require.NoError(t, err)
	acc, err := env.Accounts.GetByID(ctx, s.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "newstudent", acc.Username)
	assert.Len(t, emailsvc.GetSentMessages(), 1)
}

func Test_studentAPI_self(t *testing.T) {
	app, env := setup(t)
	sam, samID := env.CreateStudent(t, "sam", "STU-1")
	eve, _ := env.CreateStudent(t, "eve", "STU-2")
	samToken := getToken(t, env, samID.AccountID)
	samPath := fmt.Sprintf("/v1/students/%d", sam.ID)
	evePath := fmt.Sprintf("/v1/students/%d", eve.ID)

	tests := []httpTest{
		{name: "list is forbidden", path: "/v1/students", token: samToken, wantCode: http.StatusForbidden},
		{name: "retrieve self", path: samPath, token: samToken, wantData: marchallObj(t, sam)},
		{name: "retrieve other", path: evePath, token: samToken, wantCode: http.StatusForbidden},
		{name: "retrieve unknown", path: "/v1/students/999", token: samToken, wantCode: http.StatusForbidden},
		{
			name: "update other", method: http.MethodPut, path: evePath, token: samToken,
			body: []byte(`{"phone": "+1 555 0100"}`), wantCode: http.StatusForbidden,
		},
		{name: "delete self", method: http.MethodDelete, path: samPath, token: samToken, wantCode: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, app)
		})
	}

	t.Run("update self", func(t *testing.T) {
		rec := httpTest{
			method: http.MethodPut, path: samPath, token: samToken,
			body: []byte(`{"phone": " +1 555 0100 ", "student_code": "HACKED", "unknown": true}`),
		}.run(t, app)

		var got student.Student
		unmarchallObj(t, rec.Body.Bytes(), &got)
		assert.Equal(t, "+1 555 0100", got.Phone)
		assert.Equal(t, "STU-1", got.StudentCode)

		stored, err := env.StudentRepo.GetStudentByID(context.Background(), sam.ID)
		require.NoError(t, err)
		assert.Equal(t, "+1 555 0100", stored.Phone)
	})

	t.Run("blank first name", func(t *testing.T) {
		httpTest{
			method: http.MethodPut, path: samPath, token: samToken,
			body:     []byte(`{"first_name": ""}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"first_name": "first_name must be at least 1 character in length"}),
		}.run(t, app)
	})

	t.Run("join and leave department", func(t *testing.T) {
		ctx := context.Background()
		dept := env.CreateDepartment(t, "CSE")

		httpTest{
			method: http.MethodPut, path: samPath, token: samToken,
			body: []byte(fmt.Sprintf(`{"department_id": %d}`, dept.ID)),
		}.run(t, app)
		stored, err := env.StudentRepo.GetStudentByID(ctx, sam.ID)
		require.NoError(t, err)
		assert.Equal(t, null.IntFrom(dept.ID), stored.DepartmentID)

		httpTest{method: http.MethodPut, path: samPath, token: samToken, body: []byte(`{"department_id": null}`)}.run(t, app)
		stored, err = env.StudentRepo.GetStudentByID(ctx, sam.ID)
		require.NoError(t, err)
		assert.False(t, stored.DepartmentID.Valid)
		assert.Equal(t, sam.FirstName, stored.FirstName)
	})
}

func Test_studentAPI_enrollment(t *testing.T) {
	app, env := setup(t)
	_, tinaID := env.CreateTeacher(t, "tina", "EMP-1")
	sam, samID := env.CreateStudent(t, "sam", "STU-1")
	eve, _ := env.CreateStudent(t, "eve", "STU-2")
	c := env.CreateCourse(t, "CS101", "Programming", null.Int{}, null.Int{})
	tinaToken := getToken(t, env, tinaID.AccountID)
	samToken := getToken(t, env, samID.AccountID)
	enrollPath := fmt.Sprintf("/v1/students/%d/courses/%d", sam.ID, c.ID)

	for i := 0; i < 2; i++ { // idempotent
		rec := httpTest{method: http.MethodPut, path: enrollPath, token: samToken}.run(t, app)
		var got student.Student
		unmarchallObj(t, rec.Body.Bytes(), &got)
		assert.Equal(t, []int{c.ID}, got.Courses)
	}

	enrolled, err := env.Courses.GetByID(context.Background(), tinaID, c.ID)
	require.NoError(t, err)

	tests := []httpTest{
		{
			name: "own courses", path: fmt.Sprintf("/v1/students/%d/courses", sam.ID), token: samToken,
			wantData: marchallObj(t, []course.Course{enrolled}),
		},
		{
			name: "enroll other", method: http.MethodPut, path: fmt.Sprintf("/v1/students/%d/courses/%d", eve.ID, c.ID),
			token: samToken, wantCode: http.StatusForbidden,
		},
		{
			name: "unknown course", method: http.MethodPut, path: fmt.Sprintf("/v1/students/%d/courses/999", sam.ID),
			token: samToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course not found"}),
		},
		{
			name: "teacher enrolls anyone", method: http.MethodPut, path: fmt.Sprintf("/v1/students/%d/courses/%d", eve.ID, c.ID),
			token: tinaToken,
		},
		{
			name: "course students are teacher only", path: fmt.Sprintf("/v1/courses/%d/students", c.ID), token: samToken,
			wantCode: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, app)
		})
	}

	t.Run("course students", func(t *testing.T) {
		rec := httpTest{path: fmt.Sprintf("/v1/courses/%d/students", c.ID), token: tinaToken}.run(t, app)
		var got []student.Student
		unmarchallObj(t, rec.Body.Bytes(), &got)
		if assert.Len(t, got, 2) {
			assert.Equal(t, sam.ID, got[0].ID)
			assert.Equal(t, eve.ID, got[1].ID)
		}
	})

	t.Run("unenroll", func(t *testing.T) {
		for i := 0; i < 2; i++ { // idempotent
			rec := httpTest{method: http.MethodDelete, path: enrollPath, token: samToken}.run(t, app)
			var got student.Student
			unmarchallObj(t, rec.Body.Bytes(), &got)
			assert.Empty(t, got.Courses)
		}
	})

	t.Run("delete student", func(t *testing.T) {
		path := fmt.Sprintf("/v1/students/%d", eve.ID)
		httpTest{method: http.MethodDelete, path: path, token: tinaToken, wantCode: http.StatusNoContent}.run(t, app)
		httpTest{path: path, token: tinaToken, wantCode: http.StatusNotFound}.run(t, app)

		_, err := env.Accounts.GetByID(context.Background(), eve.AccountID)
		assert.True(t, errors.Is(err, core.ErrNotFound), err)

		got, err := env.Courses.GetByID(context.Background(), tinaID, c.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Students)
	})
}
