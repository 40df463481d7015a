package department_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/department"
	"github.com/trezcool/academia/tests"
)

func TestService_Create(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	_, teacherID := env.CreateTeacher(t, "tina", "EMP-1")
	_, studentID := env.CreateStudent(t, "sam", "STU-1")

	dept, err := env.Departments.Create(ctx, teacherID, department.NewDepartment{Name: "CSE", Description: "Computer Science"})
	require.NoError(t, err)
	assert.NotZero(t, dept.ID)
	assert.Equal(t, "CSE", dept.Name)

	tests := []struct {
		name    string
		caller  core.Identity
		data    department.NewDepartment
		wantErr error
	}{
		{name: "student is forbidden", caller: studentID, data: department.NewDepartment{Name: "EEE"}, wantErr: core.ErrForbidden},
		{name: "duplicate name", caller: teacherID, data: department.NewDepartment{Name: "CSE"}, wantErr: department.ErrNameExists},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Departments.Create(ctx, tc.caller, tc.data)
			assert.True(t, errors.Is(err, tc.wantErr), err)
		})
	}

	depts, err := env.Departments.QueryAll(ctx, teacherID)
	require.NoError(t, err)
	assert.Len(t, depts, 1)
}

func TestService_Update(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	_, teacherID := env.CreateTeacher(t, "tina", "EMP-1")
	dept := env.CreateDepartment(t, "CSE")

	desc := "Computer Science & Engineering"
	got, err := env.Departments.Update(ctx, teacherID, dept.ID, department.UpdateDepartment{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "CSE", got.Name)
	assert.Equal(t, desc, got.Description)

	// nothing to change
	got, err = env.Departments.Update(ctx, teacherID, dept.ID, department.UpdateDepartment{})
	require.NoError(t, err)
	assert.Equal(t, desc, got.Description)

	_, err = env.Departments.Update(ctx, teacherID, dept.ID+100, department.UpdateDepartment{Description: &desc})
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
}

func TestService_Delete(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	dept := env.CreateDepartment(t, "CSE")
	tchr, teacherID := env.CreateTeacher(t, "tina", "EMP-1", dept.ID)
	s, _ := env.CreateStudent(t, "sam", "STU-1", dept.ID)
	c := env.CreateCourse(t, "CS101", "Programming", null.IntFrom(dept.ID), null.IntFrom(tchr.ID))

	require.NoError(t, env.Departments.Delete(ctx, teacherID, dept.ID))

	_, err := env.Departments.GetByID(ctx, teacherID, dept.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound), err)

	// references are detached, nothing else is deleted
	gotTeacher, err := env.Teachers.GetByID(ctx, teacherID, tchr.ID)
	require.NoError(t, err)
	assert.False(t, gotTeacher.DepartmentID.Valid)

	gotStudent, err := env.Students.GetByID(ctx, teacherID, s.ID)
	require.NoError(t, err)
	assert.False(t, gotStudent.DepartmentID.Valid)

	gotCourse, err := env.Courses.GetByID(ctx, teacherID, c.ID)
	require.NoError(t, err)
	assert.False(t, gotCourse.DepartmentID.Valid)
	assert.Equal(t, null.IntFrom(tchr.ID), gotCourse.TeacherID)

	err = env.Departments.Delete(ctx, teacherID, dept.ID)
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
}
