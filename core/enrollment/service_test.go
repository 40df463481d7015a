package enrollment_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/department"
	"github.com/trezcool/academia/core/student"
	"github.com/trezcool/academia/core/teacher"
	"github.com/trezcool/academia/tests"
)

func TestService_Enroll(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	_, teacherID := env.CreateTeacher(t, "tina", "EMP-1")
	sam, samID := env.CreateStudent(t, "sam", "STU-1")
	eve, _ := env.CreateStudent(t, "eve", "STU-2")
	c := env.CreateCourse(t, "CS101", "Programming", null.Int{}, null.Int{})

	s, err := env.Enrollments.Enroll(ctx, samID, sam.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{c.ID}, s.Courses)

	// enrolling twice is a no-op
	s, err = env.Enrollments.Enroll(ctx, teacherID, sam.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{c.ID}, s.Courses)

	got, err := env.Courses.GetByID(ctx, samID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{sam.ID}, got.Students)

	tests := []struct {
		name      string
		caller    core.Identity
		studentID int
		courseID  int
		wantErr   error
	}{
		{name: "other student", caller: samID, studentID: eve.ID, courseID: c.ID, wantErr: core.ErrForbidden},
		{name: "unknown course", caller: samID, studentID: sam.ID, courseID: c.ID + 100, wantErr: course.ErrNotFound},
		{name: "unknown student", caller: teacherID, studentID: eve.ID + 100, courseID: c.ID, wantErr: student.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Enrollments.Enroll(ctx, tc.caller, tc.studentID, tc.courseID)
			assert.True(t, errors.Is(err, tc.wantErr), err)

			var nfErr *core.NotFoundError
			if errors.As(tc.wantErr, &nfErr) {
				assert.True(t, errors.As(err, &nfErr))
				assert.Equal(t, tc.wantErr.Error(), nfErr.Error())
			}
		})
	}
}

func TestService_Unenroll(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	sam, samID := env.CreateStudent(t, "sam", "STU-1")
	c1 := env.CreateCourse(t, "CS101", "Programming", null.Int{}, null.Int{})
	c2 := env.CreateCourse(t, "CS102", "Algorithms", null.Int{}, null.Int{})
	env.Enroll(t, sam.ID, c1.ID)
	env.Enroll(t, sam.ID, c2.ID)

	s, err := env.Enrollments.Unenroll(ctx, samID, sam.ID, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{c2.ID}, s.Courses)

	// not enrolled anymore, still fine
	s, err = env.Enrollments.Unenroll(ctx, samID, sam.ID, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{c2.ID}, s.Courses)

	_, err = env.Enrollments.Unenroll(ctx, samID, sam.ID, c2.ID+100)
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
}

func TestService_CoursesOf_StudentsOf(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	_, teacherID := env.CreateTeacher(t, "tina", "EMP-1")
	sam, samID := env.CreateStudent(t, "sam", "STU-1")
	eve, _ := env.CreateStudent(t, "eve", "STU-2")
	c1 := env.CreateCourse(t, "CS101", "Programming", null.Int{}, null.Int{})
	c2 := env.CreateCourse(t, "CS102", "Algorithms", null.Int{}, null.Int{})
	env.Enroll(t, sam.ID, c1.ID)
	env.Enroll(t, sam.ID, c2.ID)
	env.Enroll(t, eve.ID, c1.ID)

	courses, err := env.Enrollments.CoursesOf(ctx, samID, sam.ID)
	require.NoError(t, err)
	if assert.Len(t, courses, 2) {
		assert.Equal(t, c1.ID, courses[0].ID)
		assert.Equal(t, c2.ID, courses[1].ID)
	}

	_, err = env.Enrollments.CoursesOf(ctx, samID, eve.ID)
	assert.True(t, errors.Is(err, core.ErrForbidden), err)

	students, err := env.Enrollments.StudentsOf(ctx, teacherID, c1.ID)
	require.NoError(t, err)
	if assert.Len(t, students, 2) {
		assert.Equal(t, sam.ID, students[0].ID)
		assert.Equal(t, eve.ID, students[1].ID)
	}

	_, err = env.Enrollments.StudentsOf(ctx, samID, c1.ID)
	assert.True(t, errors.Is(err, core.ErrForbidden), err)

	_, err = env.Enrollments.StudentsOf(ctx, teacherID, c2.ID+100)
	assert.True(t, errors.Is(err, core.ErrNotFound), err)
}

// A department head registers a teacher and a student, opens a course and
// the student enrolls in it through their own account.
func TestScenario(t *testing.T) {
	env := testutil.Setup(t)
	ctx := context.Background()
	_, headID := env.CreateTeacher(t, "head", "EMP-0")

	cse, err := env.Departments.Create(ctx, headID, department.NewDepartment{Name: "CSE", Description: "Computer Science"})
	require.NoError(t, err)

	tina, err := env.Teachers.Register(ctx, headID, teacher.NewTeacher{
		NewAccount: account.NewAccount{
			Username:        "tina",
			Email:           "tina@academia.test",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		},
		FirstName:    "Tina",
		LastName:     "Turing",
		EmployeeCode: "EMP-1",
		DepartmentID: null.IntFrom(cse.ID),
	})
	require.NoError(t, err)

	ada, err := env.Students.Register(ctx, headID, student.NewStudent{
		NewAccount: account.NewAccount{
			Username:        "ada",
			Email:           "ada@academia.test",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		},
		FirstName:    "Ada",
		LastName:     "Lovelace",
		StudentCode:  "STU-1",
		DepartmentID: null.IntFrom(cse.ID),
	})
	require.NoError(t, err)

	cs101, err := env.Courses.Create(ctx, headID, course.NewCourse{
		Code:         "CS101",
		Name:         "Programming",
		Credits:      3,
		DepartmentID: null.IntFrom(cse.ID),
		TeacherID:    null.IntFrom(tina.ID),
	})
	require.NoError(t, err)

	acc, err := env.Accounts.Authenticate(ctx, "ada", testutil.Password)
	require.NoError(t, err)
	adaID := acc.Identity()

	s, err := env.Enrollments.Enroll(ctx, adaID, ada.ID, cs101.ID)
	require.NoError(t, err)
	assert.True(t, s.IsEnrolledIn(cs101.ID))

	students, err := env.Students.QueryByDepartment(ctx, headID, cse.ID)
	require.NoError(t, err)
	assert.Len(t, students, 1)

	teachers, err := env.Teachers.QueryByDepartment(ctx, headID, cse.ID)
	require.NoError(t, err)
	assert.Len(t, teachers, 1)

	courses, err := env.Courses.QueryByTeacher(ctx, adaID, tina.ID)
	require.NoError(t, err)
	if assert.Len(t, courses, 1) {
		assert.Equal(t, []int{ada.ID}, courses[0].Students)
	}
}
