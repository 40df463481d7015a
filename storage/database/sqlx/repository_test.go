package sqlxrepos_test

import (
	"context"
	"sync"
	"testing"
	"time"

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

var errBoom = errors.New("boom")

func newAccount(t *testing.T, env *testutil.Env, uname string) account.Account {
	t.Helper()
	acc, err := env.Accounts.Create(context.Background(), account.NewAccount{
		Username:        uname,
		Email:           uname + "@academia.test",
		Password:        testutil.Password,
		PasswordConfirm: testutil.Password,
		Role:            core.RoleStudent,
	})
	require.NoError(t, err)
	return acc
}

func TestUniqueConstraints(t *testing.T) {
	env := testutil.SetupPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC()

	dept := env.CreateDepartment(t, "CSE")
	tchr, _ := env.CreateTeacher(t, "tina", "EMP-1")
	sam, _ := env.CreateStudent(t, "sam", "STU-1")
	c := env.CreateCourse(t, "CS101", "Programming", null.Int{}, null.Int{})
	samAcc, err := env.Accounts.GetByID(ctx, sam.AccountID)
	require.NoError(t, err)
	_ = newAccount(t, env, "bob")

	tests := []struct {
		name    string
		create  func() error
		wantErr error
	}{
		{
			name: "accounts_username_key",
			create: func() error {
				acc := samAcc
				acc.Email = "other@academia.test"
				_, err := env.AccountRepo.CreateAccount(ctx, acc)
				return err
			},
			wantErr: account.ErrUsernameExists,
		},
		{
			name: "accounts_email_key",
			create: func() error {
				acc := samAcc
				acc.Username = "other"
				_, err := env.AccountRepo.CreateAccount(ctx, acc)
				return err
			},
			wantErr: account.ErrEmailExists,
		},
		{
			name:    "username reported before email",
			create:  func() error { return env.AccountRepo.CheckUniqueness(ctx, "sam", "bob@academia.test") },
			wantErr: account.ErrUsernameExists,
		},
		{
			name: "departments_name_key",
			create: func() error {
				_, err := env.DepartmentRepo.CreateDepartment(ctx, department.Department{Name: dept.Name, CreatedAt: now, UpdatedAt: now})
				return err
			},
			wantErr: department.ErrNameExists,
		},
		{
			name: "teachers_employee_code_key",
			create: func() error {
				dup := tchr
				dup.AccountID = newAccount(t, env, "tom").ID
				_, err := env.TeacherRepo.CreateTeacher(ctx, dup)
				return err
			},
			wantErr: teacher.ErrEmployeeCodeExists,
		},
		{
			name: "students_student_code_key",
			create: func() error {
				dup := sam
				dup.AccountID = newAccount(t, env, "eve").ID
				_, err := env.StudentRepo.CreateStudent(ctx, dup)
				return err
			},
			wantErr: student.ErrStudentCodeExists,
		},
		{
			name: "courses_code_key",
			create: func() error {
				_, err := env.CourseRepo.CreateCourse(ctx, c)
				return err
			},
			wantErr: course.ErrCodeExists,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.create()
			assert.True(t, errors.Is(err, tc.wantErr), err)
			assert.True(t, errors.Is(err, core.ErrDuplicateKey), err)
		})
	}
}

func TestEnrollmentRepository(t *testing.T) {
	env := testutil.SetupPostgres(t)
	ctx := context.Background()
	sam, _ := env.CreateStudent(t, "sam", "STU-1")
	cs101 := env.CreateCourse(t, "CS101", "Programming", null.Int{}, null.Int{})
	cs102 := env.CreateCourse(t, "CS102", "Algorithms", null.Int{}, null.Int{})

	for _, c := range []course.Course{cs102, cs101} {
		added, err := env.EnrollmentRepo.AddEnrollment(ctx, sam.ID, c.ID)
		require.NoError(t, err)
		assert.True(t, added)
	}
	added, err := env.EnrollmentRepo.AddEnrollment(ctx, sam.ID, cs101.ID)
	require.NoError(t, err)
	assert.False(t, added)

	ids, err := env.EnrollmentRepo.QueryCourseIDs(ctx, sam.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{cs101.ID, cs102.ID}, ids)

	got, err := env.StudentRepo.GetStudentByID(ctx, sam.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{cs101.ID, cs102.ID}, got.Courses)

	gotCourse, err := env.CourseRepo.GetCourseByID(ctx, cs101.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{sam.ID}, gotCourse.Students)

	removed, err := env.EnrollmentRepo.RemoveEnrollment(ctx, sam.ID, cs101.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = env.EnrollmentRepo.RemoveEnrollment(ctx, sam.ID, cs101.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	ids, err = env.EnrollmentRepo.QueryStudentIDs(ctx, cs101.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteDetaches(t *testing.T) {
	env := testutil.SetupPostgres(t)
	ctx := context.Background()
	dept := env.CreateDepartment(t, "CSE")
	tina, _ := env.CreateTeacher(t, "tina", "EMP-1", dept.ID)
	sam, _ := env.CreateStudent(t, "sam", "STU-1", dept.ID)
	c := env.CreateCourse(t, "CS101", "Programming", null.IntFrom(dept.ID), null.IntFrom(tina.ID))
	env.Enroll(t, sam.ID, c.ID)

	t.Run("department", func(t *testing.T) {
		require.NoError(t, env.DepartmentRepo.DeleteDepartment(ctx, dept.ID))

		gotTeacher, err := env.TeacherRepo.GetTeacherByID(ctx, tina.ID)
		require.NoError(t, err)
		assert.False(t, gotTeacher.DepartmentID.Valid)
		gotStudent, err := env.StudentRepo.GetStudentByID(ctx, sam.ID)
		require.NoError(t, err)
		assert.False(t, gotStudent.DepartmentID.Valid)
		gotCourse, err := env.CourseRepo.GetCourseByID(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, gotCourse.DepartmentID.Valid)

		err = env.DepartmentRepo.DeleteDepartment(ctx, dept.ID)
		assert.True(t, errors.Is(err, core.ErrNotFound), err)
	})

	t.Run("teacher", func(t *testing.T) {
		require.NoError(t, env.TeacherRepo.DeleteTeacher(ctx, tina.ID))

		gotCourse, err := env.CourseRepo.GetCourseByID(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, gotCourse.TeacherID.Valid)
		assert.Equal(t, []int{sam.ID}, gotCourse.Students)
	})

	t.Run("course", func(t *testing.T) {
		require.NoError(t, env.CourseRepo.DeleteCourse(ctx, c.ID))

		ids, err := env.EnrollmentRepo.QueryCourseIDs(ctx, sam.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("student", func(t *testing.T) {
		other := env.CreateCourse(t, "CS102", "Algorithms", null.Int{}, null.Int{})
		env.Enroll(t, sam.ID, other.ID)
		require.NoError(t, env.StudentRepo.DeleteStudent(ctx, sam.ID))

		ids, err := env.EnrollmentRepo.QueryStudentIDs(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)

		err = env.StudentRepo.DeleteStudent(ctx, sam.ID)
		assert.True(t, errors.Is(err, core.ErrNotFound), err)
	})
}

func TestRunInTx(t *testing.T) {
	env := testutil.SetupPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC()

	err := env.PG.RunInTx(ctx, func(ctx context.Context) error {
		_, err := env.DepartmentRepo.CreateDepartment(ctx, department.Department{Name: "Tmp", CreatedAt: now, UpdatedAt: now})
		require.NoError(t, err)

		// nested calls join the transaction and see its writes
		err = env.PG.RunInTx(ctx, func(ctx context.Context) error {
			_, err := env.DepartmentRepo.GetDepartmentByName(ctx, "Tmp")
			return err
		})
		require.NoError(t, err)
		return errBoom
	})
	assert.True(t, errors.Is(err, errBoom), err)

	_, err = env.DepartmentRepo.GetDepartmentByName(ctx, "Tmp")
	assert.True(t, errors.Is(err, core.ErrNotFound), err)

	t.Run("registration rolls back with the caller", func(t *testing.T) {
		_, headID := env.CreateTeacher(t, "head", "EMP-1")
		err := env.PG.RunInTx(ctx, func(ctx context.Context) error {
			_, err := env.Students.Register(ctx, headID, student.NewStudent{
				NewAccount: account.NewAccount{
					Username:        "ada",
					Email:           "ada@academia.test",
					Password:        testutil.Password,
					PasswordConfirm: testutil.Password,
				},
				FirstName:   "Ada",
				LastName:    "Lovelace",
				StudentCode: "STU-9",
			})
			require.NoError(t, err)
			return errBoom
		})
		assert.True(t, errors.Is(err, errBoom), err)

		_, err = env.Accounts.GetByUsername(ctx, "ada")
		assert.True(t, errors.Is(err, core.ErrNotFound), err)
		_, err = env.StudentRepo.GetStudentByStudentCode(ctx, "STU-9")
		assert.True(t, errors.Is(err, core.ErrNotFound), err)
	})
}

func TestConcurrentEnroll(t *testing.T) {
	env := testutil.SetupPostgres(t)
	ctx := context.Background()
	_, headID := env.CreateTeacher(t, "head", "EMP-1")
	sam, _ := env.CreateStudent(t, "sam", "STU-1")
	c := env.CreateCourse(t, "CS101", "Programming", null.Int{}, null.Int{})

	const n = 4
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = env.Enrollments.Enroll(ctx, headID, sam.ID, c.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, core.ErrStoreConflict), err)
	}
	assert.GreaterOrEqual(t, succeeded, 1)

	ids, err := env.EnrollmentRepo.QueryStudentIDs(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{sam.ID}, ids)
}

func TestScenario(t *testing.T) {
	env := testutil.SetupPostgres(t)
	ctx := context.Background()
	_, headID := env.CreateTeacher(t, "head", "EMP-1")

	cse, err := env.Departments.Create(ctx, headID, department.NewDepartment{Name: "CSE"})
	require.NoError(t, err)

	grace, err := env.Teachers.Register(ctx, headID, teacher.NewTeacher{
		NewAccount: account.NewAccount{
			Username:        "grace",
			Email:           "grace@academia.test",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		},
		FirstName:    "Grace",
		LastName:     "Hopper",
		EmployeeCode: "EMP-2",
		DepartmentID: null.IntFrom(cse.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, null.IntFrom(cse.ID), grace.DepartmentID)

	cs101, err := env.Courses.Create(ctx, headID, course.NewCourse{
		Code:         "CS101",
		Name:         "Programming",
		Credits:      3,
		DepartmentID: null.IntFrom(cse.ID),
		TeacherID:    null.IntFrom(grace.ID),
	})
	require.NoError(t, err)
	assert.Empty(t, cs101.Students)

	sam, samID := env.CreateStudent(t, "sam", "STU-1", cse.ID)
	got, err := env.Enrollments.Enroll(ctx, samID, sam.ID, cs101.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{cs101.ID}, got.Courses)

	courses, err := env.Enrollments.CoursesOf(ctx, samID, sam.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, []int{sam.ID}, courses[0].Students)

	updated, err := env.Courses.Update(ctx, headID, cs101.ID, course.UpdateCourse{TeacherID: core.OptionalNull()})
	require.NoError(t, err)
	assert.False(t, updated.TeacherID.Valid)
	assert.Equal(t, null.IntFrom(cse.ID), updated.DepartmentID)
}
