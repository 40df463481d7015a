package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/department"
	"github.com/trezcool/academia/core/enrollment"
	"github.com/trezcool/academia/core/student"
	"github.com/trezcool/academia/core/teacher"
	emailsvc "github.com/trezcool/academia/services/email"
	logsvc "github.com/trezcool/academia/services/logger"
	"github.com/trezcool/academia/storage/database"
	dummydb "github.com/trezcool/academia/storage/database/dummy"
)

// Password satisfies the password policy for every fixture account.
const Password = "Acad3mia-Pwd"

// Env wires every core service to a fresh store.
type Env struct {
	DB         *dummydb.DB  // set by Setup
	PG         *database.DB // set by SetupPostgres
	Tx         core.Transactor
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Mail       core.EmailService

	AccountRepo    account.Repository
	DepartmentRepo department.Repository
	TeacherRepo    teacher.Repository
	StudentRepo    student.Repository
	CourseRepo     course.Repository
	EnrollmentRepo enrollment.Repository

	Accounts    *account.Service
	Departments *department.Service
	Teachers    *teacher.Service
	Students    *student.Service
	Courses     *course.Service
	Enrollments *enrollment.Service
}

func NewConfig() *core.Config {
	return &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Academia",
		SecretKey:        "test-secret-key",
		DefaultFromEmail: mail.Address{Name: "Academia", Address: "noreply@academia.test"},
		Server: core.ServerConfig{
			Addr:                      ":0",
			DisableReqLogs:            true,
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func NewValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	return validate
}

func newEnv() *Env {
	emailsvc.ResetSentMessages()

	conf := NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", 0), conf)
	logger.Enable(false)
	translator := NewTranslator()

	return &Env{
		Conf:       conf,
		Logger:     logger,
		Validate:   NewValidator(translator),
		Translator: translator,
		Mail:       emailsvc.NewConsoleServiceMock(conf),
	}
}

// wire builds the services once the repositories are set.
func (env *Env) wire(tx core.Transactor) {
	env.Tx = tx
	env.Accounts = account.NewService(tx, env.AccountRepo)
	env.Departments = department.NewService(tx, env.DepartmentRepo)
	env.Teachers = teacher.NewService(tx, env.TeacherRepo, env.Accounts, env.DepartmentRepo, env.Mail)
	env.Students = student.NewService(tx, env.StudentRepo, env.Accounts, env.DepartmentRepo, env.Mail)
	env.Courses = course.NewService(tx, env.CourseRepo, env.DepartmentRepo, env.TeacherRepo)
	env.Enrollments = enrollment.NewService(tx, env.EnrollmentRepo, env.StudentRepo, env.CourseRepo, env.Logger)
}

// Setup runs the services on the in-memory store.
func Setup(t *testing.T) *Env {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	env := newEnv()
	env.DB = db
	env.AccountRepo = dummydb.NewAccountRepository(db)
	env.DepartmentRepo = dummydb.NewDepartmentRepository(db)
	env.TeacherRepo = dummydb.NewTeacherRepository(db)
	env.StudentRepo = dummydb.NewStudentRepository(db)
	env.CourseRepo = dummydb.NewCourseRepository(db)
	env.EnrollmentRepo = dummydb.NewEnrollmentRepository(db)
	env.wire(db)
	return env
}

func (env *Env) createAccount(t *testing.T, uname string, role core.Role) account.Account {
	t.Helper()
	acc, err := env.Accounts.Create(context.Background(), account.NewAccount{
		Username:        uname,
		Email:           uname + "@academia.test",
		Password:        Password,
		PasswordConfirm: Password,
		Role:            role,
	})
	if err != nil {
		t.Fatalf("createAccount(%s) failed: %v", uname, err)
	}
	return acc
}

// CreateTeacher stores a Teacher and its account without going through authorization.
func (env *Env) CreateTeacher(t *testing.T, uname, code string, deptID ...int) (teacher.Teacher, core.Identity) {
	t.Helper()
	acc := env.createAccount(t, uname, core.RoleTeacher)

	now := time.Now().UTC()
	tchr := teacher.Teacher{
		AccountID:    acc.ID,
		FirstName:    "Teacher",
		LastName:     uname,
		EmployeeCode: code,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if len(deptID) > 0 {
		tchr.DepartmentID = null.IntFrom(deptID[0])
	}
	tchr, err := env.TeacherRepo.CreateTeacher(context.Background(), tchr)
	if err != nil {
		t.Fatalf("CreateTeacher(%s) failed: %v", uname, err)
	}
	return tchr, acc.Identity()
}

// CreateStudent stores a Student and its account without going through authorization.
func (env *Env) CreateStudent(t *testing.T, uname, code string, deptID ...int) (student.Student, core.Identity) {
	t.Helper()
	acc := env.createAccount(t, uname, core.RoleStudent)

	now := time.Now().UTC()
	s := student.Student{
		AccountID:   acc.ID,
		FirstName:   "Student",
		LastName:    uname,
		StudentCode: code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(deptID) > 0 {
		s.DepartmentID = null.IntFrom(deptID[0])
	}
	s, err := env.StudentRepo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent(%s) failed: %v", uname, err)
	}
	return s, acc.Identity()
}

func (env *Env) CreateDepartment(t *testing.T, name string) department.Department {
	t.Helper()
	now := time.Now().UTC()
	dept, err := env.DepartmentRepo.CreateDepartment(context.Background(), department.Department{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateDepartment(%s) failed: %v", name, err)
	}
	return dept
}

func (env *Env) CreateCourse(t *testing.T, code, name string, deptID, teacherID null.Int) course.Course {
	t.Helper()
	now := time.Now().UTC()
	c, err := env.CourseRepo.CreateCourse(context.Background(), course.Course{
		Code:         code,
		Name:         name,
		Credits:      3,
		DepartmentID: deptID,
		TeacherID:    teacherID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateCourse(%s) failed: %v", code, err)
	}
	return c
}

func (env *Env) Enroll(t *testing.T, studentID, courseID int) {
	t.Helper()
	if _, err := env.EnrollmentRepo.AddEnrollment(context.Background(), studentID, courseID); err != nil {
		t.Fatalf("Enroll(%d, %d) failed: %v", studentID, courseID, err)
	}
}
