package testutil

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"

	"github.com/trezcool/academia/storage/database"
	sqlxrepos "github.com/trezcool/academia/storage/database/sqlx"
)

const truncateAll = "TRUNCATE enrollments, courses, students, teachers, departments, accounts RESTART IDENTITY CASCADE"

// OpenDB connects to the PostgreSQL database named by $TEST_DATABASE_URL, migrates it and empties it.
// The test is skipped when no database is configured.
func OpenDB(t *testing.T) *database.DB {
	t.Helper()

	v := viper.New()
	v.SetEnvPrefix("TEST")
	v.AutomaticEnv()
	url := v.GetString("DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := sqlx.Open("postgres", url)
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	db := &database.DB{DB: conn}
	t.Cleanup(func() { _ = db.Close() })

	if err = db.Ping(); err != nil {
		t.Fatalf("OpenDB() ping failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("OpenDB() migrate failed: %v", err)
	}
	if _, err = db.Exec(truncateAll); err != nil {
		t.Fatalf("OpenDB() truncate failed: %v", err)
	}
	return db
}

// SetupPostgres runs the services on the sqlx repositories.
// Tests using it must not run in parallel: they share one database.
func SetupPostgres(t *testing.T) *Env {
	t.Helper()

	db := OpenDB(t)
	env := newEnv()
	env.PG = db
	env.AccountRepo = sqlxrepos.NewAccountRepository(db)
	env.DepartmentRepo = sqlxrepos.NewDepartmentRepository(db)
	env.TeacherRepo = sqlxrepos.NewTeacherRepository(db)
	env.StudentRepo = sqlxrepos.NewStudentRepository(db)
	env.CourseRepo = sqlxrepos.NewCourseRepository(db)
	env.EnrollmentRepo = sqlxrepos.NewEnrollmentRepository(db)
	env.wire(db)
	return env
}
