// Package dummydb is an in-memory store for tests.
// It honours the core.Transactor contract: one transaction at a time, rolled back on error.
package dummydb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/department"
	"github.com/trezcool/academia/core/student"
	"github.com/trezcool/academia/core/teacher"
)

type (
	DB struct {
		mu   sync.Mutex
		data *tables
	}

	enrollmentKey struct {
		studentID int
		courseID  int
	}

	tables struct {
		accounts    map[int]account.Account
		departments map[int]department.Department
		teachers    map[int]teacher.Teacher
		students    map[int]student.Student
		courses     map[int]course.Course
		enrollments map[enrollmentKey]time.Time
		pkCounts    map[string]int
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil)

func Open() (*DB, error) {
	return &DB{data: newTables()}, nil
}

func newTables() *tables {
	return &tables{
		accounts:    make(map[int]account.Account),
		departments: make(map[int]department.Department),
		teachers:    make(map[int]teacher.Teacher),
		students:    make(map[int]student.Student),
		courses:     make(map[int]course.Course),
		enrollments: make(map[enrollmentKey]time.Time),
		pkCounts:    make(map[string]int),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	for k, v := range t.departments {
		c.departments[k] = v
	}
	for k, v := range t.teachers {
		c.teachers[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.courses {
		c.courses[k] = v
	}
	for k, v := range t.enrollments {
		c.enrollments[k] = v
	}
	for k, v := range t.pkCounts {
		c.pkCounts[k] = v
	}
	return c
}

func (t *tables) nextID(table string) int {
	t.pkCounts[table]++
	return t.pkCounts[table]
}

// RunInTx holds the DB lock for the whole of fn and restores the previous state if fn fails.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, db)); err != nil {
		db.data = snapshot
		return err
	}
	return nil
}

// Reset drops all the data.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data = newTables()
}

func (db *DB) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*DB)
	return ok && owner == db
}

// lock is a no-op inside a transaction, which already holds the lock.
func (db *DB) lock(ctx context.Context) func() {
	if db.inTx(ctx) {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

func (db *DB) courseIDsOf(studentID int) []int {
	ids := make([]int, 0)
	for k := range db.data.enrollments {
		if k.studentID == studentID {
			ids = append(ids, k.courseID)
		}
	}
	sort.Ints(ids)
	return ids
}

func (db *DB) studentIDsOf(courseID int) []int {
	ids := make([]int, 0)
	for k := range db.data.enrollments {
		if k.courseID == courseID {
			ids = append(ids, k.studentID)
		}
	}
	sort.Ints(ids)
	return ids
}

func sortedIDs[T any](table map[int]T) []int {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
