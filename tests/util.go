package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/coursework"
	"github.com/trezcool/academia/core/principal"
	"github.com/trezcool/academia/storage/database"
)

// PrepareDB opens a fresh, migrated sqlite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, core.DatabaseConfig{
		Engine: database.EngineSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(ctx, db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreatePrincipal(t *testing.T, repo principal.Repository, role principal.Role, uname, pwd string, semester ...int) principal.Principal {
	t.Helper()
	p := principal.Principal{
		Role:     role,
		Username: uname,
		Name:     uname,
		FullName: uname + " Doe",
	}
	if role == principal.RoleStudent {
		sem := 1
		if len(semester) > 0 {
			sem = semester[0]
		}
		p.Semester = null.IntFrom(sem)
	}
	if err := p.SetPassword(pwd); err != nil {
		t.Fatalf("CreatePrincipal() failed: %v", err)
	}
	p, err := repo.CreatePrincipal(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePrincipal() failed: %v", err)
	}
	return p
}

func CreateCourse(t *testing.T, repo course.Repository, professorID int, name, pwd string) course.Course {
	t.Helper()
	c := course.Course{
		ProfessorID: professorID,
		Name:        name,
		Description: name + " course",
		Semester:    1,
		Program:     "Computer Science",
	}
	if err := c.SetPassword(pwd); err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	c, err := repo.CreateCourse(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func Enroll(t *testing.T, repo course.Repository, studentID, courseID int) course.Inscription {
	t.Helper()
	ins, err := repo.CreateInscription(context.Background(), course.Inscription{StudentID: studentID, CourseID: courseID})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return ins
}

func CreateTask(t *testing.T, repo coursework.Repository, courseID int, name string) coursework.Task {
	t.Helper()
	start := time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC)
	task, err := repo.CreateTask(context.Background(), coursework.Task{
		CourseID:       courseID,
		Name:           name,
		StartDate:      start,
		EndDate:        start.Add(7 * 24 * time.Hour),
		UniqueFilename: name + ".pdf",
		Active:         true,
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return task
}

// Count returns the number of rows of table matching where (e.g. "course_id = ?").
func Count(t *testing.T, db *sqlx.DB, table, where string, args ...interface{}) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := db.Get(&n, db.Rebind(q), args...); err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	return n
}
