package sqlxrepos

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/principal"
	"github.com/trezcool/academia/tests"
)

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	principals := NewPrincipalRepository(db)
	repo := NewCourseRepository(db)

	alice := testutil.CreatePrincipal(t, principals, principal.RoleProfessor, "alice", "pw1")
	carol := testutil.CreatePrincipal(t, principals, principal.RoleProfessor, "carol", "pw1")
	bob := testutil.CreatePrincipal(t, principals, principal.RoleStudent, "bob", "pw2", 2)
	dave := testutil.CreatePrincipal(t, principals, principal.RoleStudent, "dave", "pw2", 4)

	cs101 := testutil.CreateCourse(t, repo, alice.ID, "CS101", "oldpw")
	ma201 := testutil.CreateCourse(t, repo, carol.ID, "MA201", "pw")

	t.Run("name exists", func(t *testing.T) {
		exists, err := repo.NameExists(ctx, "CS101")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.NameExists(ctx, "CS999")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.CreateCourse(ctx, course.Course{ProfessorID: alice.ID, Name: "CS101", Semester: 1, Program: "CS", PasswordHash: "x"})
		require.Error(t, err)
		assert.True(t, core.IsDuplicate(err))
		assert.Equal(t, 2, testutil.Count(t, db, "courses", ""))
	})

	t.Run("unknown professor", func(t *testing.T) {
		_, err := repo.CreateCourse(ctx, course.Course{ProfessorID: 999, Name: "XX", Semester: 1, Program: "CS", PasswordHash: "x"})
		require.Error(t, err)
		_, ok := errors.Cause(err).(*core.IntegrityError)
		assert.True(t, ok)
		assert.False(t, core.IsDuplicate(err))
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetCourse(ctx, course.GetFilter{Name: "CS101"})
		require.NoError(t, err)
		assert.Equal(t, cs101, got)

		got, err = repo.GetCourse(ctx, course.GetFilter{ID: ma201.ID})
		require.NoError(t, err)
		assert.Equal(t, ma201, got)

		_, err = repo.GetCourse(ctx, course.GetFilter{Name: "nope"})
		assert.Equal(t, course.ErrNotFound, errors.Cause(err))

		_, err = repo.GetCourse(ctx, course.GetFilter{})
		assert.Equal(t, course.ErrNotFound, errors.Cause(err))
	})

	t.Run("query", func(t *testing.T) {
		got, err := repo.QueryCourses(ctx, course.QueryFilter{}, nil)
		require.NoError(t, err)
		assert.Equal(t, []course.Course{cs101, ma201}, got)

		got, err = repo.QueryCourses(ctx, course.QueryFilter{ProfessorID: carol.ID}, nil)
		require.NoError(t, err)
		assert.Equal(t, []course.Course{ma201}, got)

		got, err = repo.QueryCourses(ctx, course.QueryFilter{}, []core.DBOrdering{{Field: "name", Ascending: false}})
		require.NoError(t, err)
		assert.Equal(t, []course.Course{ma201, cs101}, got)
	})

	t.Run("inscriptions", func(t *testing.T) {
		ins, err := repo.CreateInscription(ctx, course.Inscription{StudentID: bob.ID, CourseID: cs101.ID})
		require.NoError(t, err)
		assert.NotZero(t, ins.ID)
		testutil.Enroll(t, repo, dave.ID, cs101.ID)
		testutil.Enroll(t, repo, bob.ID, ma201.ID)

		enrolled, err := repo.IsEnrolled(ctx, bob.ID, cs101.ID)
		require.NoError(t, err)
		assert.True(t, enrolled)
		enrolled, err = repo.IsEnrolled(ctx, dave.ID, ma201.ID)
		require.NoError(t, err)
		assert.False(t, enrolled)

		_, err = repo.CreateInscription(ctx, course.Inscription{StudentID: bob.ID, CourseID: cs101.ID})
		assert.True(t, core.IsDuplicate(err))
		assert.Equal(t, 1, testutil.Count(t, db, "inscriptions", "student_id = ? AND course_id = ?", bob.ID, cs101.ID))

		infos, err := repo.QueryStudentCourses(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, []course.CourseInfo{
			{CourseID: cs101.ID, CourseName: "CS101", Description: "CS101 course", Semester: 1, ProgramName: "Computer Science", ProfessorName: "alice"},
			{CourseID: ma201.ID, CourseName: "MA201", Description: "MA201 course", Semester: 1, ProgramName: "Computer Science", ProfessorName: "carol"},
		}, infos)

		students, err := repo.QueryCourseStudents(ctx, cs101.ID)
		require.NoError(t, err)
		assert.Equal(t, []course.StudentInfo{
			{StudentID: bob.ID, Name: "bob", FullName: "bob Doe", Semester: 2},
			{StudentID: dave.ID, Name: "dave", FullName: "dave Doe", Semester: 4},
		}, students)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, cs101.ID, "hash"))
		got, err := repo.GetCourse(ctx, course.GetFilter{ID: cs101.ID})
		require.NoError(t, err)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.Equal(t, course.ErrNotFound, repo.UpdatePassword(ctx, 999, "hash"))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteInscriptions(ctx, ma201.ID))
		require.NoError(t, repo.DeleteCourse(ctx, ma201.ID))
		assert.Equal(t, 0, testutil.Count(t, db, "inscriptions", "course_id = ?", ma201.ID))
		assert.Equal(t, course.ErrNotFound, repo.DeleteCourse(ctx, ma201.ID))
	})
}
