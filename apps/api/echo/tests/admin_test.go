package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/principal"
	"github.com/trezcool/academia/tests"
)

func Test_adminApi_principals(t *testing.T) {
	e := setup(t)
	admin := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleAdmin, "root", "pw")
	alice := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleProfessor, "alice", "pw1")
	bob := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleStudent, "bob", "pw2", 3)
	token := getToken(t, e.tokens, admin)

	tests := []httpTest{
		{name: "list users", path: "/admin/users", token: token, wantData: marchallList(t, alice, bob)},
		{name: "list users (ordering)", path: "/admin/users?ordering=-username", token: token, wantData: marchallList(t, bob, alice)},
		{name: "list users (unknown ordering)", path: "/admin/users?ordering=password_hash", token: token, wantData: marchallList(t, alice, bob)},
		{
			name: "create professor (duplicate)", method: http.MethodPost, path: "/admin/professors", token: token,
			body:     []byte(`{"username": "ALICE", "name": "Alice", "password": "pw"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Username already exists."}),
		},
		{
			name: "create professor (username taken by a student)", method: http.MethodPost, path: "/admin/professors", token: token,
			body:     []byte(`{"username": "bob", "name": "Bob", "password": "pw"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Username already exists."}),
		},
		{
			name: "create professor (invalid)", method: http.MethodPost, path: "/admin/professors", token: token,
			body:     []byte(`{"username": "a-b", "password": "pw"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error": {
				"username": "only alphanumeric characters and underscores are allowed",
				"name": "this field is required"
			}}`),
		},
		{
			name: "create professor (semester)", method: http.MethodPost, path: "/admin/professors", token: token,
			body:     []byte(`{"username": "dan", "name": "Dan", "password": "pw", "semester": 2}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"error": {"semester": "only students have a semester"}}`),
		},
		{
			name: "create student (no semester)", method: http.MethodPost, path: "/admin/students", token: token,
			body:     []byte(`{"username": "eve", "name": "Eve", "password": "pw"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"error": {"semester": "this field is required"}}`),
		},
		{
			name: "student courses (unknown)", path: "/admin/students/zed/courses", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found."}),
		},
		{
			name: "student courses (professor username)", path: "/admin/students/alice/courses", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found."}),
		},
		{name: "student courses (none)", path: "/admin/students/bob/courses", token: token, wantData: marchallList(t)},
	}

	for _, tt := range tests {
		tt.run(t, e.app)
	}

	t.Run("create professor", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/admin/professors", token,
			[]byte(`{"username": " Carol ", "name": "Carol", "full_name": "Carol Doe", "password": "pw3"}`))
		e.app.ServeHTTP(rec, req)

		carol, err := e.principalRepo.GetPrincipal(context.Background(), principal.GetFilter{Username: "carol"})
		require.NoError(t, err)
		assert.Equal(t, principal.RoleProfessor, carol.Role)
		assert.False(t, carol.Semester.Valid)
		assert.True(t, carol.CheckPassword("pw3"))
		checkCodeAndData(t, httpTest{wantData: marchallObj(t, carol)}, rec)
	})

	t.Run("create student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/admin/students", token,
			[]byte(`{"username": "dave", "name": "Dave", "password": "pw4", "semester": 5}`))
		e.app.ServeHTTP(rec, req)

		dave, err := e.principalRepo.GetPrincipal(context.Background(), principal.GetFilter{Username: "dave", Role: principal.RoleStudent})
		require.NoError(t, err)
		assert.Equal(t, 5, dave.Semester.Int)
		checkCodeAndData(t, httpTest{wantData: marchallObj(t, dave)}, rec)
	})
}

func Test_adminApi_courses(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	admin := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleAdmin, "root", "pw")
	alice := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleProfessor, "alice", "pw1")
	bob := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleStudent, "bob", "pw2")
	cs101 := testutil.CreateCourse(t, e.courseRepo, alice.ID, "CS101", "oldpw")
	token := getToken(t, e.tokens, admin)

	newCourse := func(name string, professorID int) []byte {
		return marchallObj(t, course.NewCourse{
			ProfessorID: professorID,
			Name:        name,
			Semester:    2,
			Program:     "Mathematics",
			Password:    "pw",
		})
	}

	tests := []httpTest{
		{name: "list courses", path: "/admin/courses", token: token, wantData: marchallList(t, cs101)},
		{
			name: "create course (duplicate name)", method: http.MethodPost, path: "/admin/courses", token: token,
			body:     newCourse("CS101", alice.ID),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Name already exists."}),
		},
		{
			name: "create course (unknown professor)", method: http.MethodPost, path: "/admin/courses", token: token,
			body:     newCourse("MA201", 999),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Professor ID not found."}),
		},
		{
			name: "create course (student as professor)", method: http.MethodPost, path: "/admin/courses", token: token,
			body:     newCourse("MA201", bob.ID),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Professor ID not found."}),
		},
		{
			name: "create course (invalid)", method: http.MethodPost, path: "/admin/courses", token: token,
			body:     []byte(`{"professor_id": 1, "name": "MA201", "semester": 2, "program": "Mathematics"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"error": {"password": "this field is required"}}`),
		},
		{
			name: "inscription (unknown student)", method: http.MethodPost, path: "/admin/inscriptions", token: token,
			body:     marchallObj(t, course.NewInscription{StudentID: 999, CourseID: cs101.ID}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found."}),
		},
		{
			name: "inscription (unknown course)", method: http.MethodPost, path: "/admin/inscriptions", token: token,
			body:     marchallObj(t, course.NewInscription{StudentID: bob.ID, CourseID: 999}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found."}),
		},
		{
			name: "course password (unknown course)", method: http.MethodPut, path: "/admin/courses/CS999/password", token: token,
			body:     []byte(`{"password": "pw"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found."}),
		},
		{
			name: "delete course (unknown course)", method: http.MethodDelete, path: "/admin/courses/CS999", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found."}),
		},
	}

	for _, tt := range tests {
		tt.run(t, e.app)
	}
	assert.Equal(t, 1, testutil.Count(t, e.db, "courses", ""))
	assert.Equal(t, 0, testutil.Count(t, e.db, "inscriptions", ""))

	t.Run("create course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/admin/courses", token, newCourse("MA201", alice.ID))
		e.app.ServeHTTP(rec, req)

		ma201, err := e.courseRepo.GetCourse(ctx, course.GetFilter{Name: "MA201"})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, ma201.ProfessorID)
		assert.True(t, ma201.CheckPassword("pw"))
		checkCodeAndData(t, httpTest{wantData: marchallObj(t, ma201)}, rec)
	})

	t.Run("inscription", func(t *testing.T) {
		body := marchallObj(t, course.NewInscription{StudentID: bob.ID, CourseID: cs101.ID})

		req, rec := newAuthRequest(http.MethodPost, "/admin/inscriptions", token, body)
		e.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, testutil.Count(t, e.db, "inscriptions", "student_id = ? AND course_id = ?", bob.ID, cs101.ID))

		req, rec = newAuthRequest(http.MethodPost, "/admin/inscriptions", token, body)
		e.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "The student is already enrolled in this course."}),
		}, rec)
		assert.Equal(t, 1, testutil.Count(t, e.db, "inscriptions", ""))
	})

	t.Run("student courses", func(t *testing.T) {
		httpTest{
			name: "bob", path: "/admin/students/bob/courses", token: token,
			wantData: marchallList(t, course.CourseInfo{
				CourseID:      cs101.ID,
				CourseName:    "CS101",
				Description:   "CS101 course",
				Semester:      1,
				ProgramName:   "Computer Science",
				ProfessorName: "alice",
			}),
		}.run(t, e.app)
	})

	t.Run("course password", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/admin/courses/CS101/password", token, []byte(`{"password": "adminpw"}`))
		e.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantData: detail(t, "Password of the course CS101 updated.")}, rec)

		crs, err := e.courseRepo.GetCourse(ctx, course.GetFilter{ID: cs101.ID})
		require.NoError(t, err)
		assert.True(t, crs.CheckPassword("adminpw"))
	})

	t.Run("delete course", func(t *testing.T) {
		task := testutil.CreateTask(t, e.courseworkRepo, cs101.ID, "hw1")
		_, err := e.db.Exec(e.db.Rebind("INSERT INTO notes (task_id, student_id, note) VALUES (?, ?, ?)"), task.ID, bob.ID, 8.5)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodDelete, "/admin/courses/CS101", token)
		e.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantData: detail(t, "Course 'CS101' deleted.")}, rec)

		assert.Equal(t, 0, testutil.Count(t, e.db, "courses", "id = ?", cs101.ID))
		assert.Equal(t, 0, testutil.Count(t, e.db, "inscriptions", "course_id = ?", cs101.ID))
		assert.Equal(t, 0, testutil.Count(t, e.db, "tasks", "course_id = ?", cs101.ID))
		assert.Equal(t, 0, testutil.Count(t, e.db, "notes", ""))

		httpTest{
			name: "bob has no courses", path: "/admin/students/bob/courses", token: token, wantData: marchallList(t),
		}.run(t, e.app)
		httpTest{
			name: "gone", method: http.MethodDelete, path: "/admin/courses/CS101", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found."}),
		}.run(t, e.app)
	})
}
