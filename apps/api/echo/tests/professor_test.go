package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/coursework"
	"github.com/trezcool/academia/core/principal"
	"github.com/trezcool/academia/tests"
)

func Test_professorApi_courses(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	alice := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleProfessor, "alice", "pw1")
	carol := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleProfessor, "carol", "pw1")
	bob := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleStudent, "bob", "pw2", 2)
	dave := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleStudent, "dave", "pw2", 4)
	cs101 := testutil.CreateCourse(t, e.courseRepo, alice.ID, "CS101", "oldpw")
	ma201 := testutil.CreateCourse(t, e.courseRepo, carol.ID, "MA201", "pw")
	testutil.Enroll(t, e.courseRepo, dave.ID, cs101.ID)

	aliceToken := getToken(t, e.tokens, alice)
	carolToken := getToken(t, e.tokens, carol)

	tests := []httpTest{
		{name: "me", path: "/professor/me", token: aliceToken, wantData: marchallObj(t, alice)},
		{name: "my courses", path: "/professor/courses", token: aliceToken, wantData: marchallList(t, cs101)},
		{
			name: "students", path: "/professor/courses/CS101/students", token: aliceToken,
			wantData: marchallList(t, course.StudentInfo{StudentID: dave.ID, Name: "dave", FullName: "dave Doe", Semester: 4}),
		},
		{
			name: "students (not my course)", path: "/professor/courses/CS101/students", token: carolToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "This is not your course, you can't see the students."}),
		},
		{
			name: "students (unknown course)", path: "/professor/courses/CS999/students", token: aliceToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found."}),
		},
		{
			name: "create course (someone else's ID)", method: http.MethodPost, path: "/professor/courses", token: aliceToken,
			body: marchallObj(t, course.NewCourse{
				ProfessorID: carol.ID, Name: "PH301", Semester: 3, Program: "Physics", Password: "pw",
			}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: fmt.Sprintf("The ID '%d' is not your ID.", carol.ID)}),
		},
		{
			name: "create course (duplicate name)", method: http.MethodPost, path: "/professor/courses", token: aliceToken,
			body: marchallObj(t, course.NewCourse{
				ProfessorID: alice.ID, Name: "MA201", Semester: 3, Program: "Physics", Password: "pw",
			}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Name already exists."}),
		},
		{
			name: "create course (slash in name)", method: http.MethodPost, path: "/professor/courses", token: aliceToken,
			body: marchallObj(t, course.NewCourse{
				ProfessorID: alice.ID, Name: "Math/Physics", Semester: 3, Program: "Physics", Password: "pw",
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "inscription (not my course)", method: http.MethodPost, path: "/professor/inscriptions", token: aliceToken,
			body:     marchallObj(t, course.NewInscription{StudentID: bob.ID, CourseID: ma201.ID}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "This is not your course, you can't inscribe a student."}),
		},
		{
			name: "inscription (already enrolled)", method: http.MethodPost, path: "/professor/inscriptions", token: aliceToken,
			body:     marchallObj(t, course.NewInscription{StudentID: dave.ID, CourseID: cs101.ID}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "The student is already enrolled in this course."}),
		},
		{
			name: "inscription (unknown student)", method: http.MethodPost, path: "/professor/inscriptions", token: aliceToken,
			body:     marchallObj(t, course.NewInscription{StudentID: carol.ID, CourseID: cs101.ID}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found."}),
		},
		{
			name: "course password (wrong current password)", method: http.MethodPut, path: "/professor/courses/CS101/password", token: aliceToken,
			body:     []byte(`{"password": "wrongpw", "new_password": "newpw"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Incorrect password of the course."}),
		},
		{
			name: "course password (not my course)", method: http.MethodPut, path: "/professor/courses/CS101/password", token: carolToken,
			body:     []byte(`{"password": "oldpw", "new_password": "newpw"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "This is not your course."}),
		},
		{
			name: "course password (missing new password)", method: http.MethodPut, path: "/professor/courses/CS101/password", token: aliceToken,
			body:     []byte(`{"password": "oldpw"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"error": {"new_password": "this field is required"}}`),
		},
		{
			name: "delete course (not my course)", method: http.MethodDelete, path: "/professor/courses/CS101", token: carolToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "The course 'CS101' is not your course, you can't delete it."}),
		},
	}

	for _, tt := range tests {
		tt.run(t, e.app)
	}
	assert.Equal(t, 2, testutil.Count(t, e.db, "courses", ""))

	t.Run("create course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/professor/courses", aliceToken, marchallObj(t, course.NewCourse{
			ProfessorID: alice.ID, Name: "PH301", Semester: 3, Program: "Physics", Password: "pw",
		}))
		e.app.ServeHTTP(rec, req)

		ph301, err := e.courseRepo.GetCourse(ctx, course.GetFilter{Name: "PH301"})
		require.NoError(t, err)
		checkCodeAndData(t, httpTest{wantData: marchallObj(t, ph301)}, rec)
	})

	t.Run("inscription", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/professor/inscriptions", aliceToken,
			marchallObj(t, course.NewInscription{StudentID: bob.ID, CourseID: cs101.ID}))
		e.app.ServeHTTP(rec, req)

		var ins course.Inscription
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ins))
		assert.NotZero(t, ins.ID)
		assert.Equal(t, bob.ID, ins.StudentID)
		assert.Equal(t, cs101.ID, ins.CourseID)
	})

	t.Run("course password", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/professor/courses/CS101/password", aliceToken,
			[]byte(`{"password": "oldpw", "new_password": "newpw"}`))
		e.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantData: detail(t, "Password of the course CS101 updated.")}, rec)

		crs, err := e.courseRepo.GetCourse(ctx, course.GetFilter{ID: cs101.ID})
		require.NoError(t, err)
		assert.True(t, crs.CheckPassword("newpw"))
		assert.False(t, crs.CheckPassword("oldpw"))
	})

	t.Run("delete course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/professor/courses/CS101", aliceToken)
		e.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantData: detail(t, "Course 'CS101' deleted.")}, rec)
		assert.Equal(t, 0, testutil.Count(t, e.db, "inscriptions", "course_id = ?", cs101.ID))

		httpTest{
			name: "gone", path: "/professor/courses/CS101/students", token: aliceToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Course not found."}),
		}.run(t, e.app)
	})
}

func Test_professorApi_coursework(t *testing.T) {
	e := setup(t)
	alice := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleProfessor, "alice", "pw1")
	carol := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleProfessor, "carol", "pw1")
	bob := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleStudent, "bob", "pw2")
	dave := testutil.CreatePrincipal(t, e.principalRepo, principal.RoleStudent, "dave", "pw2")
	cs101 := testutil.CreateCourse(t, e.courseRepo, alice.ID, "CS101", "pw")
	testutil.Enroll(t, e.courseRepo, bob.ID, cs101.ID)

	aliceToken := getToken(t, e.tokens, alice)
	carolToken := getToken(t, e.tokens, carol)

	var task coursework.Task
	t.Run("create task", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/professor/courses/CS101/tasks", aliceToken, []byte(`{
			"name": "Homework 1",
			"description": "Sorting algorithms",
			"start_date": "2026-02-01T08:00:00Z",
			"end_date": "2026-02-08T08:00:00Z"
		}`))
		e.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
		assert.NotZero(t, task.ID)
		assert.Equal(t, cs101.ID, task.CourseID)
		assert.Equal(t, "Homework 1", task.Name)
		assert.True(t, task.Active)
		assert.NotEmpty(t, task.UniqueFilename)
	})

	tests := []httpTest{
		{
			name: "create task (not my course)", method: http.MethodPost, path: "/professor/courses/CS101/tasks", token: carolToken,
			body:     []byte(`{"name": "hw", "start_date": "2026-02-01T08:00:00Z", "end_date": "2026-02-08T08:00:00Z"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "This is not your course."}),
		},
		{
			name: "create task (ends before it starts)", method: http.MethodPost, path: "/professor/courses/CS101/tasks", token: aliceToken,
			body:     []byte(`{"name": "hw", "start_date": "2026-02-08T08:00:00Z", "end_date": "2026-02-01T08:00:00Z"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "list tasks (not my course)", path: "/professor/courses/CS101/tasks", token: carolToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "This is not your course."}),
		},
		{
			name: "grade (unknown task)", method: http.MethodPut, path: "/professor/tasks/999/notes", token: aliceToken,
			body:     []byte(fmt.Sprintf(`{"student_id": %d, "note": 8.5}`, bob.ID)),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Task not found."}),
		},
		{
			name: "grade (not my course)", method: http.MethodPut, path: fmt.Sprintf("/professor/tasks/%d/notes", task.ID), token: carolToken,
			body:     []byte(fmt.Sprintf(`{"student_id": %d, "note": 8.5}`, bob.ID)),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "This is not your course."}),
		},
		{
			name: "grade (student not enrolled)", method: http.MethodPut, path: fmt.Sprintf("/professor/tasks/%d/notes", task.ID), token: aliceToken,
			body:     []byte(fmt.Sprintf(`{"student_id": %d, "note": 8.5}`, dave.ID)),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "The student is not enrolled in this course."}),
		},
		{
			name: "grade (unknown student)", method: http.MethodPut, path: fmt.Sprintf("/professor/tasks/%d/notes", task.ID), token: aliceToken,
			body:     []byte(`{"student_id": 999, "note": 8.5}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found."}),
		},
		{
			name: "grade (missing note)", method: http.MethodPut, path: fmt.Sprintf("/professor/tasks/%d/notes", task.ID), token: aliceToken,
			body:     []byte(fmt.Sprintf(`{"student_id": %d}`, bob.ID)),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "grade (out of range)", method: http.MethodPut, path: fmt.Sprintf("/professor/tasks/%d/notes", task.ID), token: aliceToken,
			body:     []byte(fmt.Sprintf(`{"student_id": %d, "note": 10}`, bob.ID)),
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt.run(t, e.app)
	}

	t.Run("list tasks", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/professor/courses/CS101/tasks", aliceToken)
		e.app.ServeHTTP(rec, req)

		var tasks []coursework.Task
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, task.ID, tasks[0].ID)
	})

	t.Run("grade", func(t *testing.T) {
		path := fmt.Sprintf("/professor/tasks/%d/notes", task.ID)
		for _, n := range []float64{7.25, 9.5} { // second grade replaces the first
			req, rec := newAuthRequest(http.MethodPut, path, aliceToken, []byte(fmt.Sprintf(`{"student_id": %d, "note": %v}`, bob.ID, n)))
			e.app.ServeHTTP(rec, req)

			var note coursework.Note
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &note))
			assert.Equal(t, task.ID, note.TaskID)
			assert.Equal(t, bob.ID, note.StudentID)
			assert.Equal(t, n, note.Note)
		}
		assert.Equal(t, 1, testutil.Count(t, e.db, "notes", "task_id = ? AND student_id = ?", task.ID, bob.ID))
	})
}
