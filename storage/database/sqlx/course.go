package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/storage/database"
)

const courseColumns = "id, professor_id, name, description, semester, program, profile_picture, password_hash"

var courseOrderings = map[string]string{
	"id":           "id",
	"name":         "name",
	"semester":     "semester",
	"program":      "program",
	"professor_id": "professor_id",
}

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

// trapNoRowsErr maps "no rows" err to course.ErrNotFound
func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) NameExists(ctx context.Context, name string, exec ...core.DBExecutor) (bool, error) {
	ex := getExec(repo.exec, exec)
	var exists bool
	if err := sqlx.GetContext(ctx, ex, &exists, ex.Rebind("SELECT EXISTS(SELECT 1 FROM courses WHERE name = ?)"), name); err != nil {
		return false, errors.Wrap(err, "checking course name")
	}
	return exists, nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course, exec ...core.DBExecutor) (course.Course, error) {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind(`INSERT INTO courses (professor_id, name, description, semester, program, profile_picture, password_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := ex.QueryRowxContext(ctx, q,
		c.ProfessorID, c.Name, c.Description, c.Semester, c.Program, c.ProfilePicture, c.PasswordHash,
	).Scan(&c.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(database.TranslateError(err), "inserting course")
	}
	return c, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, filter course.GetFilter, exec ...core.DBExecutor) (course.Course, error) {
	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.ID != 0 {
		conds = append(conds, "id = ?")
		args = append(args, filter.ID)
	}
	if filter.Name != "" {
		conds = append(conds, "name = ?")
		args = append(args, filter.Name)
	}
	if len(conds) == 0 {
		return course.Course{}, course.ErrNotFound
	}

	ex := getExec(repo.exec, exec)
	var c course.Course
	q := ex.Rebind("SELECT " + courseColumns + " FROM courses WHERE " + strings.Join(conds, " AND "))
	if err := sqlx.GetContext(ctx, ex, &c, q, args...); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "selecting course")
	}
	return c, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]course.Course, error) {
	q := "SELECT " + courseColumns + " FROM courses"
	var args []interface{}
	if filter.ProfessorID != 0 {
		q += " WHERE professor_id = ?"
		args = append(args, filter.ProfessorID)
	}
	q += orderBy(ordering, courseOrderings, "id ASC")

	ex := getExec(repo.exec, exec)
	courses := make([]course.Course, 0)
	if err := sqlx.SelectContext(ctx, ex, &courses, ex.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}

func (repo courseRepository) UpdatePassword(ctx context.Context, id int, hash string, exec ...core.DBExecutor) error {
	ex := getExec(repo.exec, exec)
	res, err := ex.ExecContext(ctx, ex.Rebind("UPDATE courses SET password_hash = ? WHERE id = ?"), hash, id)
	if err != nil {
		return errors.Wrap(database.TranslateError(err), "updating course password")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "updating course password")
	} else if n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error {
	ex := getExec(repo.exec, exec)
	res, err := ex.ExecContext(ctx, ex.Rebind("DELETE FROM courses WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(database.TranslateError(err), "deleting course")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.Wrap(err, "deleting course")
	} else if n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo courseRepository) IsEnrolled(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error) {
	ex := getExec(repo.exec, exec)
	var exists bool
	q := ex.Rebind("SELECT EXISTS(SELECT 1 FROM inscriptions WHERE student_id = ? AND course_id = ?)")
	if err := sqlx.GetContext(ctx, ex, &exists, q, studentID, courseID); err != nil {
		return false, errors.Wrap(err, "checking inscription")
	}
	return exists, nil
}

func (repo courseRepository) CreateInscription(ctx context.Context, ins course.Inscription, exec ...core.DBExecutor) (course.Inscription, error) {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind("INSERT INTO inscriptions (student_id, course_id) VALUES (?, ?) RETURNING id")
	if err := ex.QueryRowxContext(ctx, q, ins.StudentID, ins.CourseID).Scan(&ins.ID); err != nil {
		return course.Inscription{}, errors.Wrap(database.TranslateError(err), "inserting inscription")
	}
	return ins, nil
}

func (repo courseRepository) DeleteInscriptions(ctx context.Context, courseID int, exec ...core.DBExecutor) error {
	ex := getExec(repo.exec, exec)
	if _, err := ex.ExecContext(ctx, ex.Rebind("DELETE FROM inscriptions WHERE course_id = ?"), courseID); err != nil {
		return errors.Wrap(database.TranslateError(err), "deleting inscriptions")
	}
	return nil
}

func (repo courseRepository) QueryStudentCourses(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]course.CourseInfo, error) {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind(`SELECT c.id AS course_id, c.name AS course_name, c.description, c.semester,
			c.program AS program_name, p.name AS professor_name
		FROM inscriptions i
		JOIN courses c ON c.id = i.course_id
		JOIN principals p ON p.id = c.professor_id
		WHERE i.student_id = ?
		ORDER BY c.id`)
	infos := make([]course.CourseInfo, 0)
	if err := sqlx.SelectContext(ctx, ex, &infos, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting student courses")
	}
	return infos, nil
}

func (repo courseRepository) QueryCourseStudents(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]course.StudentInfo, error) {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind(`SELECT p.id AS student_id, p.name, p.full_name, p.phone_number, COALESCE(p.semester, 0) AS semester
		FROM inscriptions i
		JOIN principals p ON p.id = i.student_id
		WHERE i.course_id = ?
		ORDER BY p.id`)
	students := make([]course.StudentInfo, 0)
	if err := sqlx.SelectContext(ctx, ex, &students, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting course students")
	}
	return students, nil
}
