package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/coursework"
	"github.com/trezcool/academia/storage/database"
)

const taskColumns = "id, course_id, name, description, start_date, end_date, unique_filename, active"

type courseworkRepository struct {
	exec core.DBExecutor
}

var _ coursework.Repository = (*courseworkRepository)(nil) // interface compliance check

func NewCourseworkRepository(exec core.DBExecutor) *courseworkRepository {
	return &courseworkRepository{exec: exec}
}

func (repo courseworkRepository) CreateTask(ctx context.Context, task coursework.Task, exec ...core.DBExecutor) (coursework.Task, error) {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind(`INSERT INTO tasks (course_id, name, description, start_date, end_date, unique_filename, active)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := ex.QueryRowxContext(ctx, q,
		task.CourseID, task.Name, task.Description, task.StartDate, task.EndDate, task.UniqueFilename, task.Active,
	).Scan(&task.ID)
	if err != nil {
		return coursework.Task{}, errors.Wrap(database.TranslateError(err), "inserting task")
	}
	return task, nil
}

func (repo courseworkRepository) GetTask(ctx context.Context, id int, exec ...core.DBExecutor) (coursework.Task, error) {
	ex := getExec(repo.exec, exec)
	var task coursework.Task
	if err := sqlx.GetContext(ctx, ex, &task, ex.Rebind("SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id); err != nil {
		if err == sql.ErrNoRows {
			return coursework.Task{}, coursework.ErrTaskNotFound
		}
		return coursework.Task{}, errors.Wrap(err, "selecting task")
	}
	return task, nil
}

func (repo courseworkRepository) QueryCourseTasks(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]coursework.Task, error) {
	ex := getExec(repo.exec, exec)
	tasks := make([]coursework.Task, 0)
	q := ex.Rebind("SELECT " + taskColumns + " FROM tasks WHERE course_id = ? ORDER BY start_date, id")
	if err := sqlx.SelectContext(ctx, ex, &tasks, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting tasks")
	}
	return tasks, nil
}

func (repo courseworkRepository) UpsertNote(ctx context.Context, note coursework.Note, exec ...core.DBExecutor) (coursework.Note, error) {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind(`INSERT INTO notes (task_id, student_id, note) VALUES (?, ?, ?)
		ON CONFLICT (task_id, student_id) DO UPDATE SET note = excluded.note
		RETURNING id`)
	if err := ex.QueryRowxContext(ctx, q, note.TaskID, note.StudentID, note.Note).Scan(&note.ID); err != nil {
		return coursework.Note{}, errors.Wrap(database.TranslateError(err), "upserting note")
	}
	return note, nil
}

func (repo courseworkRepository) QueryStudentNotes(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]coursework.NoteInfo, error) {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind(`SELECT n.id AS note_id, t.id AS task_id, t.name AS task_name, c.name AS course_name, n.note
		FROM notes n
		JOIN tasks t ON t.id = n.task_id
		JOIN courses c ON c.id = t.course_id
		WHERE n.student_id = ?
		ORDER BY c.name, t.start_date, t.id`)
	notes := make([]coursework.NoteInfo, 0)
	if err := sqlx.SelectContext(ctx, ex, &notes, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting notes")
	}
	return notes, nil
}

// DeleteCourseWork deletes the notes and tasks of a course.
func (repo courseworkRepository) DeleteCourseWork(ctx context.Context, courseID int, exec ...core.DBExecutor) error {
	ex := getExec(repo.exec, exec)
	q := ex.Rebind("DELETE FROM notes WHERE task_id IN (SELECT id FROM tasks WHERE course_id = ?)")
	if _, err := ex.ExecContext(ctx, q, courseID); err != nil {
		return errors.Wrap(database.TranslateError(err), "deleting notes")
	}
	if _, err := ex.ExecContext(ctx, ex.Rebind("DELETE FROM tasks WHERE course_id = ?"), courseID); err != nil {
		return errors.Wrap(database.TranslateError(err), "deleting tasks")
	}
	return nil
}
