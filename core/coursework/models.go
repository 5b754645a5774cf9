package coursework

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

// Task is an assignment of a course, open between StartDate and EndDate.
type Task struct {
	ID             int       `json:"task_id" db:"id"`
	CourseID       int       `json:"course_id" db:"course_id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	StartDate      time.Time `json:"start_date" db:"start_date"`
	EndDate        time.Time `json:"end_date" db:"end_date"`
	UniqueFilename string    `json:"unique_filename" db:"unique_filename"`
	Active         bool      `json:"active" db:"active"`
}

// Note is the grade of a student on a task.
type Note struct {
	ID        int     `json:"note_id" db:"id"`
	TaskID    int     `json:"task_id" db:"task_id"`
	StudentID int     `json:"student_id" db:"student_id"`
	Note      float64 `json:"note" db:"note"`
}

// NoteInfo is a note as listed to its student.
type NoteInfo struct {
	NoteID     int     `json:"note_id" db:"note_id"`
	TaskID     int     `json:"task_id" db:"task_id"`
	TaskName   string  `json:"task_name" db:"task_name"`
	CourseName string  `json:"course_name" db:"course_name"`
	Note       float64 `json:"note" db:"note"`
}

type NewTask struct {
	Name           string    `json:"name" validate:"required,max=100"`
	Description    string    `json:"description" validate:"max=1000"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	UniqueFilename string    `json:"unique_filename" validate:"max=255"`
	Active         *bool     `json:"active"` // defaults to true
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Description = core.CleanString(nt.Description)
	nt.UniqueFilename = core.CleanString(nt.UniqueFilename)
	return validate.Struct(nt)
}

type NewNote struct {
	StudentID int      `json:"student_id" validate:"required"`
	Note      *float64 `json:"note" validate:"required,min=0,max=9.99"`
}

func (nn NewNote) Validate(validate *validator.Validate) error { return validate.Struct(nn) }
