package coursework

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/principal"
)

var (
	// errors
	ErrTaskNotFound = errors.New("task not found")
	ErrNotEnrolled  = errors.New("student not enrolled in this course")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, task Task, exec ...core.DBExecutor) (Task, error)
		GetTask(ctx context.Context, id int, exec ...core.DBExecutor) (Task, error)
		QueryCourseTasks(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]Task, error)
		// UpsertNote creates the note of a student on a task, or replaces its value.
		UpsertNote(ctx context.Context, note Note, exec ...core.DBExecutor) (Note, error)
		QueryStudentNotes(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]NoteInfo, error)
		DeleteCourseWork(ctx context.Context, courseID int, exec ...core.DBExecutor) error
	}

	Service struct {
		repo       Repository
		courses    *course.Service
		principals principal.Repository
	}
)

var _ course.WorkRepository = (Repository)(nil)

func NewService(repo Repository, courses *course.Service, principals principal.Repository) *Service {
	return &Service{repo: repo, courses: courses, principals: principals}
}

// CreateTask adds a task to a course owned by the professor.
func (svc *Service) CreateTask(ctx context.Context, by principal.Principal, courseName string, nt NewTask) (Task, error) {
	c, err := svc.courses.GetOwned(ctx, by, courseName)
	if err != nil {
		return Task{}, err
	}

	task := Task{
		CourseID:       c.ID,
		Name:           nt.Name,
		Description:    nt.Description,
		StartDate:      nt.StartDate.UTC(),
		EndDate:        nt.EndDate.UTC(),
		UniqueFilename: nt.UniqueFilename,
		Active:         nt.Active == nil || *nt.Active,
	}
	if task.UniqueFilename == "" {
		task.UniqueFilename = uuid.New().String()
	}
	return svc.repo.CreateTask(ctx, task)
}

// CourseTasks lists the tasks of a course, for its professor or its enrolled students.
func (svc *Service) CourseTasks(ctx context.Context, by principal.Principal, courseName string) ([]Task, error) {
	var c course.Course
	var err error
	if by.IsStudent() {
		if c, err = svc.courses.GetByName(ctx, courseName); err != nil {
			return nil, err
		}
		enrolled, err := svc.courses.IsEnrolled(ctx, by.ID, c.ID)
		if err != nil {
			return nil, errors.Wrap(err, "checking inscription")
		}
		if !enrolled {
			return nil, ErrNotEnrolled
		}
	} else if c, err = svc.courses.GetOwned(ctx, by, courseName); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourseTasks(ctx, c.ID)
}

// Grade sets the note of an enrolled student on a task of a course owned by the professor.
func (svc *Service) Grade(ctx context.Context, by principal.Principal, taskID int, nn NewNote) (Note, error) {
	if nn.Note == nil {
		return Note{}, core.NewValidationError(nil, core.FieldError{Field: "note", Error: "note is a required field"})
	}
	task, err := svc.repo.GetTask(ctx, taskID)
	if err != nil {
		return Note{}, err
	}
	c, err := svc.courses.GetByID(ctx, task.CourseID)
	if err != nil {
		return Note{}, err
	}
	if err = course.Authorize(by, c); err != nil {
		return Note{}, err
	}

	if _, err = svc.principals.GetPrincipal(ctx, principal.GetFilter{ID: nn.StudentID, Role: principal.RoleStudent}); err != nil {
		if errors.Cause(err) == principal.ErrNotFound {
			return Note{}, course.ErrStudentNotFound
		}
		return Note{}, errors.Wrap(err, "finding student")
	}
	enrolled, err := svc.courses.IsEnrolled(ctx, nn.StudentID, c.ID)
	if err != nil {
		return Note{}, errors.Wrap(err, "checking inscription")
	}
	if !enrolled {
		return Note{}, ErrNotEnrolled
	}

	return svc.repo.UpsertNote(ctx, Note{
		TaskID:    task.ID,
		StudentID: nn.StudentID,
		Note:      math.Round(*nn.Note*100) / 100, // NUMERIC(3,2)
	})
}

func (svc *Service) StudentNotes(ctx context.Context, student principal.Principal) ([]NoteInfo, error) {
	return svc.repo.QueryStudentNotes(ctx, student.ID)
}
