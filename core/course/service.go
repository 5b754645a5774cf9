package course

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/principal"
)

var (
	// errors
	ErrNotFound          = errors.New("course not found")
	ErrNameExists        = errors.New("a course with this name already exists")
	ErrProfessorNotFound = errors.New("professor not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrNotOwner          = errors.New("not the course owner")
	ErrAlreadyEnrolled   = errors.New("student already enrolled in this course")
	ErrInvalidPassword   = errors.New("invalid course password")
)

type (
	Repository interface {
		NameExists(ctx context.Context, name string, exec ...core.DBExecutor) (bool, error)
		CreateCourse(ctx context.Context, c Course, exec ...core.DBExecutor) (Course, error)
		GetCourse(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Course, error)
		QueryCourses(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Course, error)
		UpdatePassword(ctx context.Context, id int, hash string, exec ...core.DBExecutor) error
		DeleteCourse(ctx context.Context, id int, exec ...core.DBExecutor) error

		IsEnrolled(ctx context.Context, studentID, courseID int, exec ...core.DBExecutor) (bool, error)
		CreateInscription(ctx context.Context, ins Inscription, exec ...core.DBExecutor) (Inscription, error)
		DeleteInscriptions(ctx context.Context, courseID int, exec ...core.DBExecutor) error
		QueryStudentCourses(ctx context.Context, studentID int, exec ...core.DBExecutor) ([]CourseInfo, error)
		QueryCourseStudents(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]StudentInfo, error)
	}

	// WorkRepository removes the tasks and notes of a course.
	WorkRepository interface {
		DeleteCourseWork(ctx context.Context, courseID int, exec ...core.DBExecutor) error
	}

	Service struct {
		db         core.DB
		repo       Repository
		principals principal.Repository
		work       WorkRepository
	}
)

func NewService(db core.DB, repo Repository, principals principal.Repository, work WorkRepository) *Service {
	return &Service{db: db, repo: repo, principals: principals, work: work}
}

// Authorize fails with ErrNotOwner unless by is an admin or the professor owning c.
func Authorize(by principal.Principal, c Course) error {
	switch {
	case by.IsAdmin():
		return nil
	case by.IsProfessor() && by.ID == c.ProfessorID:
		return nil
	}
	return ErrNotOwner
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByName(ctx context.Context, name string) (Course, error) {
	return svc.repo.GetCourse(ctx, GetFilter{Name: core.CleanString(name)})
}

// GetOwned returns the named course if by may manage it.
func (svc *Service) GetOwned(ctx context.Context, by principal.Principal, name string) (Course, error) {
	c, err := svc.GetByName(ctx, name)
	if err != nil {
		return Course{}, err
	}
	if err = Authorize(by, c); err != nil {
		return Course{}, err
	}
	return c, nil
}

func (svc *Service) QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, QueryFilter{}, ordering)
}

func (svc *Service) QueryByProfessor(ctx context.Context, professorID int) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, QueryFilter{ProfessorID: professorID}, nil)
}

func (svc *Service) StudentCourses(ctx context.Context, studentID int) ([]CourseInfo, error) {
	return svc.repo.QueryStudentCourses(ctx, studentID)
}

// Students lists the students enrolled in the named course.
func (svc *Service) Students(ctx context.Context, by principal.Principal, name string) ([]StudentInfo, error) {
	c, err := svc.GetOwned(ctx, by, name)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryCourseStudents(ctx, c.ID)
}

// IsEnrolled reports whether the student is enrolled in the course.
func (svc *Service) IsEnrolled(ctx context.Context, studentID, courseID int) (bool, error) {
	return svc.repo.IsEnrolled(ctx, studentID, courseID)
}

// Create creates a course. Checks run in order: unique name, existing professor, then
// (for professors) ownership.
func (svc *Service) Create(ctx context.Context, by principal.Principal, nc NewCourse) (Course, error) {
	exists, err := svc.repo.NameExists(ctx, nc.Name)
	if err != nil {
		return Course{}, errors.Wrap(err, "checking course name")
	}
	if exists {
		return Course{}, ErrNameExists
	}

	if _, err = svc.principals.GetPrincipal(ctx, principal.GetFilter{ID: nc.ProfessorID, Role: principal.RoleProfessor}); err != nil {
		if errors.Cause(err) == principal.ErrNotFound {
			return Course{}, ErrProfessorNotFound
		}
		return Course{}, errors.Wrap(err, "finding professor")
	}

	c := Course{
		ProfessorID:    nc.ProfessorID,
		Name:           nc.Name,
		Description:    nc.Description,
		Semester:       nc.Semester,
		Program:        nc.Program,
		ProfilePicture: nc.ProfilePicture,
	}
	if err = Authorize(by, c); err != nil {
		return Course{}, err
	}
	if err = c.SetPassword(nc.Password); err != nil {
		return Course{}, err
	}
	return svc.repo.CreateCourse(ctx, c)
}

// Enroll enrolls a student in a course on behalf of an admin or of the course professor.
func (svc *Service) Enroll(ctx context.Context, by principal.Principal, ni NewInscription) (Inscription, error) {
	if _, err := svc.principals.GetPrincipal(ctx, principal.GetFilter{ID: ni.StudentID, Role: principal.RoleStudent}); err != nil {
		if errors.Cause(err) == principal.ErrNotFound {
			return Inscription{}, ErrStudentNotFound
		}
		return Inscription{}, errors.Wrap(err, "finding student")
	}

	c, err := svc.GetByID(ctx, ni.CourseID)
	if err != nil {
		return Inscription{}, err
	}
	if err = Authorize(by, c); err != nil {
		return Inscription{}, err
	}
	return svc.enroll(ctx, ni.StudentID, c.ID)
}

// SelfEnroll enrolls a student in a course protected by pwd.
func (svc *Service) SelfEnroll(ctx context.Context, student principal.Principal, courseID int, pwd string) (Inscription, error) {
	c, err := svc.GetByID(ctx, courseID)
	if err != nil {
		return Inscription{}, err
	}
	if !c.CheckPassword(pwd) {
		return Inscription{}, ErrInvalidPassword
	}
	return svc.enroll(ctx, student.ID, c.ID)
}

func (svc *Service) enroll(ctx context.Context, studentID, courseID int) (Inscription, error) {
	enrolled, err := svc.repo.IsEnrolled(ctx, studentID, courseID)
	if err != nil {
		return Inscription{}, errors.Wrap(err, "checking inscription")
	}
	if enrolled {
		return Inscription{}, ErrAlreadyEnrolled
	}
	return svc.repo.CreateInscription(ctx, Inscription{StudentID: studentID, CourseID: courseID})
}

// ChangePassword sets a new course password. Professors must own the course and supply
// its current password.
func (svc *Service) ChangePassword(ctx context.Context, by principal.Principal, name string, cp ChangePassword) error {
	c, err := svc.GetOwned(ctx, by, name)
	if err != nil {
		return err
	}
	if by.IsProfessor() && !c.CheckPassword(cp.Current) {
		return ErrInvalidPassword
	}
	if err = c.SetPassword(cp.New); err != nil {
		return err
	}
	return svc.repo.UpdatePassword(ctx, c.ID, c.PasswordHash)
}

// Delete removes the named course along with its notes, tasks and inscriptions.
func (svc *Service) Delete(ctx context.Context, by principal.Principal, name string) (string, error) {
	c, err := svc.GetOwned(ctx, by, name)
	if err != nil {
		return "", err
	}

	err = core.WithTransaction(ctx, svc.db, func(tx core.DBExecutor) error {
		if err := svc.work.DeleteCourseWork(ctx, c.ID, tx); err != nil {
			return errors.Wrap(err, "deleting course work")
		}
		if err := svc.repo.DeleteInscriptions(ctx, c.ID, tx); err != nil {
			return errors.Wrap(err, "deleting inscriptions")
		}
		return svc.repo.DeleteCourse(ctx, c.ID, tx)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Course '%s' deleted.", c.Name), nil
}
