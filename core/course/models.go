package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

type Course struct {
	ID             int    `json:"course_id" db:"id"`
	ProfessorID    int    `json:"professor_id" db:"professor_id"`
	Name           string `json:"name" db:"name"`
	Description    string `json:"description" db:"description"`
	Semester       int    `json:"semester" db:"semester"`
	Program        string `json:"program" db:"program"`
	ProfilePicture string `json:"profile_picture" db:"profile_picture"`
	PasswordHash   string `json:"-" db:"password_hash"`
}

func (c *Course) SetPassword(pwd string) error {
	hash, err := core.HashPassword(pwd)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return nil
}

func (c Course) CheckPassword(pwd string) bool {
	return core.VerifyPassword(pwd, c.PasswordHash)
}

// Inscription enrolls a student in a course.
type Inscription struct {
	ID        int `json:"inscription_id" db:"id"`
	StudentID int `json:"student_id" db:"student_id"`
	CourseID  int `json:"course_id" db:"course_id"`
}

// CourseInfo is a course as listed to its students.
type CourseInfo struct {
	CourseID      int    `json:"course_id" db:"course_id"`
	CourseName    string `json:"course_name" db:"course_name"`
	Description   string `json:"description" db:"description"`
	Semester      int    `json:"semester" db:"semester"`
	ProgramName   string `json:"program_name" db:"program_name"`
	ProfessorName string `json:"professor_name" db:"professor_name"`
}

// StudentInfo is an enrolled student as listed to the course professor.
type StudentInfo struct {
	StudentID   int    `json:"student_id" db:"student_id"`
	Name        string `json:"name" db:"name"`
	FullName    string `json:"full_name" db:"full_name"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	Semester    int    `json:"semester" db:"semester"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	ProfessorID    int    `json:"professor_id" validate:"required"`
	Name           string `json:"name" validate:"required,max=100,excludesall=/"` // used as a path segment
	Description    string `json:"description" validate:"max=1000"`
	Semester       int    `json:"semester" validate:"required,min=1,max=20"`
	Program        string `json:"program" validate:"required,max=100"`
	ProfilePicture string `json:"profile_picture" validate:"max=255"`
	Password       string `json:"password" validate:"required,max=72"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Program = core.CleanString(nc.Program)
	nc.ProfilePicture = core.CleanString(nc.ProfilePicture)
	return validate.Struct(nc)
}

type NewInscription struct {
	StudentID int `json:"student_id" validate:"required"`
	CourseID  int `json:"course_id" validate:"required"`
}

func (ni NewInscription) Validate(validate *validator.Validate) error { return validate.Struct(ni) }

// ChangePassword changes a course password. Current is required from professors only.
type ChangePassword struct {
	Current string
	New     string
}

type GetFilter struct {
	ID   int
	Name string
}

type QueryFilter struct {
	ProfessorID int
}
