package principal

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// Role is the closed set of principal kinds.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProfessor Role = "professor"
	RoleStudent   Role = "student"
)

var (
	Roles = []Role{RoleAdmin, RoleProfessor, RoleStudent}

	ErrInvalidRole = errors.New("invalid role")
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	if r := Role(core.CleanString(s, true /* lower */)); r.Valid() {
		return r, nil
	}
	return "", errors.Wrapf(ErrInvalidRole, "%q", s)
}

// Principal is an authenticable actor: an admin, a professor or a student.
type Principal struct {
	ID             int      `json:"id" db:"id"`
	Role           Role     `json:"role" db:"role"`
	Username       string   `json:"username" db:"username"`
	Name           string   `json:"name" db:"name"`
	FullName       string   `json:"full_name" db:"full_name"`
	PhoneNumber    string   `json:"phone_number" db:"phone_number"`
	ProfilePicture string   `json:"profile_picture" db:"profile_picture"`
	Semester       null.Int `json:"semester" db:"semester"` // students only
	PasswordHash   string   `json:"-" db:"password_hash"`
}

func (p *Principal) SetPassword(pwd string) error {
	hash, err := core.HashPassword(pwd)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return nil
}

func (p Principal) CheckPassword(pwd string) bool {
	return core.VerifyPassword(pwd, p.PasswordHash)
}

func (p Principal) IsAdmin() bool     { return p.Role == RoleAdmin }
func (p Principal) IsProfessor() bool { return p.Role == RoleProfessor }
func (p Principal) IsStudent() bool   { return p.Role == RoleStudent }

// NewPrincipal contains information needed to create a new Principal.
// Role is set by the caller, never from the request body.
type NewPrincipal struct {
	Role           Role   `json:"-"`
	Username       string `json:"username" validate:"required,max=50,alphanum_"`
	Name           string `json:"name" validate:"required,max=100"`
	FullName       string `json:"full_name" validate:"max=200"`
	PhoneNumber    string `json:"phone_number" validate:"max=30"`
	ProfilePicture string `json:"profile_picture" validate:"max=255"`
	Semester       int    `json:"semester" validate:"omitempty,min=1,max=20"`
	Password       string `json:"password" validate:"required,max=72"`
}

func (np *NewPrincipal) Validate(validate *validator.Validate) error {
	np.Username = core.CleanString(np.Username, true /* lower */)
	np.Name = core.CleanString(np.Name)
	np.FullName = core.CleanString(np.FullName)
	np.PhoneNumber = core.CleanString(np.PhoneNumber)
	np.ProfilePicture = core.CleanString(np.ProfilePicture)

	if !np.Role.Valid() {
		return errors.Wrapf(ErrInvalidRole, "%q", np.Role)
	}
	if err := validate.Struct(np); err != nil {
		return err
	}
	if np.Role == RoleStudent && np.Semester == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "this field is required"})
	}
	if np.Role != RoleStudent && np.Semester != 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "only students have a semester"})
	}
	return nil
}

type GetFilter struct {
	ID       int
	Username string
	Role     Role // optional
}

type QueryFilter struct {
	Roles []Role
}
