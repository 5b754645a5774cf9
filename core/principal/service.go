package principal

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrNotFound       = errors.New("principal not found")
	ErrUsernameExists = errors.New("a principal with this username already exists")
)

type (
	Repository interface {
		UsernameExists(ctx context.Context, username string, exec ...core.DBExecutor) (bool, error)
		CreatePrincipal(ctx context.Context, p Principal, exec ...core.DBExecutor) (Principal, error)
		GetPrincipal(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Principal, error)
		// QueryPrincipals returns the principals having any of filter.Roles (all when empty).
		QueryPrincipals(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Principal, error)
		UpdatePassword(ctx context.Context, id int, hash string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates nothing: np must have been validated by the caller.
// The username pre-check fails with ErrUsernameExists; a concurrent duplicate is still
// caught by the store and surfaces as a core.IntegrityError.
func (svc *Service) Create(ctx context.Context, np NewPrincipal) (Principal, error) {
	exists, err := svc.repo.UsernameExists(ctx, np.Username)
	if err != nil {
		return Principal{}, errors.Wrap(err, "checking username")
	}
	if exists {
		return Principal{}, ErrUsernameExists
	}

	p := Principal{
		Role:           np.Role,
		Username:       np.Username,
		Name:           np.Name,
		FullName:       np.FullName,
		PhoneNumber:    np.PhoneNumber,
		ProfilePicture: np.ProfilePicture,
		Semester:       null.NewInt(np.Semester, np.Role == RoleStudent),
	}
	if err = p.SetPassword(np.Password); err != nil {
		return Principal{}, err
	}
	return svc.repo.CreatePrincipal(ctx, p)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Principal, error) {
	return svc.repo.GetPrincipal(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (Principal, error) {
	return svc.repo.GetPrincipal(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

// Get returns the principal with the given ID and role.
func (svc *Service) Get(ctx context.Context, id int, role Role) (Principal, error) {
	return svc.repo.GetPrincipal(ctx, GetFilter{ID: id, Role: role})
}

func (svc *Service) GetStudent(ctx context.Context, uname string) (Principal, error) {
	return svc.repo.GetPrincipal(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */), Role: RoleStudent})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Principal, error) {
	return svc.repo.QueryPrincipals(ctx, filter, ordering)
}

func (svc *Service) SetPassword(ctx context.Context, p Principal, pwd string) error {
	if err := p.SetPassword(pwd); err != nil {
		return err
	}
	return svc.repo.UpdatePassword(ctx, p.ID, p.PasswordHash)
}
