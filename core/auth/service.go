package auth

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/principal"
)

// ErrAuthenticationFailed is returned for unknown usernames and wrong passwords alike.
var ErrAuthenticationFailed = errors.New("Incorrect username or password")

type PrincipalGetter interface {
	GetByUsername(ctx context.Context, uname string) (principal.Principal, error)
}

type Service struct {
	principals PrincipalGetter
	tokens     *TokenService
}

func NewService(principals PrincipalGetter, tokens *TokenService) *Service {
	return &Service{principals: principals, tokens: tokens}
}

// Authenticate checks the credentials of a principal of any role.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (principal.Principal, error) {
	p, err := svc.principals.GetByUsername(ctx, uname)
	if err != nil {
		if errors.Cause(err) == principal.ErrNotFound {
			return principal.Principal{}, ErrAuthenticationFailed
		}
		return principal.Principal{}, errors.Wrap(err, "finding principal by username")
	}
	if !p.CheckPassword(pwd) {
		return principal.Principal{}, ErrAuthenticationFailed
	}
	return p, nil
}

// Login authenticates a principal and issues its token.
func (svc *Service) Login(ctx context.Context, uname, pwd string) (Token, error) {
	p, err := svc.Authenticate(ctx, uname, pwd)
	if err != nil {
		return Token{}, err
	}
	return svc.tokens.Issue(p)
}

func (svc *Service) Tokens() *TokenService { return svc.tokens }
