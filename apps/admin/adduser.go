package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/principal"
)

// addUser creates a principal, or resets the password of an existing one with the same
// username and role.
func (cli *commandLine) addUser(np principal.NewPrincipal) error {
	ctx := context.Background()
	validate, _ := core.NewValidator()
	if err := np.Validate(validate); err != nil {
		return err
	}

	p, err := cli.principals.GetByUsername(ctx, np.Username)
	switch {
	case err == nil && p.Role == np.Role:
		return cli.principals.SetPassword(ctx, p, np.Password)
	case err == nil:
		return principal.ErrUsernameExists
	case errors.Cause(err) != principal.ErrNotFound:
		return err
	}

	_, err = cli.principals.Create(ctx, np)
	return err
}
