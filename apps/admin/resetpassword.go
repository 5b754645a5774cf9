package main

import (
	"context"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	p, err := cli.principals.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	return cli.principals.SetPassword(ctx, p, pwd)
}
