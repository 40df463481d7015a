package main

import (
	"context"

	"github.com/trezcool/academia/core/account"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	acc, err := cli.accounts.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	np := account.NewPassword{Password: pwd, PasswordConfirm: pwd}
	if err = np.Validate(cli.validate, acc); err != nil {
		return err
	}
	return cli.accounts.SetPassword(ctx, acc.ID, np.Password)
}
