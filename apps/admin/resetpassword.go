package main

import (
	"context"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = core.NowFunc().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr, nil, nil)
	return err
}
