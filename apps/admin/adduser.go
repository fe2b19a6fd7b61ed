package main

import (
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/makemyfuture/planner/core"
	"github.com/makemyfuture/planner/core/user"
)

func (cli *commandLine) runAddUser(args []string) error {
	cmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	uname := cmd.String("username", "", "The user's username. The password will be prompted next.")
	email := cmd.String("email", "", "The user's email address.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *uname == "" || *email == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := promptPassword()
	if err != nil {
		return err
	}
	if pwd == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.addUser(*uname, *email, pwd)
}

// addUser updates or creates a user account.
func (cli *commandLine) addUser(uname, email, pwd string) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(uname)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			ID:        uuid.New().String(),
			Username:  uname,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		usr.IsActive = true
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(usr)
		return err
	}

	usr.Email = email
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(usr)
	return err
}
