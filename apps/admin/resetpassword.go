package main

import (
	"flag"
	"time"
)

func (cli *commandLine) runResetPassword(args []string) error {
	cmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	uname := cmd.String("username", "", "The user's username or email. The password will be prompted next.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *uname == "" {
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
	return cli.resetPassword(*uname, pwd)
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(uname)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(usr)
	return err
}
