package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/makemyfuture/planner/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME -email EMAIL      - create or update a user; the password is prompted next")
	fmt.Println("  resetpassword -username USERNAME|EMAIL       - reset a user's password")
	fmt.Println("  listusers                                    - list all user accounts")
	fmt.Println("  loadcatalog -file PATH                       - validate a course catalog document and print its summary")
	fmt.Println("  migrate COMMAND [ARGS]                       - run a goose migration command (up, down, status, ...)")
	fmt.Println("  createdb                                     - create the application database if it does not exist")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "adduser":
		return cli.runAddUser(args[2:])
	case "resetpassword":
		return cli.runResetPassword(args[2:])
	case "listusers":
		return cli.listUsers()
	case "loadcatalog":
		return cli.runLoadCatalog(args[2:])
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

// promptPassword reads a password without echoing it back.
func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
