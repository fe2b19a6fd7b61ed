package main

import (
	"time"

	"github.com/olekukonko/tablewriter"
)

func (cli *commandLine) listUsers() error {
	users, err := cli.usrRepo.QueryAllUsers()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"ID", "Username", "Email", "Active", "Created", "Last Login"})
	for _, usr := range users {
		lastLogin := "never"
		if !usr.LastLogin.IsZero() {
			lastLogin = usr.LastLogin.Format(time.RFC3339)
		}
		active := "no"
		if usr.IsActive {
			active = "yes"
		}
		table.Append([]string{
			usr.ID,
			usr.Username,
			usr.Email,
			active,
			usr.CreatedAt.Format(time.RFC3339),
			lastLogin,
		})
	}
	table.Render()
	return nil
}
