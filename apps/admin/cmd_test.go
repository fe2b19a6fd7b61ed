package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/makemyfuture/planner/core/user"
	inmemdb "github.com/makemyfuture/planner/storage/database/inmem"
	"github.com/makemyfuture/planner/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)

	var out bytes.Buffer
	return &commandLine{
		usrRepo: usrRepo,
		out:     &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "awe", "awe@test.cd", "mdr", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("LeP@ssw0rd"), nil }

	t.Run("creates a new account", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-username", "Awe", "-email", "Awe@test.cd"}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}
		usr, err := usrRepo.GetUserByUsername("awe") // stored lowercase
		if err != nil {
			t.Fatalf("GetUserByUsername() failed: %v", err)
		}
		if !usr.IsActive {
			t.Error("new account is not active")
		}
		if err := usr.CheckPassword("LeP@ssw0rd"); err != nil {
			t.Errorf("CheckPassword() failed: %v", err)
		}
	})

	t.Run("updates an existing account", func(t *testing.T) {
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte("n3wP@ssw0rd"), nil }

		if err := cli.run([]string{"admin", "adduser", "-username", "awe", "-email", "awe@test.cd"}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}
		usr, err := usrRepo.GetUserByUsername("awe")
		if err != nil {
			t.Fatalf("GetUserByUsername() failed: %v", err)
		}
		if err := usr.CheckPassword("n3wP@ssw0rd"); err != nil {
			t.Errorf("CheckPassword() failed: %v", err)
		}
	})

	t.Run("missing flags", func(t *testing.T) {
		if err := cli.run([]string{"admin", "adduser", "-username", "awe"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})
}

func Test_commandLine_loadCatalog(t *testing.T) {
	cli, out := setup(t)

	writeDoc := func(t *testing.T, name, doc string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("writing %s failed: %v", name, err)
		}
		return path
	}

	t.Run("valid document", func(t *testing.T) {
		out.Reset()
		path := writeDoc(t, "catalog.json", `{
			"AREAS": [{"MQR": "Mathematical Concepts"}],
			"DIVISIONS": [{"MATH": "Mathematics"}],
			"CLASSES": [{"DIVISION": "MATH", "NUMBER": "101C", "NAME": "Calculus I", "UNITS": 3, "AREA-ACR": "MQR"}]
		}`)
		if err := cli.run([]string{"admin", "loadcatalog", "-file", path}); err != nil {
			t.Fatalf("cli.run() failed: %v", err)
		}
		if !strings.Contains(out.String(), "catalog OK: 1 courses") {
			t.Errorf("missing summary; out = %s", out.String())
		}
		if !strings.Contains(out.String(), "Mathematics") {
			t.Errorf("missing division table; out = %s", out.String())
		}
	})

	t.Run("malformed document", func(t *testing.T) {
		out.Reset()
		path := writeDoc(t, "bad.json", `{
			"AREAS": [],
			"DIVISIONS": [{"MATH": "Mathematics"}],
			"CLASSES": [{"DIVISION": "MATH", "NUMBER": "101C", "NAME": "Calculus I", "UNITS": 0}]
		}`)
		if err := cli.run([]string{"admin", "loadcatalog", "-file", path}); err == nil {
			t.Error("cli.run() expected an error on a malformed catalog")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if err := cli.run([]string{"admin", "loadcatalog", "-file", "/nope/nope.json"}); err == nil {
			t.Error("cli.run() expected an error on a missing file")
		}
	})

	t.Run("no flag", func(t *testing.T) {
		if err := cli.run([]string{"admin", "loadcatalog"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})
}
