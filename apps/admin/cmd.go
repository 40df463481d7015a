package main

import (
	"database/sql"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/account"
	"github.com/trezcool/academia/core/teacher"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	tx       core.Transactor
	accounts *account.Service
	teachers teacher.Repository
	validate *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS...] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  addteacher -username USERNAME -email EMAIL -code EMPLOYEE_CODE [-first NAME] [-last NAME] - create a teacher account")
	fmt.Println("  resetpassword -username USERNAME - reset an account's password")
}

// readPassword prompts for a password twice; an empty password is reported as errHelp.
func readPassword(usage func()) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ContinueOnError)
	addTeacherUname := addTeacherCmd.String("username", "", "The teacher's username. The password will be prompted next.")
	addTeacherEmail := addTeacherCmd.String("email", "", "The teacher's email.")
	addTeacherCode := addTeacherCmd.String("code", "", "The teacher's employee code.")
	addTeacherFirst := addTeacherCmd.String("first", "Admin", "The teacher's first name.")
	addTeacherLast := addTeacherCmd.String("last", "Teacher", "The teacher's last name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The account's username. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addTeacherUname == "" || *addTeacherEmail == "" || *addTeacherCode == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		pwd, err := readPassword(addTeacherCmd.Usage)
		if err != nil {
			return err
		}
		return cli.addTeacher(teacher.NewTeacher{
			NewAccount: account.NewAccount{
				Username:        *addTeacherUname,
				Email:           *addTeacherEmail,
				Password:        pwd,
				PasswordConfirm: pwd,
			},
			FirstName:    *addTeacherFirst,
			LastName:     *addTeacherLast,
			EmployeeCode: *addTeacherCode,
		})
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := readPassword(resetPasswordCmd.Usage)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}
