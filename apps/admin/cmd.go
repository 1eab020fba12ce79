package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/org"
	"github.com/lchelle/servicediary/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sqlx.DB
	conf     *core.Config
	usrRepo  user.Repository
	orgRepo  org.Repository
	validate *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL -name \"FULL NAME\" -role student|teacher [-studentid ID -grade N] - create a user; password prompted")
	fmt.Println("  addorg -name NAME -key KEY -contact \"CONTACT PERSON\" [-email EMAIL] - register an organization")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", "", "student or teacher.")
	addUserStudentID := addUserCmd.String("studentid", "", "The external student id (students only).")
	addUserGrade := addUserCmd.Int("grade", 0, "The student's grade, 8-12 (students only).")

	addOrgCmd := flag.NewFlagSet("addorg", flag.ExitOnError)
	addOrgName := addOrgCmd.String("name", "", "The organization's name.")
	addOrgKey := addOrgCmd.String("key", "", "The organization's access key.")
	addOrgContact := addOrgCmd.String("contact", "", "The organization's contact person.")
	addOrgEmail := addOrgCmd.String("email", "", "The organization's contact email (optional).")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" || *addUserRole == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, *addUserName, *addUserRole, *addUserStudentID, *addUserGrade, string(pwd))
	case "addorg":
		if err := addOrgCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addOrgName == "" || *addOrgKey == "" || *addOrgContact == "" {
			addOrgCmd.Usage()
			return errHelp
		}
		return cli.addOrg(*addOrgName, *addOrgKey, *addOrgContact, *addOrgEmail)
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
