package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/flavorsense/flavorsense/core/reminder"
	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out        io.Writer
	studentSvc *student.Service
	reviewSvc  *review.Service
	reminders  *reminder.Dispatcher
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  addstudent -name NAME -email EMAIL - register a student (the password is prompted)")
	fmt.Fprintln(cli.out, "  resetweek                          - set every review flag back to \"no\"")
	fmt.Fprintln(cli.out, "  pending                            - list students who have not reviewed today")
	fmt.Fprintln(cli.out, "  remind                             - email today's menu to pending students")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email. The password will be prompted next.")

	switch args[1] {
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentName == "" || *addStudentEmail == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentName, *addStudentEmail, string(pwd))
	case "resetweek":
		return cli.resetWeek()
	case "pending":
		return cli.pending()
	case "remind":
		return cli.remind()
	default:
		cli.printUsage()
		return errHelp
	}
}
