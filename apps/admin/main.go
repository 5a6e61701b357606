package main

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/menu"
	"github.com/flavorsense/flavorsense/core/reminder"
	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
	emailsvc "github.com/flavorsense/flavorsense/services/email"
	logsvc "github.com/flavorsense/flavorsense/services/logger"
	"github.com/flavorsense/flavorsense/storage"
)

func main() {
	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(std, err)

	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()

	// set up DB & services
	repos, err := storage.Open(conf.Storage)
	errAndDie(std, err)

	mailSvc, err := emailsvc.NewService(conf, logger)
	errAndDie(std, err)

	validate, translator := core.NewValidator()
	student.InitValidators(validate, translator)

	reviewSvc := review.NewService(repos.Reviews)
	board := menu.NewBoard(menu.FromConfig(conf.Menu))

	// start CLI
	cli := commandLine{
		out:        os.Stdout,
		studentSvc: student.NewService(repos.Students, reviewSvc, validate, translator),
		reviewSvc:  reviewSvc,
		reminders:  reminder.NewDispatcher(reviewSvc, board, mailSvc, logger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", errorMessage(err))
		}
		logger.Close()
		os.Exit(1)
	}
}

// errorMessage returns the user-facing text of validation errors.
func errorMessage(err error) string {
	if verr, ok := errors.Cause(err).(*core.ValidationError); ok {
		return verr.Message()
	}
	return err.Error()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
