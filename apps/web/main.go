package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"

	"github.com/pkg/errors"

	echoweb "github.com/flavorsense/flavorsense/apps/web/echo"
	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/menu"
	"github.com/flavorsense/flavorsense/core/rating"
	"github.com/flavorsense/flavorsense/core/reminder"
	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
	emailsvc "github.com/flavorsense/flavorsense/services/email"
	logsvc "github.com/flavorsense/flavorsense/services/logger"
	"github.com/flavorsense/flavorsense/storage"
)

func main() {
	addr := flag.String("addr", "", "listen address (HOST:PORT), overrides HOST and PORT")
	flag.Parse()

	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *addr != "" {
		if err = overrideAddress(conf, *addr); err != nil {
			log.Fatalf("parsing -addr: %v", err)
		}
	}

	// set up logger
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	if conf.UsesDefaultSecrets() {
		logger.Warn("FLAVORSENSE_SECRET or STAFF_PASS is left at its default value; set them before going live")
	}

	// set up DB & repos
	repos, err := storage.Open(conf.Storage)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening storage: %v", err), err)
	}

	// set up services
	mailSvc, err := emailsvc.NewService(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up email: %v", err), err)
	}

	validate, translator := core.NewValidator()
	student.InitValidators(validate, translator)
	rating.InitValidators(validate, translator)

	reviewSvc := review.NewService(repos.Reviews)
	studentSvc := student.NewService(repos.Students, reviewSvc, validate, translator)
	board := menu.NewBoard(menu.FromConfig(conf.Menu))

	// =========================================================================
	// Start Web Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoweb.NewServer(echoweb.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		StudentSvc: studentSvc,
		ReviewSvc:  reviewSvc,
		Ratings:    rating.NewStore(),
		Menu:       board,
		Reminders:  reminder.NewDispatcher(reviewSvc, board, mailSvc, logger),
		Validate:   validate,
		Translator: translator,
	})

	go func() {
		logger.Info(fmt.Sprintf("Listening on %s", conf.Server.Address()))
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// overrideAddress sets the listen host and port from a HOST:PORT string.
func overrideAddress(conf *core.Config, addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return errors.Errorf("invalid port %q", portStr)
	}
	conf.Server.Host, conf.Server.Port = host, port
	return nil
}
