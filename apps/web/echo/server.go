package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/menu"
	"github.com/flavorsense/flavorsense/core/rating"
	"github.com/flavorsense/flavorsense/core/reminder"
	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
)

// bodyLimit caps every request body; rating payloads and forms are a few hundred bytes.
const bodyLimit = "64K"

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		StudentSvc     *student.Service
		ReviewSvc      *review.Service
		Ratings        *rating.Store
		Menu           *menu.Board
		Reminders      *reminder.Dispatcher
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		// Errors receives the error that stopped the listener (other than a graceful shutdown).
		Errors() <-chan error
		// ShutdownSignal receives SIGINT/SIGTERM, or a synthetic signal when a handler asks to stop.
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		sessions *sessionManager
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		sessions: newSessionManager(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	setLogLevel(s.app, conf.LogLevel)
	s.app.Renderer = newRenderer()
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEBUG mode
	if !conf.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.BodyLimit(bodyLimit))
	s.app.Use(s.sessions.middleware)

	s.app.GET("/health", health)

	registerStudentRoutes(s.app, &studentWeb{
		svc:        s.deps.StudentSvc,
		reviews:    s.deps.ReviewSvc,
		ratings:    s.deps.Ratings,
		menu:       s.deps.Menu,
		sessions:   s.sessions,
		validate:   s.deps.Validate,
		translator: s.deps.Translator,
	})
	registerStaffRoutes(s.app, &staffWeb{
		creds:     conf.Staff,
		reviews:   s.deps.ReviewSvc,
		menu:      s.deps.Menu,
		reminders: s.deps.Reminders,
		sessions:  s.sessions,
	})
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// signalShutdown asks the owner of the server to shut it down gracefully.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // a shutdown is already pending
	}
}

func setLogLevel(e *echo.Echo, level string) {
	switch strings.ToLower(level) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info", "":
		e.Logger.SetLevel(log.INFO)
	case "warn":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown log level %q, falling back to warn", level)
	}
}

func health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "OK")
}
