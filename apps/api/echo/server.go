package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/auth"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/coursework"
	"github.com/trezcool/academia/core/principal"
)

type (
	ServerDeps struct {
		Conf          *core.Config
		Logger        core.Logger
		AuthSvc       *auth.Service
		PrincipalSvc  *principal.Service
		CourseSvc     *course.Service
		CourseworkSvc *coursework.Service
		Validate      *validator.Validate
		Translator    ut.Translator
		Registry      *prometheus.Registry // optional
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf
	reg := s.deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := newMetrics(reg)

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowCredentials: true,
	}))
	s.app.Use(metrics.middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(metrics.handler))

	tokens := s.deps.AuthSvc.Tokens()
	registerAuthAPI(s.app, s.deps.AuthSvc, s.deps.Validate)
	registerAdminAPI(
		s.app.Group("/admin", authMiddleware(tokens), roleMiddleware(principal.RoleAdmin, s.deps.PrincipalSvc)),
		s.deps.PrincipalSvc, s.deps.CourseSvc, s.deps.Validate,
	)
	registerProfessorAPI(
		s.app.Group("/professor", authMiddleware(tokens), roleMiddleware(principal.RoleProfessor, s.deps.PrincipalSvc)),
		s.deps.PrincipalSvc, s.deps.CourseSvc, s.deps.CourseworkSvc, s.deps.Validate,
	)
	registerStudentAPI(
		s.app.Group("/student", authMiddleware(tokens), roleMiddleware(principal.RoleStudent, s.deps.PrincipalSvc)),
		s.deps.PrincipalSvc, s.deps.CourseSvc, s.deps.CourseworkSvc, s.deps.Validate,
	)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Academia API!")
}
