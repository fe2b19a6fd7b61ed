package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/makemyfuture/planner/core"
	"github.com/makemyfuture/planner/core/catalog"
	"github.com/makemyfuture/planner/core/schedule"
	"github.com/makemyfuture/planner/core/user"
)

type Server struct {
	conf   *core.Config
	logger core.Logger
	app    *echo.Echo

	errCh      chan error
	shutdownCh chan os.Signal
}

func NewServer(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	userSvc user.ServiceInterface,
	scheduleSvc schedule.ServiceInterface,
	loader *catalog.Loader,
) *Server {
	s := &Server{
		conf:       conf,
		logger:     logger,
		app:        echo.New(),
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownCh, os.Interrupt, syscall.SIGTERM)
	s.setup(validate, translator, userSvc, scheduleSvc, loader)
	return s
}

func (s *Server) setup(
	validate *validator.Validate,
	translator ut.Translator,
	userSvc user.ServiceInterface,
	scheduleSvc schedule.ServiceInterface,
	loader *catalog.Loader,
) {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, translator, s.signalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := ConfigureAuth(s.conf)

	registerUserAPI(v1, jwt, userSvc, validate, translator)
	registerScheduleAPI(v1, jwt, scheduleSvc, userSvc, validate)
	registerCatalogAPI(v1, loader)
}

// Start begins serving; server errors are reported on Errors.
func (s *Server) Start() {
	go func() {
		s.errCh <- s.app.Start(s.conf.Address())
	}()
}

func (s *Server) Errors() <-chan error { return s.errCh }

// ShutdownSignal delivers OS interrupt/terminate signals and internal
// shutdown requests raised by the error handler.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdownCh }

func (s *Server) signalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to MakeMyFuture API!")
}
