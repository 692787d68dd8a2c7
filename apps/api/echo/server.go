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

	"github.com/semillerodigital/insights/core"
	"github.com/semillerodigital/insights/core/cell"
	"github.com/semillerodigital/insights/core/classroom"
	"github.com/semillerodigital/insights/core/dashboard"
	"github.com/semillerodigital/insights/core/notification"
)

type (
	// ServerDeps holds the services the API exposes.
	ServerDeps struct {
		SyncSvc         *classroom.Service
		NotificationSvc *notification.Service
		CellSvc         *cell.Service
		DashboardSvc    *dashboard.Service
	}

	Server struct {
		app      *echo.Echo
		addr     string
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	deps ServerDeps,
) *Server {
	s := &Server{
		app:      echo.New(),
		addr:     conf.Server.Host,
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Logger.SetLevel(log.INFO)
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(logger, translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := jwtMiddleware(conf.SecretKey)

	registerSyncAPI(v1, deps.SyncSvc)
	registerNotificationAPI(v1, jwt, deps.NotificationSvc, validate)
	registerCellAPI(v1, jwt, deps.CellSvc)
	registerDashboardAPI(v1, jwt, deps.DashboardSvc)

	return s
}

// Start listens until the server is shut down; failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
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
	return ctx.String(http.StatusOK, "Welcome to Semillero Insights API!")
}
