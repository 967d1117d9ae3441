package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"todosome/internal/config"
	authhandler "todosome/internal/http/handlers/auth"
	taskshandler "todosome/internal/http/handlers/tasks"
	"todosome/internal/http/middleware"
)

const shutdownTimeout = 5 * time.Second

// Pinger reports storage health
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	log        *slog.Logger
	httpServer *http.Server
	router     *gin.Engine
	address    string
}

// New creates new HTTP server app
func New(
	env string,
	log *slog.Logger,
	cfg config.HTTPConfig,
	authService authhandler.Auth,
	tasksService taskshandler.Tasks,
	authorizer middleware.Authorizer,
	pinger Pinger,
) *App {
	if env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.CORS(), middleware.RequestLogger(log))

	router.GET("/healthz", func(c *gin.Context) {
		if err := pinger.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	guard := middleware.Auth(authorizer)
	api := router.Group(cfg.BasePath)
	authhandler.NewHandler(authService).Register(api, guard)
	taskshandler.NewHandler(tasksService).Register(api, guard)

	return &App{
		log:    log,
		router: router,
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      router,
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		address: cfg.Address,
	}
}

// Handler exposes router, used by tests
func (a *App) Handler() http.Handler {
	return a.router
}

// MustRun runs HTTP server and panic if any occurs
func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

// Run http server
func (a *App) Run() error {
	const op = "httpapp.Run"

	log := a.log.With(slog.String("op", op),
		slog.String("address", a.address),
	)

	l, err := net.Listen("tcp", a.address)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("starting HTTP server", slog.String("addr", l.Addr().String()))

	if err := a.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop http server, in-flight requests get shutdownTimeout to finish
func (a *App) Stop() {
	const op = "httpapp.Stop"
	log := a.log.With(slog.String("op", op))

	log.Info("stopping HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", slog.String("error", err.Error()))
	}
}
