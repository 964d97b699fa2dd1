package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"portfolio_gallery/internal/config"
	appmiddleware "portfolio_gallery/internal/middleware"
	httprouters "portfolio_gallery/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// bodyLimitSlack leaves room for the text fields of the upload form.
const bodyLimitSlack = 1 << 20

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	m               *http.ServeMux
	log             *slog.Logger
	e               *echo.Echo
	routers         *httprouters.Routers
	registry        *prometheus.Registry
	host            string
	port            string
	shutdownTimeout time.Duration
	staticDir       string
}

// New builds the echo server. When staticDir is set its files are served
// under /uploads, which is where the local object store points its URLs.
func New(log *slog.Logger, cfg config.HTTPConfig, maxUpload int64, staticDir string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &CustomValidator{validator: validator.New()}

	registry := prometheus.NewRegistry()

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (maxUpload+bodyLimitSlack)/1024)))
	e.Use(appmiddleware.PrometheusMetrics)
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "gallery",
		Registerer: registry,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	err := statsviz.Register(mux)
	if err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:               mux,
		log:             log,
		e:               e,
		routers:         routers,
		registry:        registry,
		host:            cfg.Host,
		port:            cfg.Port,
		shutdownTimeout: cfg.ShutdownTimeout,
		staticDir:       staticDir,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	optCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, s.registry},
	}))

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	if s.staticDir != "" {
		s.e.Static("/uploads", s.staticDir)
	}

	api := s.e.Group("/api/v1")
	{
		gallery := api.Group("/gallery")
		{
			gallery.GET("", s.routers.ListImages)
			gallery.POST("", s.routers.UploadImage)
			gallery.PATCH("/:id", s.routers.UpdateImage)
			gallery.DELETE("/:id", s.routers.DeleteImage)
		}
	}
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.host, s.port)
}
