package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	_ "net/http/pprof" //nolint:gosec
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"nodedash/pkg/log"
	"nodedash/pkg/models"
	"nodedash/pkg/status"
)

const (
	shutdownTimeout        = 10
	defaultRefreshInterval = 10 * time.Second
	rateLimiterExpiry      = 3 * time.Minute
)

//go:embed templates/index.html
var templatesFS embed.FS

// StatusProvider produces one status report per call.
type StatusProvider interface {
	Refresh(ctx context.Context, q status.Query) models.StatusReport
	Limits() status.Limits
}

// Options configures a Server.
type Options struct {
	Version         string
	RefreshInterval time.Duration
	RateLimit       float64 // requests per second per client, 0 disables
	Location        *time.Location
	DebugAddr       string // pprof listener, empty disables
}

// Server is the dashboard HTTP server.
type Server struct {
	echo            *echo.Echo
	provider        StatusProvider
	version         string
	refreshInterval time.Duration
	rateLimit       float64
	location        *time.Location
	debugAddr       string
	page            *template.Template
}

// New creates a Server backed by provider.
func New(provider StatusProvider, opts Options) *Server {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	page := template.Must(template.New("index.html").
		Funcs(templateFuncs(opts.Location)).
		ParseFS(templatesFS, "templates/index.html"))

	return &Server{
		echo:            echo.New(),
		provider:        provider,
		version:         opts.Version,
		refreshInterval: opts.RefreshInterval,
		rateLimit:       opts.RateLimit,
		location:        opts.Location,
		debugAddr:       opts.DebugAddr,
		page:            page,
	}
}

// Start serves on addr until SIGINT or SIGTERM, then shuts down gracefully.
func (srv *Server) Start(addr string) error {
	srv.setupRoutes()

	if srv.debugAddr != "" {
		go func() {
			log.Info().Msgf("Starting pprof server on %s", srv.debugAddr)
			log.Info().Msgf("%+v", http.ListenAndServe(srv.debugAddr, nil)) //nolint:gosec
		}()
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", srv.version).
			Dur("refresh_interval", srv.refreshInterval).
			Float64("rate_limit", srv.rateLimit).
			Str("time_zone", srv.location.String()).
			Msg("Starting dashboard server")

		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return srv.Shutdown()
}

// Shutdown stops the server, waiting up to shutdownTimeout seconds for in-flight requests.
func (srv *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout*time.Second)
	defer cancel()

	if err := srv.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (srv *Server) setupRoutes() {
	srv.echo.HideBanner = true
	srv.echo.HidePort = true

	srv.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	srv.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Int("status", v.Status).
				Str("method", v.Method).
				Str("uri", v.URI).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("Request")
			return nil
		},
	}))
	srv.echo.Use(middleware.Recover())

	if srv.rateLimit > 0 {
		srv.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				path := c.Path()
				return path == "/metrics" || path == "/healthz"
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(srv.rateLimit),
				Burst:     burstFor(srv.rateLimit),
				ExpiresIn: rateLimiterExpiry,
			}),
			DenyHandler: func(c echo.Context, identifier string, _ error) error {
				log.Warn().Str("client", identifier).Str("uri", c.Request().RequestURI).Msg("Rate limit exceeded")
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "too many requests",
				})
			},
		}))
	}

	srv.echo.GET("/", srv.serveIndex)
	srv.echo.GET("/api/status", srv.getStatus)
	srv.echo.GET("/healthz", srv.getHealth)
	srv.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// burstFor allows a browser tab plus a manual refresh through at once.
func burstFor(limit float64) int {
	const minBurst = 2
	if burst := int(limit * 2); burst > minBurst {
		return burst
	}
	return minBurst
}
