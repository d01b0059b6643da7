package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/fr0stylo/storeconnect/internal/observability"
	"github.com/fr0stylo/storeconnect/internal/renderer"
)

// RouteRegister registers Echo routes.
type RouteRegister interface {
	RegisterRoutes(s *echo.Echo)
}

// Server holds the Echo instance.
type Server struct {
	e *echo.Echo
}

// csrfExempt lists path prefixes called by the remote service or the
// storefront, which authenticate by other means.
var csrfExempt = []string{"/wc-api/", "/channel3/tracking/"}

// New creates a new server instance.
func New(log *slog.Logger, publicFS fs.FS) *Server {
	e := echo.New()

	e.Renderer = &renderer.Renderer{}
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(observability.EchoMiddleware())
	e.Use(observability.EchoRequestMetadataMiddleware())
	e.Use(slogecho.New(log))
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		Skipper:        csrfSkipper,
	}))

	e.GET("/metrics", echo.WrapHandler(observability.MetricsHandler()))
	if publicFS != nil {
		e.StaticFS("/", publicFS)
	}

	return &Server{
		e: e,
	}
}

func csrfSkipper(c echo.Context) bool {
	path := c.Request().URL.Path
	for _, prefix := range csrfExempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if path == "/" && c.QueryParam("wc-api") != "" {
		return true
	}
	return path == "/metrics"
}

// RegisterRouter attaches a route registrar.
func (s *Server) RegisterRouter(r RouteRegister) {
	r.RegisterRoutes(s.e)
}

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start runs the HTTP server.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
