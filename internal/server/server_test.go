package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/storeconnect/internal/observability"
)

type echoRoutes struct{}

func (echoRoutes) RegisterRoutes(e *echo.Echo) {
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.POST("/wc-api/channel3-disconnect", ok)
	e.POST("/channel3/tracking/checkout", ok)
	e.POST("/settings/channel3", ok)
	e.POST("/", ok)
}

func newTestServer() *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	public := fstest.MapFS{"js/tracking.js": {Data: []byte("console.log(1)")}}
	s := New(log, public)
	s.RegisterRouter(echoRoutes{})
	return s
}

func serve(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader("a=b"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCSRFSkipsRemoteEndpoints(t *testing.T) {
	s := newTestServer()
	for _, target := range []string{
		"/wc-api/channel3-disconnect",
		"/channel3/tracking/checkout",
		"/?wc-api=channel3-disconnect",
	} {
		if rec := serve(s, http.MethodPost, target); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}

func TestCSRFProtectsAdminForms(t *testing.T) {
	s := newTestServer()
	for _, target := range []string{"/settings/channel3", "/"} {
		rec := serve(s, http.MethodPost, target)
		if rec.Code != http.StatusBadRequest && rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected csrf rejection, got %d", target, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	observability.RecordConnect("consent")

	rec := serve(s, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "storeconnect_connect_total") {
		t.Fatalf("metrics output missing connect counter")
	}
}

func TestServesPublicAssets(t *testing.T) {
	s := newTestServer()

	rec := serve(s, http.MethodGet, "/js/tracking.js")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "console.log(1)" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
