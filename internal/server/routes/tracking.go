package routes

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
)

const (
	clientIDCookie = "channel3_client_id"
	clientIDMaxAge = 365 * 24 * time.Hour
)

// TrackingRoutes serves the storefront beacon endpoints. They never fail
// toward the storefront.
type TrackingRoutes struct {
	tracking      *appservices.TrackingService
	secureCookies bool
}

// NewTrackingRoutes constructs the beacon endpoints.
func NewTrackingRoutes(tracking *appservices.TrackingService, secureCookies bool) *TrackingRoutes {
	return &TrackingRoutes{tracking: tracking, secureCookies: secureCookies}
}

// RegisterRoutes registers the beacon endpoints.
func (r *TrackingRoutes) RegisterRoutes(s *echo.Echo) {
	g := s.Group("/channel3/tracking")
	g.GET("/config", r.handleConfig)
	g.POST("/checkout", r.handleCheckout)
}

func (r *TrackingRoutes) handleConfig(c echo.Context) error {
	r.ensureClientID(c)
	cfg, ok := r.tracking.PageView(c.Request().Context(), c.QueryParam("product_id"), c.QueryParam("sku"))
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, cfg)
}

func (r *TrackingRoutes) handleCheckout(c echo.Context) error {
	var order domain.CheckoutOrder
	if err := c.Bind(&order); err != nil {
		return c.NoContent(http.StatusNoContent)
	}
	if order.ClientID == "" {
		order.ClientID = r.ensureClientID(c)
	}
	sent, err := r.tracking.TrackCheckout(c.Request().Context(), order)
	if err != nil || !sent {
		return c.NoContent(http.StatusNoContent)
	}
	return c.NoContent(http.StatusAccepted)
}

// ensureClientID returns the visitor id, issuing a v4 id cookie when absent.
func (r *TrackingRoutes) ensureClientID(c echo.Context) string {
	if cookie, err := c.Cookie(clientIDCookie); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     clientIDCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(clientIDMaxAge.Seconds()),
		Secure:   r.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
