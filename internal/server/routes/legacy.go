package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LegacyRoutes answers the host's query-string dispatch form, /?wc-api=<name>.
type LegacyRoutes struct {
	connect    *ConnectRoutes
	disconnect *DisconnectRoutes
}

// NewLegacyRoutes routes /?wc-api= requests to the given handlers.
func NewLegacyRoutes(connect *ConnectRoutes, disconnect *DisconnectRoutes) *LegacyRoutes {
	return &LegacyRoutes{connect: connect, disconnect: disconnect}
}

// RegisterRoutes registers the root dispatcher.
func (r *LegacyRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/", r.handleRoot)
	s.POST("/", r.handleRoot)
}

func (r *LegacyRoutes) handleRoot(c echo.Context) error {
	switch c.QueryParam("wc-api") {
	case "channel3-connect":
		if c.Request().Method != http.MethodGet {
			return c.NoContent(http.StatusMethodNotAllowed)
		}
		return r.connect.handleConnect(c)
	case "channel3-disconnect":
		return r.disconnect.handleWebhook(c)
	case "":
		return c.Redirect(http.StatusFound, settingsPath)
	default:
		return c.NoContent(http.StatusNotFound)
	}
}
