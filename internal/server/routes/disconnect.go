package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
)

// DisconnectPath is the remote disconnect webhook.
const DisconnectPath = "/wc-api/channel3-disconnect"

type disconnectResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	WasConnected *bool  `json:"was_connected,omitempty"`
}

// DisconnectRoutes serves the remote disconnect webhook.
type DisconnectRoutes struct {
	disconnect *appservices.DisconnectService
}

// NewDisconnectRoutes constructs the webhook endpoint.
func NewDisconnectRoutes(disconnect *appservices.DisconnectService) *DisconnectRoutes {
	return &DisconnectRoutes{disconnect: disconnect}
}

// RegisterRoutes registers the webhook for GET and POST.
func (r *DisconnectRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET(DisconnectPath, r.handleWebhook)
	s.POST(DisconnectPath, r.handleWebhook)
}

func (r *DisconnectRoutes) handleWebhook(c echo.Context) error {
	storeURL := c.FormValue("store_url")
	secret := c.FormValue("webhook_secret")

	wasConnected, err := r.disconnect.HandleWebhook(c.Request().Context(), storeURL, secret)
	if err != nil {
		if errors.Is(err, appservices.ErrInvalidRequest) {
			return c.JSON(http.StatusBadRequest, disconnectResponse{Message: msgInvalidRequest})
		}
		return err
	}
	return c.JSON(http.StatusOK, disconnectResponse{
		Success:      true,
		Message:      "Store disconnected successfully.",
		WasConnected: &wasConnected,
	})
}
