package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/storeconnect/internal/views"
)

const (
	msgInvalidRequest   = "Invalid request."
	msgConnectDenied    = "You do not have permission to connect this store."
	msgDisconnectDenied = "You do not have permission to disconnect this store."
	msgSecurityCheck    = "Security check failed."
)

func renderError(c echo.Context, status int, message string) error {
	return c.Render(status, "", views.ErrorPage(views.ErrorView{Message: message}))
}
