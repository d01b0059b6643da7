package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
	"github.com/fr0stylo/storeconnect/internal/observability"
	"github.com/fr0stylo/storeconnect/internal/views"
)

// ConnectRoutes serves the connect handshake.
type ConnectRoutes struct {
	connect *appservices.ConnectService
	log     *slog.Logger
}

// NewConnectRoutes constructs the connect endpoint.
func NewConnectRoutes(connect *appservices.ConnectService, log *slog.Logger) *ConnectRoutes {
	if log == nil {
		log = slog.Default()
	}
	return &ConnectRoutes{connect: connect, log: log}
}

// RegisterRoutes registers the connect endpoint.
func (r *ConnectRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET(appservices.ConnectPath, r.handleConnect)
}

func (r *ConnectRoutes) handleConnect(c echo.Context) error {
	ctx := c.Request().Context()
	req := appservices.ParseAuthorizationRequest(c.QueryParams())

	if _, err := r.connect.Validate(req); err != nil {
		r.log.WarnContext(ctx, "connect request rejected", "error", err)
		observability.RecordConnect("invalid")
		return renderError(c, http.StatusBadRequest, msgInvalidRequest)
	}

	user, ok := authenticate(c)
	if !ok {
		observability.RecordConnect("login_required")
		return c.Redirect(http.StatusFound, loginURL(appservices.ConnectPath+"?"+c.QueryParams().Encode()))
	}
	if !user.Role.CanManageStore() {
		r.log.WarnContext(ctx, "connect denied", "user_id", user.ID, "role", user.Role)
		observability.RecordConnect("forbidden")
		return renderError(c, http.StatusForbidden, msgConnectDenied)
	}

	if !req.Confirm {
		screen, err := r.connect.Consent(req, user.Role, user.ID)
		if err != nil {
			return r.connectError(c, err)
		}
		observability.RecordConnect("consent")
		return c.Render(http.StatusOK, "", views.ConsentPage(views.ConsentView{
			StoreName:  screen.StoreName,
			ConfirmURL: screen.ConfirmURL,
			CancelURL:  screen.CancelURL,
		}))
	}

	redirect, err := r.connect.Authorize(ctx, req, user.Role, user.ID)
	if err != nil {
		if errors.Is(err, appservices.ErrUpstreamFailure) && redirect != "" {
			observability.RecordConnect("key_generation_failed")
			return c.Redirect(http.StatusFound, redirect)
		}
		return r.connectError(c, err)
	}
	observability.RecordConnect("authorized")
	return c.Redirect(http.StatusFound, redirect)
}

func (r *ConnectRoutes) connectError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, appservices.ErrInvalidRequest):
		observability.RecordConnect("invalid")
		return renderError(c, http.StatusBadRequest, msgInvalidRequest)
	case errors.Is(err, appservices.ErrForbidden):
		observability.RecordConnect("forbidden")
		return renderError(c, http.StatusForbidden, msgSecurityCheck)
	default:
		observability.RecordConnect("error")
		return err
	}
}
