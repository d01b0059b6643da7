package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
	"github.com/fr0stylo/storeconnect/internal/views"
)

const (
	settingsPath           = "/settings/channel3"
	settingsDisconnectPath = "/settings/channel3/disconnect"
	disconnectTokenParam   = "channel3_nonce"
)

// SettingsRoutes serves the admin settings page and the local disconnect.
type SettingsRoutes struct {
	settings   *appservices.SettingsService
	disconnect *appservices.DisconnectService
	log        *slog.Logger
}

// NewSettingsRoutes constructs the settings endpoints.
func NewSettingsRoutes(settings *appservices.SettingsService, disconnect *appservices.DisconnectService, log *slog.Logger) *SettingsRoutes {
	if log == nil {
		log = slog.Default()
	}
	return &SettingsRoutes{settings: settings, disconnect: disconnect, log: log}
}

// RegisterRoutes registers the settings endpoints behind RequireAuth.
func (r *SettingsRoutes) RegisterRoutes(s *echo.Echo) {
	g := s.Group(settingsPath, RequireAuth)
	g.GET("", r.handleSettings)
	g.POST("", r.handleSettingsUpdate)
	g.GET("/disconnect", r.handleDisconnect)
}

func (r *SettingsRoutes) handleSettings(c echo.Context) error {
	user, _ := GetAuthUser(c)
	if !user.Role.CanManageStore() {
		return renderError(c, http.StatusForbidden, "You do not have permission to manage this store.")
	}

	overview, err := r.settings.Overview(c.Request().Context())
	if err != nil {
		return err
	}
	view := views.SettingsView{
		UserName:     user.Name,
		Connected:    overview.State.Connected,
		ConnectedAt:  overview.State.ConnectedAt,
		StoreID:      overview.State.ExternalStoreID,
		MerchantID:   overview.State.ExternalMerchantID,
		DashboardURL: overview.DashboardURL,
		DebugLogging: overview.DebugLogging,
		Disconnected: c.QueryParam("disconnected") == "1",
		Saved:        c.QueryParam("saved") == "1",
		CSRFToken:    csrfToken(c),
	}
	if overview.Credential != nil {
		view.TruncatedKey = overview.Credential.TruncatedKey
		view.LastAccess = overview.Credential.LastAccess
	}
	if overview.State.Connected {
		token, err := r.disconnect.DisconnectToken(user.ID)
		if err != nil {
			return err
		}
		view.DisconnectURL = settingsDisconnectPath + "?" + url.Values{disconnectTokenParam: {token}}.Encode()
	}
	return c.Render(http.StatusOK, "", views.SettingsPage(view))
}

func (r *SettingsRoutes) handleSettingsUpdate(c echo.Context) error {
	user, _ := GetAuthUser(c)
	if !user.Role.CanManageStore() {
		return renderError(c, http.StatusForbidden, "You do not have permission to manage this store.")
	}
	if err := r.settings.SetDebugLogging(c.Request().Context(), c.FormValue("debug") == "yes"); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, settingsPath+"?saved=1")
}

func (r *SettingsRoutes) handleDisconnect(c echo.Context) error {
	user, _ := GetAuthUser(c)
	_, err := r.disconnect.DisconnectLocal(c.Request().Context(), user.Role, user.ID, c.QueryParam(disconnectTokenParam))
	if err != nil {
		if errors.Is(err, appservices.ErrForbidden) {
			if !user.Role.CanManageStore() {
				return renderError(c, http.StatusForbidden, msgDisconnectDenied)
			}
			return renderError(c, http.StatusForbidden, msgSecurityCheck)
		}
		return err
	}
	return c.Redirect(http.StatusFound, settingsPath+"?disconnected=1")
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
