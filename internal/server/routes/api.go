package routes

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	appservices "github.com/fr0stylo/storeconnect/internal/app/services"
)

// StatusPath lets the remote service check the credential it holds.
const StatusPath = "/wc-api/channel3-status"

const apiKeyContextKey = "apiKey"

// RequireAPIKey authenticates a consumer key pair sent with HTTP Basic auth
// or as consumer_key/consumer_secret query parameters.
func RequireAPIKey(keys ports.CredentialStore, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			consumerKey, consumerSecret, ok := c.Request().BasicAuth()
			if !ok {
				consumerKey = c.QueryParam("consumer_key")
				consumerSecret = c.QueryParam("consumer_secret")
			}
			consumerKey = strings.TrimSpace(consumerKey)
			if consumerKey == "" || consumerSecret == "" {
				return unauthorized(c)
			}

			key, err := keys.GetAPIKeyByConsumerKey(ctx, appservices.HashConsumerKey(consumerKey))
			if errors.Is(err, ports.ErrNotFound) {
				return unauthorized(c)
			}
			if err != nil {
				return err
			}
			if subtle.ConstantTimeCompare([]byte(key.ConsumerSecret), []byte(consumerSecret)) != 1 {
				log.WarnContext(ctx, "api key secret mismatch", "key_id", key.KeyID)
				return unauthorized(c)
			}
			if !strings.HasPrefix(key.Permissions, domain.PermissionRead) {
				return c.JSON(http.StatusForbidden, map[string]string{"message": "The API key does not grant read access."})
			}
			if err := keys.TouchAPIKey(ctx, key.KeyID, time.Now()); err != nil {
				log.WarnContext(ctx, "api key last access update failed", "key_id", key.KeyID, "error", err)
			}
			c.Set(apiKeyContextKey, key)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="storeconnect"`)
	return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Consumer key or secret is invalid."})
}

type statusResponse struct {
	Connected   bool                   `json:"connected"`
	ConnectedAt *time.Time             `json:"connected_at"`
	StoreURL    string                 `json:"store_url"`
	Key         *domain.CredentialInfo `json:"key"`
}

// APIRoutes serves endpoints authenticated with the issued credential.
type APIRoutes struct {
	keys        ports.CredentialStore
	connection  *appservices.ConnectionService
	credentials *appservices.CredentialService
	storeURL    string
	log         *slog.Logger
}

// NewAPIRoutes constructs the credential-authenticated endpoints.
func NewAPIRoutes(keys ports.CredentialStore, connection *appservices.ConnectionService, credentials *appservices.CredentialService, storeURL string, log *slog.Logger) *APIRoutes {
	return &APIRoutes{keys: keys, connection: connection, credentials: credentials, storeURL: storeURL, log: log}
}

// RegisterRoutes registers API endpoints.
func (a *APIRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET(StatusPath, a.handleStatus, RequireAPIKey(a.keys, a.log))
}

func (a *APIRoutes) handleStatus(c echo.Context) error {
	ctx := c.Request().Context()
	state, err := a.connection.Load(ctx)
	if err != nil {
		return err
	}
	info, err := a.credentials.Info(ctx)
	if err != nil {
		return err
	}
	resp := statusResponse{Connected: state.Connected, StoreURL: a.storeURL, Key: info}
	if state.Connected && !state.ConnectedAt.IsZero() {
		connectedAt := state.ConnectedAt
		resp.ConnectedAt = &connectedAt
	}
	return c.JSON(http.StatusOK, resp)
}
