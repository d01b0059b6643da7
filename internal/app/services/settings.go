package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	"github.com/fr0stylo/storeconnect/internal/observability"
)

// Overview is what the settings page shows.
type Overview struct {
	State        domain.ConnectionState
	Credential   *domain.CredentialInfo
	DashboardURL string
	DebugLogging bool
}

// SettingsService backs the admin settings page.
type SettingsService struct {
	store       ports.OptionStore
	connection  *ConnectionService
	credentials *CredentialService
	debug       *observability.DebugSwitch
	baseURL     string
	log         *slog.Logger
}

// NewSettingsService constructs the settings page backend. debug is the
// process-wide switch driven by the channel3_debug option.
func NewSettingsService(store ports.OptionStore, connection *ConnectionService, credentials *CredentialService, debug *observability.DebugSwitch, baseURL string, log *slog.Logger) *SettingsService {
	if log == nil {
		log = slog.Default()
	}
	return &SettingsService{
		store:       store,
		connection:  connection,
		credentials: credentials,
		debug:       debug,
		baseURL:     strings.TrimRight(baseURL, "/"),
		log:         log,
	}
}

// Overview collects connection, credential and debug state.
func (s *SettingsService) Overview(ctx context.Context) (Overview, error) {
	state, err := s.connection.Load(ctx)
	if err != nil {
		return Overview{}, err
	}
	var info *domain.CredentialInfo
	if state.Connected {
		info, err = s.credentials.Info(ctx)
		if err != nil {
			return Overview{}, err
		}
	}
	return Overview{
		State:        state,
		Credential:   info,
		DashboardURL: DashboardURL(s.baseURL, state),
		DebugLogging: s.debug.Enabled(),
	}, nil
}

// SetDebugLogging persists the toggle and applies it to the running process.
func (s *SettingsService) SetDebugLogging(ctx context.Context, enabled bool) error {
	value := "no"
	if enabled {
		value = "yes"
	}
	if err := s.store.SetOptions(ctx, map[string]string{OptionDebug: value}); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	s.debug.Set(enabled)
	s.log.InfoContext(ctx, "debug logging updated", "enabled", enabled)
	return nil
}

// LoadDebugSwitch applies the stored toggle, falling back to fallback when the
// option was never set.
func (s *SettingsService) LoadDebugSwitch(ctx context.Context, fallback bool) error {
	raw, ok, err := s.store.GetOption(ctx, OptionDebug)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !ok {
		s.debug.Set(fallback)
		return nil
	}
	s.debug.Set(raw == "yes")
	return nil
}

// DashboardURL links to the merchant's integrations page when known.
func DashboardURL(baseURL string, state domain.ConnectionState) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if state.Connected && state.ExternalMerchantID != "" {
		return baseURL + "/brands/" + url.PathEscape(state.ExternalMerchantID) + "/integrations"
	}
	return baseURL + "/dashboard"
}
