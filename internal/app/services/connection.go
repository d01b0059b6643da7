package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
)

// Persisted option names.
const (
	OptionConnected     = "channel3_connected"
	OptionConnectedAt   = "channel3_connected_at"
	OptionAPIKeyID      = "channel3_api_key_id"
	OptionStoreID       = "channel3_store_id"
	OptionMerchantID    = "channel3_merchant_id"
	OptionWebhookSecret = "channel3_webhook_secret"
	OptionDebug         = "channel3_debug"

	// optionRetiredSecretHash remembers the last torn-down webhook secret so
	// remote retries of a completed disconnect still authenticate.
	optionRetiredSecretHash = "channel3_retired_webhook_secret_hash"
)

// connectionOptions are written and cleared together.
var connectionOptions = []string{
	OptionConnected,
	OptionConnectedAt,
	OptionAPIKeyID,
	OptionStoreID,
	OptionMerchantID,
	OptionWebhookSecret,
}

// AllOptions lists every option this installation owns.
func AllOptions() []string {
	return append(append([]string(nil), connectionOptions...), OptionDebug, optionRetiredSecretHash)
}

// ConnectionService reads the persisted connection record.
type ConnectionService struct {
	store ports.AppStore
}

// NewConnectionService constructs the connection state reader.
func NewConnectionService(store ports.AppStore) *ConnectionService {
	return &ConnectionService{store: store}
}

// Load returns the current state. Connected is reported only when the flag is
// set and the referenced credential row still exists.
func (s *ConnectionService) Load(ctx context.Context) (domain.ConnectionState, error) {
	state, err := loadState(ctx, s.store)
	if err != nil {
		return domain.ConnectionState{}, err
	}
	if !state.Connected {
		return state, nil
	}
	if state.CredentialID <= 0 {
		state.Connected = false
		return state, nil
	}
	if _, err := s.store.GetAPIKeyByID(ctx, state.CredentialID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			state.Connected = false
			return state, nil
		}
		return domain.ConnectionState{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return state, nil
}

// IsConnected is Load(ctx).Connected.
func (s *ConnectionService) IsConnected(ctx context.Context) (bool, error) {
	state, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return state.Connected, nil
}

// loadState reads the raw option values without cross-checking the credential table.
func loadState(ctx context.Context, store ports.OptionStore) (domain.ConnectionState, error) {
	values := make(map[string]string, len(connectionOptions))
	for _, name := range connectionOptions {
		value, _, err := store.GetOption(ctx, name)
		if err != nil {
			return domain.ConnectionState{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		values[name] = value
	}

	state := domain.ConnectionState{
		Connected:          values[OptionConnected] == "yes",
		ExternalStoreID:    values[OptionStoreID],
		ExternalMerchantID: values[OptionMerchantID],
		WebhookSecret:      values[OptionWebhookSecret],
	}
	if raw := values[OptionAPIKeyID]; raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			state.CredentialID = id
		}
	}
	if raw := values[OptionConnectedAt]; raw != "" {
		if at, err := time.Parse(time.RFC3339, raw); err == nil {
			state.ConnectedAt = at
		}
	}
	return state, nil
}

func saveState(ctx context.Context, store ports.OptionStore, state domain.ConnectionState) error {
	connected := "no"
	if state.Connected {
		connected = "yes"
	}
	values := map[string]string{
		OptionConnected:     connected,
		OptionConnectedAt:   state.ConnectedAt.UTC().Format(time.RFC3339),
		OptionAPIKeyID:      strconv.FormatInt(state.CredentialID, 10),
		OptionStoreID:       state.ExternalStoreID,
		OptionMerchantID:    state.ExternalMerchantID,
		OptionWebhookSecret: state.WebhookSecret,
	}
	if err := store.SetOptions(ctx, values); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

func clearState(ctx context.Context, store ports.OptionStore) error {
	if err := store.DeleteOptions(ctx, connectionOptions...); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}
