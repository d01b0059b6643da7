package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	"github.com/fr0stylo/storeconnect/internal/observability"
)

// Teardown sources, used for logging and metrics.
const (
	SourceLocal     = "local"
	SourceWebhook   = "webhook"
	SourceUninstall = "uninstall"
)

// DisconnectService tears down the connection from either side.
type DisconnectService struct {
	credentials *CredentialService
	tokens      *ActionTokens
	notifier    ports.DisconnectNotifier
	storeURL    string
	log         *slog.Logger
}

// NewDisconnectService constructs the disconnect flow. notifier may be nil, in
// which case local disconnects skip the remote notification.
func NewDisconnectService(credentials *CredentialService, tokens *ActionTokens, notifier ports.DisconnectNotifier, storeURL string, log *slog.Logger) *DisconnectService {
	if log == nil {
		log = slog.Default()
	}
	return &DisconnectService{
		credentials: credentials,
		tokens:      tokens,
		notifier:    notifier,
		storeURL:    storeURL,
		log:         log,
	}
}

// Teardown revokes the credential and clears every connection option in one
// transaction. It reports whether the store was connected beforehand and
// succeeds when there is nothing to tear down.
func (s *DisconnectService) Teardown(ctx context.Context, source string) (bool, error) {
	return s.teardownIf(ctx, source, nil)
}

// teardownIf runs check and the teardown in the same locked transaction, so a
// reconnect cannot land between verification and clearing. A check failure
// mutates nothing.
func (s *DisconnectService) teardownIf(ctx context.Context, source string, check func(tx ports.AppStore) error) (bool, error) {
	var (
		wasConnected bool
		rejected     bool
	)
	err := s.credentials.Locked(ctx, func(tx ports.AppStore) error {
		if check != nil {
			if err := check(tx); err != nil {
				rejected = true
				return err
			}
		}
		state, err := loadState(ctx, tx)
		if err != nil {
			return err
		}
		wasConnected = state.Connected
		if _, err := s.credentials.revokeTx(ctx, tx); err != nil {
			return err
		}
		if err := clearState(ctx, tx); err != nil {
			return err
		}
		if state.WebhookSecret != "" {
			if err := tx.SetOptions(ctx, map[string]string{optionRetiredSecretHash: secretHash(state.WebhookSecret)}); err != nil {
				return fmt.Errorf("%w: %v", ErrStorageFailure, err)
			}
		}
		return nil
	})
	if rejected {
		s.log.WarnContext(ctx, "disconnect rejected", "disconnect_source", source, "error", err)
		observability.RecordDisconnect(source, "rejected")
		return false, err
	}
	if err != nil {
		s.log.ErrorContext(ctx, "disconnect teardown failed", "disconnect_source", source, "error", err)
		observability.RecordDisconnect(source, "error")
		return false, err
	}
	s.log.InfoContext(ctx, "store disconnected", "disconnect_source", source, "was_connected", wasConnected)
	observability.RecordDisconnect(source, "ok")
	return wasConnected, nil
}

// verifyWebhook compares the secret in constant time and the store URL after
// stripping the scheme and trailing slash. When no secret is stored, the hash
// of the secret retired by the last teardown is accepted.
func (s *DisconnectService) verifyWebhook(ctx context.Context, store ports.OptionStore, storeURL, secret string) error {
	if strings.TrimSpace(storeURL) == "" || secret == "" {
		return fmt.Errorf("%w: missing store_url or webhook_secret", ErrInvalidRequest)
	}

	current, _, err := store.GetOption(ctx, OptionWebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if current != "" {
		if subtle.ConstantTimeCompare([]byte(current), []byte(secret)) != 1 {
			return fmt.Errorf("%w: webhook secret mismatch", ErrInvalidRequest)
		}
	} else {
		retired, _, err := store.GetOption(ctx, optionRetiredSecretHash)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		if retired == "" || subtle.ConstantTimeCompare([]byte(retired), []byte(secretHash(secret))) != 1 {
			return fmt.Errorf("%w: webhook secret mismatch", ErrInvalidRequest)
		}
	}

	if NormalizeStoreURL(storeURL) != NormalizeStoreURL(s.storeURL) {
		return fmt.Errorf("%w: store_url mismatch", ErrInvalidRequest)
	}
	return nil
}

// HandleWebhook verifies a remote disconnect and tears down under the same
// lock. Retries after a completed teardown succeed with wasConnected=false.
func (s *DisconnectService) HandleWebhook(ctx context.Context, storeURL, secret string) (bool, error) {
	if strings.TrimSpace(storeURL) == "" || secret == "" {
		observability.RecordDisconnect(SourceWebhook, "rejected")
		return false, fmt.Errorf("%w: missing store_url or webhook_secret", ErrInvalidRequest)
	}
	return s.teardownIf(ctx, SourceWebhook, func(tx ports.AppStore) error {
		return s.verifyWebhook(ctx, tx, storeURL, secret)
	})
}

// DisconnectLocal runs the settings-page disconnect: capability and token
// check, best-effort notification, then teardown regardless of the notification.
func (s *DisconnectService) DisconnectLocal(ctx context.Context, role domain.Role, userID int64, token string) (bool, error) {
	if !role.CanManageStore() {
		return false, fmt.Errorf("%w: manage-store capability required", ErrForbidden)
	}
	if err := s.tokens.Verify(ActionDisconnect, userID, token); err != nil {
		s.log.WarnContext(ctx, "local disconnect rejected", "user_id", userID, "error", err)
		return false, err
	}

	s.notify(ctx)
	return s.Teardown(ctx, SourceLocal)
}

// DisconnectToken issues the anti-forgery token for the settings disconnect link.
func (s *DisconnectService) DisconnectToken(userID int64) (string, error) {
	return s.tokens.Issue(ActionDisconnect, userID)
}

func (s *DisconnectService) notify(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyDisconnect(ctx, s.storeURL); err != nil {
		s.log.WarnContext(ctx, "disconnect notification failed",
			"store_url", s.storeURL,
			"error", fmt.Errorf("%w: %w", ErrNotificationFailure, err),
		)
		observability.RecordNotify("error")
		return
	}
	s.log.InfoContext(ctx, "disconnect notification sent", "store_url", s.storeURL)
	observability.RecordNotify("ok")
}

// NormalizeStoreURL strips the http(s) scheme and trailing slashes.
func NormalizeStoreURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "https://"):
		raw = raw[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		raw = raw[len("http://"):]
	}
	return strings.TrimRight(raw, "/")
}

func secretHash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Uninstall revokes the credential and deletes every option this installation
// owns, including the debug toggle. No notification is sent.
func (s *DisconnectService) Uninstall(ctx context.Context) error {
	err := s.credentials.Locked(ctx, func(tx ports.AppStore) error {
		if _, err := s.credentials.revokeTx(ctx, tx); err != nil {
			return err
		}
		if err := tx.DeleteOptions(ctx, AllOptions()...); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		observability.RecordDisconnect(SourceUninstall, "error")
		return err
	}
	s.log.InfoContext(ctx, "installation data removed")
	observability.RecordDisconnect(SourceUninstall, "ok")
	return nil
}
