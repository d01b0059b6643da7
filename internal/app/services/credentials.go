package services

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
)

const (
	credentialDescription = "Channel3 - Product Catalog Sync"
	consumerKeyPrefix     = "ck_"
	consumerSecretPrefix  = "cs_"
	truncatedKeyLength    = 7
	consumerKeyHashKey    = "wc-api"
)

// CredentialService owns the single active Channel3 credential. Every write
// path runs under one installation-scoped lock and inside one store transaction.
type CredentialService struct {
	store  ports.AppStore
	log    *slog.Logger
	random io.Reader

	mu sync.Mutex
}

// NewCredentialService constructs the credential store.
func NewCredentialService(store ports.AppStore, log *slog.Logger) *CredentialService {
	if log == nil {
		log = slog.Default()
	}
	return &CredentialService{store: store, log: log, random: rand.Reader}
}

// Locked runs fn inside a transaction while holding the installation lock.
// Connect and teardown go through here so revoke-then-create never interleaves.
func (s *CredentialService) Locked(ctx context.Context, fn func(tx ports.AppStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.WithTx(ctx, fn)
}

// Issue revokes any active credential, creates a read-only one for ownerID and
// returns its plaintext pair. The pair is not retrievable afterwards.
func (s *CredentialService) Issue(ctx context.Context, ownerID int64) (domain.IssuedCredential, error) {
	var issued domain.IssuedCredential
	err := s.Locked(ctx, func(tx ports.AppStore) error {
		var err error
		issued, err = s.issueTx(ctx, tx, ownerID)
		return err
	})
	return issued, err
}

// Revoke deletes the active credential. It succeeds when there is none.
func (s *CredentialService) Revoke(ctx context.Context) error {
	return s.Locked(ctx, func(tx ports.AppStore) error {
		_, err := s.revokeTx(ctx, tx)
		return err
	})
}

// Exists reports whether the active credential row is present.
func (s *CredentialService) Exists(ctx context.Context) (bool, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

// Info describes the active credential without its secret. It returns nil when there is none.
func (s *CredentialService) Info(ctx context.Context) (*domain.CredentialInfo, error) {
	keyID, err := activeCredentialID(ctx, s.store)
	if err != nil || keyID <= 0 {
		return nil, err
	}
	key, err := s.store.GetAPIKeyByID(ctx, keyID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return &domain.CredentialInfo{
		KeyID:        key.KeyID,
		UserID:       key.UserID,
		Description:  key.Description,
		Permissions:  key.Permissions,
		TruncatedKey: key.TruncatedKey,
		LastAccess:   key.LastAccess,
	}, nil
}

func (s *CredentialService) issueTx(ctx context.Context, tx ports.AppStore, ownerID int64) (domain.IssuedCredential, error) {
	if ownerID <= 0 {
		s.log.WarnContext(ctx, "credential issue rejected", "reason", "no owner")
		return domain.IssuedCredential{}, ErrNoOwner
	}
	if _, err := tx.GetUserByID(ctx, ownerID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.log.WarnContext(ctx, "credential issue rejected", "reason", "owner not found", "user_id", ownerID)
			return domain.IssuedCredential{}, ErrNoOwner
		}
		return domain.IssuedCredential{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if _, err := s.revokeTx(ctx, tx); err != nil {
		return domain.IssuedCredential{}, err
	}

	consumerKey, err := s.randomToken(consumerKeyPrefix)
	if err != nil {
		return domain.IssuedCredential{}, err
	}
	consumerSecret, err := s.randomToken(consumerSecretPrefix)
	if err != nil {
		return domain.IssuedCredential{}, err
	}
	truncated := consumerKey[len(consumerKey)-truncatedKeyLength:]

	key, err := tx.CreateAPIKey(ctx, ports.CreateAPIKeyInput{
		UserID:          ownerID,
		Description:     credentialDescription,
		Permissions:     domain.PermissionRead,
		ConsumerKeyHash: HashConsumerKey(consumerKey),
		ConsumerSecret:  consumerSecret,
		TruncatedKey:    truncated,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "credential insert failed", "error", err)
		return domain.IssuedCredential{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if err := tx.SetOptions(ctx, map[string]string{OptionAPIKeyID: strconv.FormatInt(key.KeyID, 10)}); err != nil {
		return domain.IssuedCredential{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.log.InfoContext(ctx, "credential issued", "key_id", key.KeyID, "user_id", ownerID, "truncated_key", truncated)
	return domain.IssuedCredential{
		ID:             key.KeyID,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		TruncatedKey:   truncated,
	}, nil
}

// revokeTx reports whether a credential row was deleted.
func (s *CredentialService) revokeTx(ctx context.Context, tx ports.AppStore) (bool, error) {
	keyID, err := activeCredentialID(ctx, tx)
	if err != nil {
		return false, err
	}
	if keyID <= 0 {
		s.log.DebugContext(ctx, "credential revoke skipped", "reason", "no active credential")
		return false, nil
	}
	deleted, err := tx.DeleteAPIKey(ctx, keyID)
	if err != nil {
		s.log.ErrorContext(ctx, "credential revoke failed", "key_id", keyID, "error", err)
		return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if err := tx.DeleteOptions(ctx, OptionAPIKeyID); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	s.log.InfoContext(ctx, "credential revoked", "key_id", keyID, "row_deleted", deleted)
	return deleted, nil
}

func (s *CredentialService) randomToken(prefix string) (string, error) {
	buf := make([]byte, 20)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("%w: read random: %v", ErrStorageFailure, err)
	}
	return prefix + hex.EncodeToString(buf), nil
}

func activeCredentialID(ctx context.Context, store ports.OptionStore) (int64, error) {
	raw, ok, err := store.GetOption(ctx, OptionAPIKeyID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !ok || raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return id, nil
}

// HashConsumerKey returns the stored form of a consumer key, HMAC-SHA256 keyed
// with "wc-api", matching the host REST layer's lookup.
func HashConsumerKey(consumerKey string) string {
	mac := hmac.New(sha256.New, []byte(consumerKeyHashKey))
	mac.Write([]byte(consumerKey))
	return hex.EncodeToString(mac.Sum(nil))
}
