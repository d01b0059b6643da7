package ports

import (
	"context"
	"errors"
	"time"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
)

// ErrNotFound is returned by stores when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// AppStore defines storage operations used by route/application layer.
// WithTx hands fn a store bound to one transaction; fn's error rolls it back.
type AppStore interface {
	OptionStore
	CredentialStore
	UserStore
	OrderTrackingStore

	WithTx(ctx context.Context, fn func(tx AppStore) error) error
}

// OptionStore is the installation's key/value option table.
type OptionStore interface {
	// GetOption returns ("", false, nil) for an unset option.
	GetOption(ctx context.Context, name string) (string, bool, error)
	// SetOptions writes all values together.
	SetOptions(ctx context.Context, values map[string]string) error
	// DeleteOptions removes all names together. Missing names are ignored.
	DeleteOptions(ctx context.Context, names ...string) error
}

// CredentialStore is the host REST credential table.
type CredentialStore interface {
	CreateAPIKey(ctx context.Context, input CreateAPIKeyInput) (APIKey, error)
	GetAPIKeyByID(ctx context.Context, keyID int64) (APIKey, error)
	GetAPIKeyByConsumerKey(ctx context.Context, consumerKeyHash string) (APIKey, error)
	// DeleteAPIKey reports whether a row was removed.
	DeleteAPIKey(ctx context.Context, keyID int64) (bool, error)
	TouchAPIKey(ctx context.Context, keyID int64, at time.Time) error
	CountAPIKeys(ctx context.Context) (int64, error)
}

// UserStore holds local admin identities.
type UserStore interface {
	UpsertUser(ctx context.Context, input UpsertUserInput) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// OrderTrackingStore holds the per-order checkout idempotency marker.
type OrderTrackingStore interface {
	// MarkOrderTracked reports true only for the first call per order id.
	MarkOrderTracked(ctx context.Context, orderID string) (bool, error)
}

// APIKey is one stored REST credential. ConsumerKeyHash never holds the plaintext key.
type APIKey struct {
	KeyID           int64
	UserID          int64
	Description     string
	Permissions     string
	ConsumerKeyHash string
	ConsumerSecret  string
	TruncatedKey    string
	LastAccess      *time.Time
	CreatedAt       time.Time
}

// CreateAPIKeyInput represents credential creation fields.
type CreateAPIKeyInput struct {
	UserID          int64
	Description     string
	Permissions     string
	ConsumerKeyHash string
	ConsumerSecret  string
	TruncatedKey    string
}

// UpsertUserInput contains user identity fields from OAuth login.
type UpsertUserInput struct {
	GitHubID  string
	Email     string
	Nickname  string
	Name      string
	AvatarURL string
	Role      domain.Role
}

// User is a local authenticated identity record.
type User struct {
	ID        int64
	GitHubID  string
	Email     string
	Nickname  string
	Name      string
	AvatarURL string
	Role      domain.Role
}
