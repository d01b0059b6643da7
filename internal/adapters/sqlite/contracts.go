package sqlite

import (
	"context"

	"github.com/fr0stylo/storeconnect/internal/db/queries"
)

// queryRunner is the subset of sqlc queries the store uses. Both the root
// database and a transaction-bound *queries.Queries satisfy it.
type queryRunner interface {
	GetOption(ctx context.Context, name string) (string, error)
	UpsertOption(ctx context.Context, arg queries.UpsertOptionParams) error
	DeleteOption(ctx context.Context, name string) error

	CreateAPIKey(ctx context.Context, arg queries.CreateAPIKeyParams) (queries.ApiKey, error)
	GetAPIKeyByID(ctx context.Context, keyID int64) (queries.ApiKey, error)
	GetAPIKeyByConsumerKey(ctx context.Context, consumerKey string) (queries.ApiKey, error)
	DeleteAPIKey(ctx context.Context, keyID int64) (int64, error)
	TouchAPIKeyLastAccess(ctx context.Context, arg queries.TouchAPIKeyLastAccessParams) error
	CountAPIKeys(ctx context.Context) (int64, error)

	UpsertUser(ctx context.Context, arg queries.UpsertUserParams) (queries.User, error)
	GetUserByID(ctx context.Context, id int64) (queries.User, error)
	CountUsers(ctx context.Context) (int64, error)

	MarkOrderTracked(ctx context.Context, orderID string) (int64, error)
}

type storeDatabase interface {
	queryRunner
	WithTx(ctx context.Context, fn func(*queries.Queries) error) error
}
