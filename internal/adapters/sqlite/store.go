package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	"github.com/fr0stylo/storeconnect/internal/db/queries"
)

// Store implements ports.AppStore on top of the SQLite database.
type Store struct {
	q  queryRunner
	db storeDatabase // nil when bound to an open transaction
}

var _ ports.AppStore = (*Store)(nil)

// NewStore constructs a store over the root database handle.
func NewStore(database storeDatabase) *Store {
	return &Store{q: database, db: database}
}

// WithTx runs fn against a transaction-bound store. Calls made on a store that
// is already inside a transaction join it.
func (s *Store) WithTx(ctx context.Context, fn func(tx ports.AppStore) error) error {
	if s.db == nil {
		return fn(s)
	}
	return s.db.WithTx(ctx, func(q *queries.Queries) error {
		return fn(&Store{q: q})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(q queryRunner) error) error {
	if s.db == nil {
		return fn(s.q)
	}
	return s.db.WithTx(ctx, func(q *queries.Queries) error {
		return fn(q)
	})
}

func (s *Store) GetOption(ctx context.Context, name string) (string, bool, error) {
	value, err := s.q.GetOption(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get option %s: %w", name, err)
	}
	return value, true, nil
}

func (s *Store) SetOptions(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	names := lo.Keys(values)
	slices.Sort(names)
	return s.inTx(ctx, func(q queryRunner) error {
		for _, name := range names {
			if err := q.UpsertOption(ctx, queries.UpsertOptionParams{Name: name, Value: values[name]}); err != nil {
				return fmt.Errorf("set option %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteOptions(ctx context.Context, names ...string) error {
	names = lo.Uniq(names)
	if len(names) == 0 {
		return nil
	}
	return s.inTx(ctx, func(q queryRunner) error {
		for _, name := range names {
			if err := q.DeleteOption(ctx, name); err != nil {
				return fmt.Errorf("delete option %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) CreateAPIKey(ctx context.Context, input ports.CreateAPIKeyInput) (ports.APIKey, error) {
	row, err := s.q.CreateAPIKey(ctx, queries.CreateAPIKeyParams{
		UserID:         input.UserID,
		Description:    input.Description,
		Permissions:    input.Permissions,
		ConsumerKey:    input.ConsumerKeyHash,
		ConsumerSecret: input.ConsumerSecret,
		TruncatedKey:   input.TruncatedKey,
	})
	if err != nil {
		return ports.APIKey{}, fmt.Errorf("create api key: %w", err)
	}
	return mapAPIKey(row), nil
}

func (s *Store) GetAPIKeyByID(ctx context.Context, keyID int64) (ports.APIKey, error) {
	row, err := s.q.GetAPIKeyByID(ctx, keyID)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.APIKey{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.APIKey{}, fmt.Errorf("get api key %d: %w", keyID, err)
	}
	return mapAPIKey(row), nil
}

func (s *Store) GetAPIKeyByConsumerKey(ctx context.Context, consumerKeyHash string) (ports.APIKey, error) {
	row, err := s.q.GetAPIKeyByConsumerKey(ctx, consumerKeyHash)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.APIKey{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.APIKey{}, fmt.Errorf("get api key by consumer key: %w", err)
	}
	return mapAPIKey(row), nil
}

func (s *Store) DeleteAPIKey(ctx context.Context, keyID int64) (bool, error) {
	affected, err := s.q.DeleteAPIKey(ctx, keyID)
	if err != nil {
		return false, fmt.Errorf("delete api key %d: %w", keyID, err)
	}
	return affected > 0, nil
}

func (s *Store) TouchAPIKey(ctx context.Context, keyID int64, at time.Time) error {
	return s.q.TouchAPIKeyLastAccess(ctx, queries.TouchAPIKeyLastAccessParams{
		LastAccess: sql.NullTime{Time: at.UTC(), Valid: true},
		KeyID:      keyID,
	})
}

func (s *Store) CountAPIKeys(ctx context.Context) (int64, error) {
	return s.q.CountAPIKeys(ctx)
}

func (s *Store) UpsertUser(ctx context.Context, input ports.UpsertUserInput) (ports.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	row, err := s.q.UpsertUser(ctx, queries.UpsertUserParams{
		GithubID:  input.GitHubID,
		Email:     input.Email,
		Nickname:  input.Nickname,
		Name:      input.Name,
		AvatarUrl: input.AvatarURL,
		Role:      string(role),
	})
	if err != nil {
		return ports.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return mapUser(row), nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (ports.User, error) {
	row, err := s.q.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.User{}, ports.ErrNotFound
	}
	if err != nil {
		return ports.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return mapUser(row), nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.q.CountUsers(ctx)
}

func (s *Store) MarkOrderTracked(ctx context.Context, orderID string) (bool, error) {
	affected, err := s.q.MarkOrderTracked(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("mark order %s tracked: %w", orderID, err)
	}
	return affected > 0, nil
}

func mapAPIKey(row queries.ApiKey) ports.APIKey {
	key := ports.APIKey{
		KeyID:           row.KeyID,
		UserID:          row.UserID,
		Description:     row.Description,
		Permissions:     row.Permissions,
		ConsumerKeyHash: row.ConsumerKey,
		ConsumerSecret:  row.ConsumerSecret,
		TruncatedKey:    row.TruncatedKey,
		CreatedAt:       row.CreatedAt,
	}
	if row.LastAccess.Valid {
		at := row.LastAccess.Time
		key.LastAccess = &at
	}
	return key
}

func mapUser(row queries.User) ports.User {
	return ports.User{
		ID:        row.ID,
		GitHubID:  row.GithubID,
		Email:     row.Email,
		Nickname:  row.Nickname,
		Name:      row.Name,
		AvatarURL: row.AvatarUrl,
		Role:      domain.Role(row.Role),
	}
}
