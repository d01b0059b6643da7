package services

import (
	"context"
	"errors"
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
)

// memStore is an in-memory ports.AppStore. WithTx snapshots the tables and
// restores them when fn fails.
type memStore struct {
	mu sync.Mutex

	options map[string]string
	keys    map[int64]ports.APIKey
	users   map[int64]ports.User
	orders  map[string]bool
	nextKey int64

	createErr error
	setErr    error
}

func newMemStore() *memStore {
	return &memStore{
		options: map[string]string{},
		keys:    map[int64]ports.APIKey{},
		users:   map[int64]ports.User{},
		orders:  map[string]bool{},
	}
}

func (s *memStore) addUser(id int64, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = ports.User{ID: id, GitHubID: "gh-" + strconv.FormatInt(id, 10), Role: role}
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx ports.AppStore) error) error {
	s.mu.Lock()
	options := maps.Clone(s.options)
	keys := maps.Clone(s.keys)
	users := maps.Clone(s.users)
	orders := maps.Clone(s.orders)
	nextKey := s.nextKey
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.options, s.keys, s.users, s.orders, s.nextKey = options, keys, users, orders, nextKey
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) GetOption(_ context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.options[name]
	return value, ok, nil
}

func (s *memStore) SetOptions(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	maps.Copy(s.options, values)
	return nil
}

func (s *memStore) DeleteOptions(_ context.Context, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		delete(s.options, name)
	}
	return nil
}

func (s *memStore) CreateAPIKey(_ context.Context, input ports.CreateAPIKeyInput) (ports.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return ports.APIKey{}, s.createErr
	}
	s.nextKey++
	key := ports.APIKey{
		KeyID:           s.nextKey,
		UserID:          input.UserID,
		Description:     input.Description,
		Permissions:     input.Permissions,
		ConsumerKeyHash: input.ConsumerKeyHash,
		ConsumerSecret:  input.ConsumerSecret,
		TruncatedKey:    input.TruncatedKey,
		CreatedAt:       time.Now().UTC(),
	}
	s.keys[key.KeyID] = key
	return key, nil
}

func (s *memStore) GetAPIKeyByID(_ context.Context, keyID int64) (ports.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[keyID]
	if !ok {
		return ports.APIKey{}, ports.ErrNotFound
	}
	return key, nil
}

func (s *memStore) GetAPIKeyByConsumerKey(_ context.Context, hash string) (ports.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.keys {
		if key.ConsumerKeyHash == hash {
			return key, nil
		}
	}
	return ports.APIKey{}, ports.ErrNotFound
}

func (s *memStore) DeleteAPIKey(_ context.Context, keyID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[keyID]
	delete(s.keys, keyID)
	return ok, nil
}

func (s *memStore) TouchAPIKey(_ context.Context, keyID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[keyID]
	if !ok {
		return nil
	}
	at = at.UTC()
	key.LastAccess = &at
	s.keys[keyID] = key
	return nil
}

func (s *memStore) CountAPIKeys(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.keys)), nil
}

func (s *memStore) UpsertUser(_ context.Context, input ports.UpsertUserInput) (ports.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, user := range s.users {
		if user.GitHubID != input.GitHubID {
			continue
		}
		user.Email, user.Nickname, user.Name, user.AvatarURL = input.Email, input.Nickname, input.Name, input.AvatarURL
		if !user.Role.CanManageStore() {
			user.Role = input.Role
		}
		s.users[id] = user
		return user, nil
	}
	id := int64(len(s.users) + 1)
	user := ports.User{
		ID:        id,
		GitHubID:  input.GitHubID,
		Email:     input.Email,
		Nickname:  input.Nickname,
		Name:      input.Name,
		AvatarURL: input.AvatarURL,
		Role:      input.Role,
	}
	s.users[id] = user
	return user, nil
}

func (s *memStore) GetUserByID(_ context.Context, id int64) (ports.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return ports.User{}, ports.ErrNotFound
	}
	return user, nil
}

func (s *memStore) CountUsers(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *memStore) MarkOrderTracked(_ context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders[orderID] {
		return false, nil
	}
	s.orders[orderID] = true
	return true, nil
}

func (s *memStore) optionsSnapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.options)
}

func (s *memStore) keyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

var errBoom = errors.New("boom")

var _ ports.AppStore = (*memStore)(nil)
