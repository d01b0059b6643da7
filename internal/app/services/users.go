package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fr0stylo/storeconnect/internal/app/domain"
	"github.com/fr0stylo/storeconnect/internal/app/ports"
	"github.com/samber/lo"
)

// UserService records signed-in admins and assigns their store role.
type UserService struct {
	store         ports.AppStore
	managerEmails []string
	log           *slog.Logger
}

// NewUserService constructs the sign-in recorder. Accounts whose email is in
// managerEmails become shop managers.
func NewUserService(store ports.AppStore, managerEmails []string, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{
		store:         store,
		managerEmails: lo.Map(managerEmails, func(email string, _ int) string { return strings.ToLower(strings.TrimSpace(email)) }),
		log:           log,
	}
}

// SignIn upserts the identity. The first account ever recorded becomes the
// administrator; a manager role, once granted, is kept on later sign-ins.
func (s *UserService) SignIn(ctx context.Context, identity ports.UpsertUserInput) (ports.User, error) {
	if strings.TrimSpace(identity.GitHubID) == "" {
		return ports.User{}, fmt.Errorf("%w: missing provider user id", ErrInvalidRequest)
	}

	var user ports.User
	err := s.store.WithTx(ctx, func(tx ports.AppStore) error {
		count, err := tx.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		identity.Role = s.roleFor(identity.Email, count == 0)
		user, err = tx.UpsertUser(ctx, identity)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
		return nil
	})
	if err != nil {
		return ports.User{}, err
	}
	s.log.InfoContext(ctx, "user signed in", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// User loads a recorded account.
func (s *UserService) User(ctx context.Context, id int64) (ports.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *UserService) roleFor(email string, first bool) domain.Role {
	if first {
		return domain.RoleAdministrator
	}
	if lo.Contains(s.managerEmails, strings.ToLower(strings.TrimSpace(email))) {
		return domain.RoleShopManager
	}
	return domain.RoleCustomer
}
