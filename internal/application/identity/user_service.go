package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService manages back office users
type UserService struct {
	users  identity.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Create adds a user; the e-mail must not be taken
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	_, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	switch {
	case err == nil:
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A user with this email already exists")
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	user, err := identity.NewUser(req.Email, req.Name, req.Password, toRoles(req.Roles)...)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.Strings("roles", req.Roles))
	resp := ToUserResponse(user)
	return &resp, nil
}

// EnsureUser creates the user unless one with the e-mail exists. Seeding runs
// it on every start.
func (s *UserService) EnsureUser(ctx context.Context, req CreateUserRequest) (*UserResponse, bool, error) {
	existing, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err == nil {
		resp := ToUserResponse(existing)
		return &resp, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}
	resp, err := s.Create(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return resp, true, nil
}
