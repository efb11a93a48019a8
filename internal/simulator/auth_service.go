package simulator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/Neeharika2/code-assessor/internal/common/security"
	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"go.uber.org/zap"
)

type AuthService struct {
	store  *Store
	issuer *security.Issuer
	logger *zap.Logger
}

func NewAuthService(store *Store, issuer *security.Issuer, logger *zap.Logger) *AuthService {
	return &AuthService{store: store, issuer: issuer, logger: logger}
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates the account. Like the production backend it only
// acknowledges; the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, req model.Profile) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", common.ErrValidation)
	}
	role := req.Role
	switch role {
	case "":
		role = model.RoleStudent
	case model.RoleStudent, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("invalid role %q: %w", role, common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, taken := s.store.byUsername[req.Username]; taken {
		return nil, fmt.Errorf("username already exists: %w", common.ErrConflict)
	}
	s.store.nextUserID++
	u := &userRecord{
		User: model.User{
			ID:        s.store.nextUserID,
			Username:  req.Username,
			Email:     req.Email,
			Role:      role,
			CreatedAt: s.store.now(),
		},
		hashedPassword: hashedPassword,
	}
	s.store.users[u.ID] = u
	s.store.byUsername[u.Username] = u.ID
	s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username), zap.String("role", string(role)))
	out := u.User
	return &out, nil
}

// EnsureAdmin registers an admin account unless the username exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	s.store.mu.RLock()
	_, exists := s.store.byUsername[username]
	s.store.mu.RUnlock()
	if exists {
		return nil
	}
	_, err := s.Register(ctx, model.Profile{Username: username, Email: username + "@localhost", Password: password, Role: model.RoleAdmin})
	return err
}

func (s *AuthService) Login(ctx context.Context, req model.Credentials) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required: %w", common.ErrValidation)
	}

	s.store.mu.RLock()
	var user *userRecord
	if id, ok := s.store.byUsername[req.Username]; ok {
		user = s.store.users[id]
	}
	s.store.mu.RUnlock()

	// same answer for unknown user and wrong password
	if user == nil || !security.CheckPasswordHash(req.Password, user.hashedPassword) {
		return nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}

	token, err := s.issuer.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	out := user.User
	return &AuthResponse{User: &out, Token: token}, nil
}
