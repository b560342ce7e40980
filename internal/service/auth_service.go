package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tgyn-admin-api/internal/auth"
	"github.com/tgyn-admin-api/internal/models"
	"github.com/tgyn-admin-api/internal/repository"
)

// authService is the concrete implementation of AuthService
type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    zerolog.Logger
}

// newAuthService creates a new auth service
func newAuthService(users repository.UserRepository, tokens *auth.TokenManager, log zerolog.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		log:    log.With().Str("service", "auth").Logger(),
	}
}

// Login verifies credentials against the Users worksheet and issues an
// access token. Lookup and verification failures are indistinguishable to
// the caller.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.VerifyPassword(user.Password, req.Password) {
		s.log.Warn().Str("username", req.Username).Msg("Login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("User logged in")

	return &models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        *user,
	}, nil
}
