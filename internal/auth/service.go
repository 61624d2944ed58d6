package auth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	audit "github.com/wardenhq/warden/internal/auditlog"
	"github.com/wardenhq/warden/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	tokens  *TokenStore
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenStore, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, auditor: auditor, logger: logger}
}

// Login validates credentials and issues a bearer token. Failed logins are
// indistinguishable to the caller regardless of whether the user exists.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = shared.CanonicalUsername(username)
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(0, "auth.login", "user", username, fmt.Sprintf("User %s login failed", username)))
		return "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(account.ID, "auth.login", "user", username, fmt.Sprintf("User %s login failed", username)))
		return "", shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(ctx, account.ID)
	if err != nil {
		return "", err
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Granted(account.ID, "auth.login", "user", username, fmt.Sprintf("User %s logged in successfully", username)))
	return token, nil
}

// ResolveIdentity turns a presented bearer token into the acting identity.
func (s *Service) ResolveIdentity(ctx context.Context, token string) (*shared.Identity, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	identity, err := s.repo.IdentityByUserID(ctx, userID)
	if err != nil {
		// Token outlived the user record; treat as an unestablished identity.
		return nil, shared.ErrUnauthorized
	}
	return identity, nil
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
