package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	CreateRole(ctx context.Context, name string, tier int) (Role, error)
	EnsureSeedRoles(ctx context.Context) error
}

// Service handles role business logic.
type Service struct {
	repo    RepositoryPort
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, logger: logger}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole fetches one role by id.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.repo.GetRole(ctx, id)
}

// CreateRole inserts a new role at the restricted tier. New roles start with
// no privilege; only the seeded admin tier administers policy.
func (s *Service) CreateRole(ctx context.Context, actor *shared.Identity, name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "role.create", "role", "", "Role creation failed. Role name not provided"))
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	role, err := s.repo.CreateRole(ctx, name, shared.TierRestricted)
	if err != nil {
		msg := fmt.Sprintf("Role creation failed for role %s", name)
		if errors.Is(err, shared.ErrConflict) {
			msg = fmt.Sprintf("Role creation failed. Role %s already exists", name)
		}
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "role.create", "role", name, msg))
		return Role{}, err
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Granted(actorID(actor), "role.create", "role", name, fmt.Sprintf("Role %s created successfully", name)))
	return role, nil
}

// EnsureSeedRoles guarantees the three reserved roles exist and that the
// default role is resolvable. User creation depends on this precondition, so
// a failure here is fatal at startup rather than per-call.
func (s *Service) EnsureSeedRoles(ctx context.Context) error {
	if err := s.repo.EnsureSeedRoles(ctx); err != nil {
		return fmt.Errorf("roles: seed: %w", err)
	}
	if _, err := s.repo.GetRoleByName(ctx, NameStaff); err != nil {
		return fmt.Errorf("roles: default role %q not found after seeding: %w", NameStaff, err)
	}
	return nil
}

func actorID(actor *shared.Identity) int64 {
	if actor == nil {
		return 0
	}
	return actor.UserID
}
