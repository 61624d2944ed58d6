package users

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/roles"
	"github.com/wardenhq/warden/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, username, passwordHash string, roleID int64) (User, error)
	SetUserRole(ctx context.Context, userID, roleID int64) error
}

// RoleDirectory resolves roles for registration and assignment.
type RoleDirectory interface {
	GetRole(ctx context.Context, id int64) (roles.Role, error)
	GetRoleByName(ctx context.Context, name string) (roles.Role, error)
}

// Service handles user business logic.
type Service struct {
	repo    RepositoryPort
	roles   RoleDirectory
	auditor audit.Recorder
	logger  *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, roleDir RoleDirectory, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, roles: roleDir, auditor: auditor, logger: logger}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser registers an account with the default restricted role. The
// seed roles are guaranteed at startup, so a missing default role here is a
// deployment fault, not a caller error.
func (s *Service) CreateUser(ctx context.Context, username, password string) (User, error) {
	username = shared.CanonicalUsername(username)
	if username == "" || password == "" {
		return User{}, fmt.Errorf("%w: username and password required", shared.ErrValidation)
	}
	staff, err := s.roles.GetRoleByName(ctx, roles.NameStaff)
	if err != nil {
		return User{}, fmt.Errorf("users: default role %q not found, roles must be pre-seeded: %w", roles.NameStaff, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, username, string(hash), staff.ID)
	if err != nil {
		return User{}, err
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Granted(user.ID, "user.create", "user", username, fmt.Sprintf("User %s created successfully", username)))
	return user, nil
}

// AssignRole sets the target user's role. The actor needs the role-assign
// capability; the restricted tier is barred from assigning.
func (s *Service) AssignRole(ctx context.Context, actor *shared.Identity, userID, roleID int64) error {
	if !actor.Can(shared.CapAssignRole) {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "user.assign_role", "user", fmt.Sprintf("%d", userID),
			fmt.Sprintf("Access denied to assign role %d for user %d", roleID, userID)))
		return shared.ErrForbidden
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "user.assign_role", "user", fmt.Sprintf("%d", userID), "User or Role not found"))
		return err
	}
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "user.assign_role", "role", fmt.Sprintf("%d", roleID), "User or Role not found"))
		return err
	}
	if err := s.repo.SetUserRole(ctx, userID, role.ID); err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "user.assign_role", "user", fmt.Sprintf("%d", userID),
			fmt.Sprintf("Role %d assignment failed for user %d", roleID, userID)))
		return err
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Granted(actorID(actor), "user.assign_role", "user", fmt.Sprintf("%d", userID),
		fmt.Sprintf("Role %d assigned for user %d", roleID, userID)))
	return nil
}

func actorID(actor *shared.Identity) int64 {
	if actor == nil {
		return 0
	}
	return actor.UserID
}
