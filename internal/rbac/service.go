package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/roles"
	"github.com/wardenhq/warden/internal/shared"
)

// RepositoryPort defines data access methods for the authorization core.
type RepositoryPort interface {
	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (Permission, error)
	CreatePermission(ctx context.Context, action, resource string) (Permission, error)
	RolePermissions(ctx context.Context, roleID int64) ([]Permission, error)
	AttachPermission(ctx context.Context, roleID, permissionID int64) error
	UserRoleID(ctx context.Context, userID int64) (int64, error)
	RoleHasPermission(ctx context.Context, roleID int64, action, resource string) (bool, error)
}

// RoleDirectory resolves roles for precondition checks.
type RoleDirectory interface {
	GetRole(ctx context.Context, id int64) (roles.Role, error)
}

// Service is the RBAC decision engine and policy administration core.
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

// Authorize decides whether the requested user may perform (action, resource).
// The test is exact-string, case-sensitive membership in the permission set
// of the user's role. Every call appends one audit entry matching the result.
func (s *Service) Authorize(ctx context.Context, actor *shared.Identity, requestedUserID int64, action, resource string) (Decision, error) {
	action = strings.TrimSpace(action)
	resource = strings.TrimSpace(resource)
	if action == "" || resource == "" {
		return Decision{}, fmt.Errorf("%w: action and resource required", shared.ErrValidation)
	}
	roleID, err := s.repo.UserRoleID(ctx, requestedUserID)
	if err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "rbac.authorize", "user", fmt.Sprintf("%d", requestedUserID), ReasonUserNotFound))
		if errors.Is(err, shared.ErrNotFound) {
			return Decision{Allowed: false, Reason: ReasonUserNotFound}, shared.ErrNotFound
		}
		return Decision{}, err
	}
	allowed, err := s.repo.RoleHasPermission(ctx, roleID, action, resource)
	if err != nil {
		return Decision{}, err
	}
	target := fmt.Sprintf("%s:%s", action, resource)
	if allowed {
		audit.Append(ctx, s.auditor, s.logger, audit.Granted(actorID(actor), "rbac.authorize", "permission", target, ReasonGranted))
		return Decision{Allowed: true, Reason: ReasonGranted}, nil
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "rbac.authorize", "permission", target, ReasonDenied))
	return Decision{Allowed: false, Reason: ReasonDenied}, nil
}

// CreatePermission inserts a permission. Any authenticated caller may create
// permissions; duplicates are allowed by convention.
func (s *Service) CreatePermission(ctx context.Context, actor *shared.Identity, action, resource string) (Permission, error) {
	action = strings.TrimSpace(action)
	resource = strings.TrimSpace(resource)
	if action == "" || resource == "" {
		return Permission{}, fmt.Errorf("%w: action and resource required", shared.ErrValidation)
	}
	perm, err := s.repo.CreatePermission(ctx, action, resource)
	if err != nil {
		return Permission{}, err
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Granted(actorID(actor), "permission.create", "permission", fmt.Sprintf("%d", perm.ID),
		fmt.Sprintf("Permission %d created", perm.ID)))
	return perm, nil
}

// ListPermissions returns all permissions. Requires the policy-view
// capability.
func (s *Service) ListPermissions(ctx context.Context, actor *shared.Identity) ([]Permission, error) {
	if !actor.Can(shared.CapViewPolicy) {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "permission.list", "permission", "", "Access denied to view permissions"))
		return nil, shared.ErrForbidden
	}
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Granted(actorID(actor), "permission.list", "permission", "", "Permissions viewed"))
	return perms, nil
}

// RolePermissions resolves the permission list attached to a role. Requires
// the policy-view capability.
func (s *Service) RolePermissions(ctx context.Context, actor *shared.Identity, roleID int64) ([]Permission, error) {
	if !actor.Can(shared.CapViewPolicy) {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "role.permissions.view", "role", fmt.Sprintf("%d", roleID), "Access denied to view permissions"))
		return nil, shared.ErrForbidden
	}
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "role.permissions.view", "role", fmt.Sprintf("%d", roleID), "Role not found"))
		return nil, err
	}
	perms, err := s.repo.RolePermissions(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Granted(actorID(actor), "role.permissions.view", "role", fmt.Sprintf("%d", roleID),
		fmt.Sprintf("Permissions viewed for role %d", roleID)))
	return perms, nil
}

// AssignPermission attaches a permission to a role. Requires the
// policy-mutate capability, held only by the admin tier. A repeated
// assignment yields ErrConflict and leaves the set unchanged.
func (s *Service) AssignPermission(ctx context.Context, actor *shared.Identity, roleID, permissionID int64) error {
	target := fmt.Sprintf("%d", roleID)
	if !actor.Can(shared.CapMutatePolicy) {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "role.permissions.assign", "role", target,
			fmt.Sprintf("Access denied to assign permission %d for role %d", permissionID, roleID)))
		return shared.ErrForbidden
	}
	if _, err := s.roles.GetRole(ctx, roleID); err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "role.permissions.assign", "role", target, "Role or Permission not found"))
		return err
	}
	if _, err := s.repo.GetPermission(ctx, permissionID); err != nil {
		audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "role.permissions.assign", "permission", fmt.Sprintf("%d", permissionID), "Role or Permission not found"))
		return err
	}
	if err := s.repo.AttachPermission(ctx, roleID, permissionID); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			audit.Append(ctx, s.auditor, s.logger, audit.Denied(actorID(actor), "role.permissions.assign", "role", target,
				fmt.Sprintf("Permission %d already assigned for role %d", permissionID, roleID)))
		}
		return err
	}
	audit.Append(ctx, s.auditor, s.logger, audit.Granted(actorID(actor), "role.permissions.assign", "role", target,
		fmt.Sprintf("Permission %d assigned for role %d", permissionID, roleID)))
	return nil
}

func actorID(actor *shared.Identity) int64 {
	if actor == nil {
		return 0
	}
	return actor.UserID
}
