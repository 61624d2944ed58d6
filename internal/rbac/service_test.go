package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/roles"
	"github.com/wardenhq/warden/internal/shared"
)

type mockRepository struct {
	perms      map[int64]Permission
	rolePerms  map[int64][]int64
	userRoles  map[int64]int64
	nextPermID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		perms:      make(map[int64]Permission),
		rolePerms:  make(map[int64][]int64),
		userRoles:  make(map[int64]int64),
		nextPermID: 1,
	}
}

func (m *mockRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	result := make([]Permission, 0, len(m.perms))
	for id := int64(1); id < m.nextPermID; id++ {
		if perm, ok := m.perms[id]; ok {
			result = append(result, perm)
		}
	}
	return result, nil
}

func (m *mockRepository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	perm, ok := m.perms[id]
	if !ok {
		return Permission{}, shared.ErrNotFound
	}
	return perm, nil
}

func (m *mockRepository) CreatePermission(ctx context.Context, action, resource string) (Permission, error) {
	perm := Permission{ID: m.nextPermID, Action: action, Resource: resource}
	m.perms[perm.ID] = perm
	m.nextPermID++
	return perm, nil
}

func (m *mockRepository) RolePermissions(ctx context.Context, roleID int64) ([]Permission, error) {
	var result []Permission
	for _, permID := range m.rolePerms[roleID] {
		result = append(result, m.perms[permID])
	}
	return result, nil
}

func (m *mockRepository) AttachPermission(ctx context.Context, roleID, permissionID int64) error {
	for _, existing := range m.rolePerms[roleID] {
		if existing == permissionID {
			return shared.ErrConflict
		}
	}
	m.rolePerms[roleID] = append(m.rolePerms[roleID], permissionID)
	return nil
}

func (m *mockRepository) UserRoleID(ctx context.Context, userID int64) (int64, error) {
	roleID, ok := m.userRoles[userID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return roleID, nil
}

func (m *mockRepository) RoleHasPermission(ctx context.Context, roleID int64, action, resource string) (bool, error) {
	for _, permID := range m.rolePerms[roleID] {
		perm := m.perms[permID]
		if perm.Action == action && perm.Resource == resource {
			return true, nil
		}
	}
	return false, nil
}

type mockRoleDirectory struct {
	roles map[int64]roles.Role
}

func (m *mockRoleDirectory) GetRole(ctx context.Context, id int64) (roles.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return roles.Role{}, shared.ErrNotFound
	}
	return role, nil
}

type captureRecorder struct {
	entries []audit.Entry
}

func (c *captureRecorder) Record(ctx context.Context, entry audit.Entry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func (c *captureRecorder) last(t *testing.T) audit.Entry {
	t.Helper()
	require.NotEmpty(t, c.entries)
	return c.entries[len(c.entries)-1]
}

func seededRoleDirectory() *mockRoleDirectory {
	return &mockRoleDirectory{roles: map[int64]roles.Role{
		1: {ID: 1, Name: roles.NameStaff, Tier: shared.TierRestricted},
		2: {ID: 2, Name: roles.NameSupervisor, Tier: shared.TierElevated},
		3: {ID: 3, Name: roles.NameAdmin, Tier: shared.TierAdmin},
	}}
}

func identityWithTier(userID, roleID int64, tier int) *shared.Identity {
	return &shared.Identity{UserID: userID, RoleID: roleID, Capabilities: shared.CapabilitiesForTier(tier)}
}

func newTestService() (*Service, *mockRepository, *captureRecorder) {
	repo := newMockRepository()
	recorder := &captureRecorder{}
	svc := NewService(repo, seededRoleDirectory(), recorder, nil)
	return svc, repo, recorder
}

func TestAuthorizeAllowsExactMatch(t *testing.T) {
	svc, repo, recorder := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)

	perm, err := svc.CreatePermission(context.Background(), admin, "read", "reports")
	require.NoError(t, err)
	require.NoError(t, svc.AssignPermission(context.Background(), admin, 2, perm.ID))

	repo.userRoles[42] = 2

	decision, err := svc.Authorize(context.Background(), admin, 42, "read", "reports")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonGranted, decision.Reason)
	assert.Equal(t, audit.OutcomeGranted, recorder.last(t).Outcome)
}

func TestAuthorizeDeniesMissingPermission(t *testing.T) {
	svc, repo, recorder := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)

	perm, err := svc.CreatePermission(context.Background(), admin, "read", "reports")
	require.NoError(t, err)
	require.NoError(t, svc.AssignPermission(context.Background(), admin, 2, perm.ID))
	repo.userRoles[42] = 2

	decision, err := svc.Authorize(context.Background(), admin, 42, "write", "reports")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonDenied, decision.Reason)
	assert.Equal(t, audit.OutcomeDenied, recorder.last(t).Outcome)
}

func TestAuthorizeIsCaseSensitive(t *testing.T) {
	svc, repo, _ := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)

	perm, err := svc.CreatePermission(context.Background(), admin, "read", "reports")
	require.NoError(t, err)
	require.NoError(t, svc.AssignPermission(context.Background(), admin, 2, perm.ID))
	repo.userRoles[42] = 2

	decision, err := svc.Authorize(context.Background(), admin, 42, "Read", "reports")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestAuthorizeUnknownUserDenies(t *testing.T) {
	svc, _, recorder := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)

	decision, err := svc.Authorize(context.Background(), admin, 99, "read", "reports")
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonUserNotFound, decision.Reason)
	assert.Equal(t, audit.OutcomeDenied, recorder.last(t).Outcome)
}

func TestAuthorizeRejectsEmptyFields(t *testing.T) {
	svc, _, _ := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)

	_, err := svc.Authorize(context.Background(), admin, 42, "", "reports")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAssignPermissionRequiresAdminTier(t *testing.T) {
	svc, _, recorder := newTestService()
	staff := identityWithTier(5, 1, shared.TierRestricted)
	supervisor := identityWithTier(6, 2, shared.TierElevated)

	err := svc.AssignPermission(context.Background(), staff, 2, 1)
	require.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, audit.OutcomeDenied, recorder.last(t).Outcome)

	// The elevated tier may view policy but not mutate it.
	err = svc.AssignPermission(context.Background(), supervisor, 2, 1)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestAssignPermissionRepeatedYieldsConflict(t *testing.T) {
	svc, repo, recorder := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)

	perm, err := svc.CreatePermission(context.Background(), admin, "read", "reports")
	require.NoError(t, err)

	require.NoError(t, svc.AssignPermission(context.Background(), admin, 2, perm.ID))
	assert.Equal(t, []int64{perm.ID}, repo.rolePerms[2])

	err = svc.AssignPermission(context.Background(), admin, 2, perm.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, []int64{perm.ID}, repo.rolePerms[2], "permission set must never contain duplicates")
	assert.Equal(t, audit.OutcomeDenied, recorder.last(t).Outcome)
}

func TestAssignPermissionMissingRoleOrPermission(t *testing.T) {
	svc, _, _ := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)

	err := svc.AssignPermission(context.Background(), admin, 77, 1)
	require.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.AssignPermission(context.Background(), admin, 2, 123)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRolePermissionsRequiresViewCapability(t *testing.T) {
	svc, _, recorder := newTestService()
	staff := identityWithTier(5, 1, shared.TierRestricted)

	_, err := svc.RolePermissions(context.Background(), staff, 2)
	require.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, audit.OutcomeDenied, recorder.last(t).Outcome)
}

func TestRolePermissionsResolvesAttachedSet(t *testing.T) {
	svc, _, _ := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)
	supervisor := identityWithTier(6, 2, shared.TierElevated)

	perm, err := svc.CreatePermission(context.Background(), admin, "read", "reports")
	require.NoError(t, err)
	require.NoError(t, svc.AssignPermission(context.Background(), admin, 2, perm.ID))

	perms, err := svc.RolePermissions(context.Background(), supervisor, 2)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "read", perms[0].Action)
	assert.Equal(t, "reports", perms[0].Resource)

	_, err = svc.RolePermissions(context.Background(), supervisor, 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListPermissionsRequiresViewCapability(t *testing.T) {
	svc, _, _ := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)
	staff := identityWithTier(5, 1, shared.TierRestricted)

	_, err := svc.CreatePermission(context.Background(), admin, "read", "reports")
	require.NoError(t, err)

	_, err = svc.ListPermissions(context.Background(), staff)
	require.ErrorIs(t, err, shared.ErrForbidden)

	perms, err := svc.ListPermissions(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, perms, 1)
}

func TestCreatePermissionAllowsDuplicatePairs(t *testing.T) {
	svc, _, _ := newTestService()
	admin := identityWithTier(1, 3, shared.TierAdmin)

	first, err := svc.CreatePermission(context.Background(), admin, "read", "reports")
	require.NoError(t, err)
	second, err := svc.CreatePermission(context.Background(), admin, "read", "reports")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}
