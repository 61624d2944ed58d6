package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/shared"
)

type mockRepository struct {
	roles     map[int64]Role
	nextID    int64
	seedErr   error
	seedRuns  int
	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{roles: make(map[int64]Role), nextID: 1}
}

func (m *mockRepository) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	for id := int64(1); id < m.nextID; id++ {
		if r, ok := m.roles[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepository) GetRole(ctx context.Context, id int64) (Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return Role{}, shared.ErrNotFound
	}
	return r, nil
}

func (m *mockRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return Role{}, shared.ErrNotFound
}

func (m *mockRepository) CreateRole(ctx context.Context, name string, tier int) (Role, error) {
	if m.createErr != nil {
		return Role{}, m.createErr
	}
	if _, err := m.GetRoleByName(ctx, name); err == nil {
		return Role{}, shared.ErrConflict
	}
	r := Role{ID: m.nextID, Name: name, Tier: tier}
	m.roles[r.ID] = r
	m.nextID++
	return r, nil
}

func (m *mockRepository) EnsureSeedRoles(ctx context.Context) error {
	m.seedRuns++
	if m.seedErr != nil {
		return m.seedErr
	}
	for _, seed := range []struct {
		name string
		tier int
	}{
		{NameStaff, shared.TierRestricted},
		{NameSupervisor, shared.TierElevated},
		{NameAdmin, shared.TierAdmin},
	} {
		if _, err := m.GetRoleByName(ctx, seed.name); errors.Is(err, shared.ErrNotFound) {
			if _, err := m.CreateRole(ctx, seed.name, seed.tier); err != nil {
				return err
			}
		}
	}
	return nil
}

type captureRecorder struct {
	entries []audit.Entry
}

func (c *captureRecorder) Record(ctx context.Context, entry audit.Entry) error {
	c.entries = append(c.entries, entry)
	return nil
}

func TestCreateRoleStartsAtRestrictedTier(t *testing.T) {
	repo := newMockRepository()
	recorder := &captureRecorder{}
	svc := NewService(repo, recorder, nil)

	actor := &shared.Identity{UserID: 3, Capabilities: shared.CapabilitiesForTier(shared.TierAdmin)}
	role, err := svc.CreateRole(context.Background(), actor, "auditor")
	require.NoError(t, err)
	assert.Equal(t, "auditor", role.Name)
	assert.Equal(t, shared.TierRestricted, role.Tier)
	assert.Equal(t, audit.OutcomeGranted, recorder.entries[len(recorder.entries)-1].Outcome)
}

func TestCreateRoleRejectsBlankName(t *testing.T) {
	recorder := &captureRecorder{}
	svc := NewService(newMockRepository(), recorder, nil)

	_, err := svc.CreateRole(context.Background(), nil, "   ")
	require.ErrorIs(t, err, shared.ErrValidation)
	require.NotEmpty(t, recorder.entries)
	assert.Equal(t, audit.OutcomeDenied, recorder.entries[0].Outcome)
}

func TestCreateRoleDuplicateNameConflicts(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	_, err := svc.CreateRole(context.Background(), nil, "auditor")
	require.NoError(t, err)

	_, err = svc.CreateRole(context.Background(), nil, "auditor")
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestCreateRoleFailureAuditMatchesCause(t *testing.T) {
	repo := newMockRepository()
	recorder := &captureRecorder{}
	svc := NewService(repo, recorder, nil)

	_, err := svc.CreateRole(context.Background(), nil, "auditor")
	require.NoError(t, err)
	_, err = svc.CreateRole(context.Background(), nil, "auditor")
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Contains(t, recorder.entries[len(recorder.entries)-1].Message, "already exists")

	repo.createErr = shared.ErrUnavailable
	_, err = svc.CreateRole(context.Background(), nil, "reviewer")
	require.ErrorIs(t, err, shared.ErrUnavailable)
	assert.NotContains(t, recorder.entries[len(recorder.entries)-1].Message, "already exists")
}

func TestEnsureSeedRolesIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil)

	require.NoError(t, svc.EnsureSeedRoles(context.Background()))
	require.NoError(t, svc.EnsureSeedRoles(context.Background()))

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, 2, repo.seedRuns)
}

func TestEnsureSeedRolesFailsWhenStoreBroken(t *testing.T) {
	repo := newMockRepository()
	repo.seedErr = errors.New("connection refused")
	svc := NewService(repo, nil, nil)

	err := svc.EnsureSeedRoles(context.Background())
	require.Error(t, err)
}

func TestRoleCapabilitiesFollowTier(t *testing.T) {
	staff := Role{Name: NameStaff, Tier: shared.TierRestricted}
	supervisor := Role{Name: NameSupervisor, Tier: shared.TierElevated}
	admin := Role{Name: NameAdmin, Tier: shared.TierAdmin}

	assert.False(t, staff.Capabilities().Has(shared.CapViewPolicy))
	assert.False(t, staff.Capabilities().Has(shared.CapViewAudit))

	assert.True(t, supervisor.Capabilities().Has(shared.CapViewPolicy))
	assert.True(t, supervisor.Capabilities().Has(shared.CapAssignRole))
	assert.False(t, supervisor.Capabilities().Has(shared.CapMutatePolicy))
	assert.False(t, supervisor.Capabilities().Has(shared.CapViewAudit))

	assert.True(t, admin.Capabilities().Has(shared.CapMutatePolicy))
	assert.True(t, admin.Capabilities().Has(shared.CapViewAudit))
}
