package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/application"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/memory"
)

func newSeeder() *Seeder {
	store := memory.NewStore()
	guard := vo.GuardOrDefault("")
	return &Seeder{
		Services:    application.NewServices(store.Users(), store.Roles(), store.Permissions(), nil, nil, guard, application.Hooks{}),
		Users:       store.Users(),
		Roles:       store.Roles(),
		Permissions: store.Permissions(),
		Guard:       guard,
	}
}

func TestCatalogue(t *testing.T) {
	names := Catalogue()
	require.Len(t, names, 120)
	require.Contains(t, names, "manager-users")
	require.Contains(t, names, "manager-permissions")
	require.Contains(t, names, "returns-authorize")

	seen := map[string]bool{}
	for _, n := range names {
		require.False(t, seen[n], n)
		seen[n] = true
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newSeeder()

	rep, err := s.Run(ctx, Options{})
	require.NoError(t, err)
	require.Equal(t, Report{Permissions: 120, Roles: 5, Users: 5}, rep)

	rep, err = s.Run(ctx, Options{})
	require.NoError(t, err)
	require.Equal(t, Report{}, rep)

	count, err := s.Permissions.Count(ctx, repo.PermissionFilter{})
	require.NoError(t, err)
	require.Equal(t, 120, count)
}

func TestRoleGrants(t *testing.T) {
	ctx := context.Background()
	s := newSeeder()
	_, err := s.Run(ctx, Options{SkipUsers: true})
	require.NoError(t, err)

	admin, err := s.Roles.FindByName(ctx, mustRole(t, "admin"), s.Guard)
	require.NoError(t, err)
	require.ElementsMatch(t, Catalogue(), admin.Permissions())

	cajero, err := s.Roles.FindByName(ctx, mustRole(t, "cajero"), s.Guard)
	require.NoError(t, err)
	require.ElementsMatch(t, cashierPermissions, cajero.Permissions())

	auditor, err := s.Roles.FindByName(ctx, mustRole(t, "auditor"), s.Guard)
	require.NoError(t, err)
	require.Empty(t, auditor.Permissions())

	n, err := s.Users.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRunKeepsManualGrantsAndResetsPassword(t *testing.T) {
	ctx := context.Background()
	s := newSeeder()
	_, err := s.Run(ctx, Options{})
	require.NoError(t, err)

	cajero, err := s.Roles.FindByName(ctx, mustRole(t, "cajero"), s.Guard)
	require.NoError(t, err)
	id, _ := cajero.ID()
	extra := append(cajero.Permissions(), "report-view")
	_, err = s.Services.Roles.Update(ctx, application.UpdateRoleInput{ID: id.Value(), Permissions: &extra})
	require.NoError(t, err)

	_, err = s.Run(ctx, Options{Password: "another-secret"})
	require.NoError(t, err)

	cajero, err = s.Roles.FindByName(ctx, mustRole(t, "cajero"), s.Guard)
	require.NoError(t, err)
	require.True(t, cajero.HasPermission("report-view"))

	email, err := vo.NewEmail("cajero@farmacia.com")
	require.NoError(t, err)
	u, err := s.Users.FindByEmail(ctx, email)
	require.NoError(t, err)
	require.True(t, u.Password().Verify("another-secret"))
	require.Equal(t, []string{"cajero"}, u.Roles().Names())
}

func mustRole(t *testing.T, raw string) vo.RoleName {
	t.Helper()
	n, err := vo.NewRoleName(raw)
	require.NoError(t, err)
	return n
}
