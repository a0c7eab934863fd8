package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/memory"
)

func TestPermissionCRUD(t *testing.T) {
	_, svc, _ := newRoleFixture(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreatePermissionInput{Name: "roles-list"})
	require.NoError(t, err)
	require.Equal(t, "api", p.Guard().Value())

	_, err = svc.Create(ctx, CreatePermissionInput{Name: "roles-list", Guard: "api"})
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)

	id, _ := p.ID()
	_, err = svc.Update(ctx, UpdatePermissionInput{ID: id.Value(), Name: strPtr("roles-index")})
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	moved, err := svc.Update(ctx, UpdatePermissionInput{ID: id.Value(), Guard: strPtr("web")})
	require.NoError(t, err)
	require.Equal(t, "web", moved.Guard().Value())

	shown, err := svc.Show(ctx, id.Value())
	require.NoError(t, err)
	require.Equal(t, "roles-list", shown.Name().Value())

	require.NoError(t, svc.Delete(ctx, id.Value()))
	_, err = svc.Show(ctx, id.Value())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPermissionCreateRejectsBlankName(t *testing.T) {
	_, svc, _ := newRoleFixture(t)
	_, err := svc.Create(context.Background(), CreatePermissionInput{Name: "   "})
	require.ErrorIs(t, err, apperr.ErrInvalidValue)
}

func TestListPermissionsFilterAndDefaults(t *testing.T) {
	_, svc, _ := newRoleFixture(t,
		"sales-list", "sales-view", "sales-create", "user-list", "user-view",
		"roles-list", "roles-view", "category-list", "category-view", "returns-list", "returns-view",
	)
	ctx := context.Background()

	all, err := svc.List(ctx, ListPermissionsInput{})
	require.NoError(t, err)
	require.Equal(t, 11, all.Total)
	require.Equal(t, 10, all.PerPage)
	require.Len(t, all.Items, 10)
	require.Equal(t, 2, all.LastPage())

	sales, err := svc.List(ctx, ListPermissionsInput{Name: "sales"})
	require.NoError(t, err)
	require.Equal(t, 3, sales.Total)
}

func TestUpdatePermissionEventCarriesCanonicalID(t *testing.T) {
	events := &recordingPublisher{}
	svc := NewPermissionService(memory.NewStore().Permissions(), Hooks{Events: events})
	ctx := context.Background()
	p, err := svc.Create(ctx, CreatePermissionInput{Name: "sales-view"})
	require.NoError(t, err)
	id, _ := p.ID()

	_, err = svc.Update(ctx, UpdatePermissionInput{ID: "0" + id.Value(), Guard: strPtr("web")})
	require.NoError(t, err)
	require.Equal(t, []string{"permission.created", "permission.updated"}, events.types())
	require.Equal(t, id.Value(), events.events[1].SubjectID)
}
