package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-rbac/internal/infrastructure/memory"
)

type userFixture struct {
	svc    *UserService
	roles  *RoleService
	index  *fakeIndex
	events *recordingPublisher
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	store := memory.NewStore()
	roles := NewRoleService(store.Roles(), store.Permissions(), Hooks{})
	for _, n := range []string{"admin", "cajero"} {
		_, err := roles.Create(context.Background(), CreateRoleInput{Name: n})
		require.NoError(t, err)
	}
	_, err := roles.Create(context.Background(), CreateRoleInput{Name: "web-only", Guard: "web"})
	require.NoError(t, err)

	index := &fakeIndex{}
	events := &recordingPublisher{}
	svc := NewUserService(store.Users(), store.Roles(), index, vo.GuardOrDefault(""), Hooks{Events: events})
	return &userFixture{svc: svc, roles: roles, index: index, events: events}
}

func TestShowUserOnEmptyStore(t *testing.T) {
	f := newUserFixture(t)
	_, err := f.svc.Show(context.Background(), "999")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateUser(t *testing.T) {
	f := newUserFixture(t)
	u, err := f.svc.Create(context.Background(), CreateUserInput{
		Name: "Carla", Email: "CARLA@farmacia.com", Password: "password123", Roles: []string{"cajero", "cajero"},
	})
	require.NoError(t, err)
	require.Equal(t, "carla@farmacia.com", u.Email().Value())
	require.Equal(t, []string{"cajero"}, u.Roles().Names())
	require.True(t, u.Password().Verify("password123"))

	id, _ := u.ID()
	require.Equal(t, "carla@farmacia.com", f.index.indexed[id.Value()])
	require.Equal(t, []string{"user.created"}, f.events.types())
}

func TestCreateUserValidation(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateUserInput{Name: "C", Email: "c@farmacia.com", Password: "password123"})
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	_, err = f.svc.Create(ctx, CreateUserInput{Name: "Carla", Email: "c@farmacia.com", Password: "short"})
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	_, err = f.svc.Create(ctx, CreateUserInput{
		Name: "Carla", Email: "c@farmacia.com", Password: "password123", Roles: []string{"admin", "ghost", "web-only"},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidRoleReference)
	require.Equal(t, []string{"ghost", "web-only"}, apperr.RefsOf(err))
	require.Empty(t, f.index.indexed)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	in := CreateUserInput{Name: "Carla", Email: "carla@farmacia.com", Password: "password123"}
	_, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, in)
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestUpdateUserPartial(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	u, err := f.svc.Create(ctx, CreateUserInput{Name: "Carla", Email: "carla@farmacia.com", Password: "password123"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateUserInput{Name: "Pedro", Email: "pedro@farmacia.com", Password: "password123"})
	require.NoError(t, err)
	id, _ := u.ID()

	_, err = f.svc.Update(ctx, UpdateUserInput{ID: id.Value(), Email: strPtr("pedro@farmacia.com")})
	require.ErrorIs(t, err, apperr.ErrAlreadyExists)

	roles := []string{"admin"}
	updated, err := f.svc.Update(ctx, UpdateUserInput{ID: id.Value(), Name: strPtr("Carla Ruiz"), Roles: &roles})
	require.NoError(t, err)
	require.Equal(t, "Carla Ruiz", updated.Name().Value())
	require.Equal(t, "carla@farmacia.com", updated.Email().Value())
	require.True(t, updated.HasRole("admin"))
	require.True(t, updated.Password().Verify("password123"))

	changed, err := f.svc.Update(ctx, UpdateUserInput{ID: id.Value(), Password: strPtr("new-password")})
	require.NoError(t, err)
	require.True(t, changed.Password().Verify("new-password"))
}

func TestDeleteUser(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	u, err := f.svc.Create(ctx, CreateUserInput{Name: "Carla", Email: "carla@farmacia.com", Password: "password123"})
	require.NoError(t, err)
	id, _ := u.ID()

	require.NoError(t, f.svc.Delete(ctx, id.Value()))
	require.Equal(t, []string{id.Value()}, f.index.deleted)
	require.ErrorIs(t, f.svc.Delete(ctx, id.Value()), apperr.ErrNotFound)
}

func TestListAndSearchUsers(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	for _, e := range []string{"a@farmacia.com", "b@farmacia.com", "c@other.com"} {
		_, err := f.svc.Create(ctx, CreateUserInput{Name: "User", Email: e, Password: "password123"})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, ListInput{PerPage: -1})
	require.NoError(t, err)
	require.Equal(t, 20, page.PerPage)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 1, page.LastPage())

	hits, err := f.svc.Search(ctx, "farmacia", 0)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	f.svc.Index = nil
	hits, err = f.svc.Search(ctx, "farmacia", 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestPublisherFailureDoesNotFailUseCase(t *testing.T) {
	f := newUserFixture(t)
	f.events.err = context.Canceled
	_, err := f.svc.Create(context.Background(), CreateUserInput{Name: "Carla", Email: "carla@farmacia.com", Password: "password123"})
	require.NoError(t, err)
}
