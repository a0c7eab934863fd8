package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

const defaultUsersPerPage = 20

// UserIndexer keeps a searchable copy of users. Failures are logged, not returned
// from writes.
type UserIndexer interface {
	IndexUser(ctx context.Context, u *entity.User) error
	DeleteUser(ctx context.Context, id string) error
	SearchUsers(ctx context.Context, query string, size int) ([]map[string]any, error)
}

type UserService struct {
	Users repo.UserRepository
	Roles repo.RoleRepository
	Index UserIndexer
	// Guard scopes the roles a user may hold.
	Guard vo.GuardName
	Hooks
}

func NewUserService(users repo.UserRepository, roles repo.RoleRepository, index UserIndexer, guard vo.GuardName, hooks Hooks) *UserService {
	if guard.Value() == "" {
		guard = vo.GuardOrDefault("")
	}
	return &UserService{Users: users, Roles: roles, Index: index, Guard: guard, Hooks: hooks}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Roles    []string
}

type UpdateUserInput struct {
	ID       string
	Name     *string
	Email    *string
	Password *string
	Roles    *[]string
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (_ *entity.User, err error) {
	defer s.observe("user.create", time.Now(), &err)

	name, err := vo.NewUserName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := vo.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := vo.PasswordFromPlain(in.Password)
	if err != nil {
		return nil, err
	}
	roles, err := s.validateRoles(ctx, in.Roles)
	if err != nil {
		return nil, err
	}

	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("A user with email '%s' already exists.", email)
	}

	saved, err := s.Users.Save(ctx, entity.NewUser(name, email, password, roles))
	if err != nil {
		return nil, err
	}
	s.index(ctx, saved)
	id, _ := saved.ID()
	s.publish(ctx, "user.created", id.Value(), map[string]any{
		"name":  name.Value(),
		"email": email.Value(),
		"roles": roles.Names(),
	})
	return saved, nil
}

func (s *UserService) Update(ctx context.Context, in UpdateUserInput) (_ *entity.User, err error) {
	defer s.observe("user.update", time.Now(), &err)

	u, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	id, _ := u.ID()

	if in.Name != nil {
		name, err := vo.NewUserName(*in.Name)
		if err != nil {
			return nil, err
		}
		u.Rename(name)
	}
	if in.Email != nil {
		email, err := vo.NewEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if !email.Equals(u.Email()) {
			other, err := s.Users.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, apperr.AlreadyExists("A user with email '%s' already exists.", email)
			}
			u.ChangeEmail(email)
		}
	}
	if in.Password != nil {
		password, err := vo.PasswordFromPlain(*in.Password)
		if err != nil {
			return nil, err
		}
		u.ChangePassword(password)
	}
	if in.Roles != nil {
		roles, err := s.validateRoles(ctx, *in.Roles)
		if err != nil {
			return nil, err
		}
		u.AssignRoles(roles)
	}

	saved, err := s.Users.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	s.index(ctx, saved)
	s.publish(ctx, "user.updated", id.Value(), map[string]any{
		"email": saved.Email().Value(),
		"roles": saved.Roles().Names(),
	})
	return saved, nil
}

func (s *UserService) Delete(ctx context.Context, rawID string) (err error) {
	defer s.observe("user.delete", time.Now(), &err)

	u, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	id, _ := u.ID()
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	if s.Index != nil {
		if ierr := s.Index.DeleteUser(ctx, id.Value()); ierr != nil {
			s.log().WithError(ierr).WithField("user_id", id.Value()).Warn("remove user from index failed")
		}
	}
	s.publish(ctx, "user.deleted", id.Value(), map[string]any{"email": u.Email().Value()})
	return nil
}

func (s *UserService) Show(ctx context.Context, rawID string) (*entity.User, error) {
	return s.load(ctx, rawID)
}

func (s *UserService) List(ctx context.Context, in ListInput) (_ *Page[*entity.User], err error) {
	defer s.observe("user.list", time.Now(), &err)

	page, perPage := in.normalize(defaultUsersPerPage)
	return loadPage(ctx, page, perPage,
		func(ctx context.Context) ([]*entity.User, error) { return s.Users.Paginate(ctx, page, perPage) },
		s.Users.Count,
	)
}

// Search queries the user index. It returns an empty result when no index is configured.
func (s *UserService) Search(ctx context.Context, query string, size int) ([]map[string]any, error) {
	if s.Index == nil {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > maxPerPage {
		size = defaultUsersPerPage
	}
	return s.Index.SearchUsers(ctx, query, size)
}

func (s *UserService) load(ctx context.Context, rawID string) (*entity.User, error) {
	id, err := vo.NewID(rawID)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User with ID %s not found.", id)
	}
	return u, nil
}

// validateRoles builds the role set and fails unless every role exists in s.Guard.
func (s *UserService) validateRoles(ctx context.Context, names []string) (vo.RoleSet, error) {
	set, err := vo.NewRoleSet(names)
	if err != nil {
		return vo.RoleSet{}, err
	}
	if set.Len() == 0 {
		return set, nil
	}
	found, err := s.Roles.FindByNames(ctx, set.Names(), s.Guard)
	if err != nil {
		return vo.RoleSet{}, err
	}
	known := make(map[string]struct{}, len(found))
	for _, r := range found {
		known[r.Name().Value()] = struct{}{}
	}
	var missing []string
	for _, n := range set.Names() {
		if _, ok := known[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return vo.RoleSet{}, apperr.InvalidRoleReference(missing)
	}
	return set, nil
}

func (s *UserService) index(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexUser(ctx, u); err != nil {
		id, _ := u.ID()
		s.log().WithError(err).WithField("user_id", id.Value()).Warn("index user failed")
	}
}
