package memory

import (
	"context"
	"strings"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) FindByID(_ context.Context, id vo.ID) (*entity.User, error) {
	key, ok := rowID(id)
	if !ok {
		return nil, nil
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.users[key]
	if !ok {
		return nil, nil
	}
	return row.toEntity()
}

func (r *UserRepository) FindByEmail(_ context.Context, email vo.Email) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.users {
		if row.email == email.Value() {
			return row.toEntity()
		}
	}
	return nil, nil
}

func (r *UserRepository) Paginate(_ context.Context, page, perPage int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	keys := sortedKeys(r.s.users)
	from, to := window(len(keys), page, perPage)
	out := make([]*entity.User, 0, to-from)
	for _, k := range keys[from:to] {
		u, err := r.s.users[k].toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepository) Count(context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

func (r *UserRepository) Save(_ context.Context, u *entity.User) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var key int64
	id, persisted := u.ID()
	if persisted {
		var ok bool
		if key, ok = rowID(id); !ok || r.s.users[key] == nil {
			return nil, apperr.NotFound("User with ID %s not found.", id)
		}
	}
	email := u.Email().Value()
	for k, row := range r.s.users {
		if k != key && strings.EqualFold(row.email, email) {
			return nil, apperr.AlreadyExists("A user with email '%s' already exists.", email)
		}
	}

	now := r.s.now()
	row := &userRow{
		name:      u.Name().Value(),
		email:     email,
		hash:      u.Password().Hash(),
		roles:     u.Roles().Names(),
		createdAt: now,
		updatedAt: now,
	}
	if persisted {
		row.id = key
		row.createdAt = r.s.users[key].createdAt
	} else {
		row.id = r.s.nextID()
	}
	r.s.users[row.id] = row
	return row.toEntity()
}

func (r *UserRepository) Delete(_ context.Context, id vo.ID) error {
	key, ok := rowID(id)
	if !ok {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, key)
	return nil
}

func (row *userRow) toEntity() (*entity.User, error) {
	id, err := vo.IDFromInt(row.id)
	if err != nil {
		return nil, err
	}
	name, err := vo.NewUserName(row.name)
	if err != nil {
		return nil, err
	}
	email, err := vo.NewEmail(row.email)
	if err != nil {
		return nil, err
	}
	password, err := vo.PasswordFromHash(row.hash)
	if err != nil {
		return nil, err
	}
	roles, err := vo.NewRoleSet(row.roles)
	if err != nil {
		return nil, err
	}
	u := entity.ReconstituteUser(id, name, email, password, roles)
	u.CreatedAt, u.UpdatedAt = row.createdAt, row.updatedAt
	return u, nil
}
