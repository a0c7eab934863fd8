package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// UserRepository stores users and their role assignments. Roles are linked by
// name within guard.
type UserRepository struct {
	pool  *pgxpool.Pool
	guard vo.GuardName
}

func NewUserRepository(pool *pgxpool.Pool, guard vo.GuardName) *UserRepository {
	return &UserRepository{pool: pool, guard: guard}
}

const userSelect = `
	SELECT u.id::text, u.name, u.email, u.password_hash, u.created_at, u.updated_at,
		COALESCE(
			(SELECT array_agg(r.name ORDER BY ur.position)
			 FROM user_roles ur JOIN roles r ON r.id = ur.role_id
			 WHERE ur.user_id = u.id),
			'{}'
		)
	FROM users u`

func (r *UserRepository) FindByID(ctx context.Context, id vo.ID) (*entity.User, error) {
	key, ok := uuidOf(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, userSelect+` WHERE u.id = $1`, key)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email vo.Email) (*entity.User, error) {
	return r.findOne(ctx, userSelect+` WHERE u.email = $1`, email.Value())
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *UserRepository) Paginate(ctx context.Context, page, perPage int) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, userSelect+` ORDER BY u.created_at, u.id LIMIT $1 OFFSET $2`, perPage, offset(page, perPage))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	dup := func() error {
		return apperr.AlreadyExists("A user with email '%s' already exists.", u.Email())
	}
	var (
		key                  string
		createdAt, updatedAt time.Time
	)
	if id, ok := u.ID(); ok {
		k, valid := uuidOf(id)
		if !valid {
			return nil, apperr.NotFound("User with ID %s not found.", id)
		}
		err = tx.QueryRow(ctx, `
			UPDATE users SET name = $2, email = $3, password_hash = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING id::text, created_at, updated_at
		`, k, u.Name().Value(), u.Email().Value(), u.Password().Hash()).Scan(&key, &createdAt, &updatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User with ID %s not found.", id)
		}
	} else {
		err = tx.QueryRow(ctx, `
			INSERT INTO users (name, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING id::text, created_at, updated_at
		`, u.Name().Value(), u.Email().Value(), u.Password().Hash()).Scan(&key, &createdAt, &updatedAt)
	}
	if err != nil {
		return nil, translate(err, dup)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, key); err != nil {
		return nil, err
	}
	if names := u.Roles().Names(); len(names) > 0 {
		_, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id, position)
			SELECT $1, r.id, array_position($2::text[], r.name)
			FROM roles r
			WHERE r.guard_name = $3 AND r.name = ANY($2::text[])
		`, key, names, r.guard.Value())
		if err != nil {
			return nil, translate(err, dup)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	id, err := vo.NewID(key)
	if err != nil {
		return nil, err
	}
	saved := entity.ReconstituteUser(id, u.Name(), u.Email(), u.Password(), u.Roles())
	saved.CreatedAt, saved.UpdatedAt = createdAt, updatedAt
	return saved, nil
}

func (r *UserRepository) Delete(ctx context.Context, id vo.ID) error {
	key, ok := uuidOf(id)
	if !ok {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, key)
	return err
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		rawID, rawName, rawEmail, hash string
		createdAt, updatedAt           time.Time
		roleNames                      []string
	)
	if err := row.Scan(&rawID, &rawName, &rawEmail, &hash, &createdAt, &updatedAt, &roleNames); err != nil {
		return nil, err
	}
	id, err := vo.NewID(rawID)
	if err != nil {
		return nil, err
	}
	name, err := vo.NewUserName(rawName)
	if err != nil {
		return nil, err
	}
	email, err := vo.NewEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	password, err := vo.PasswordFromHash(hash)
	if err != nil {
		return nil, err
	}
	roles, err := vo.NewRoleSet(roleNames)
	if err != nil {
		return nil, err
	}
	u := entity.ReconstituteUser(id, name, email, password, roles)
	u.CreatedAt, u.UpdatedAt = createdAt, updatedAt
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
