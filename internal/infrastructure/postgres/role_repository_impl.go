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

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

const roleSelect = `
	SELECT ro.id::text, ro.name, ro.guard_name, ro.created_at, ro.updated_at,
		COALESCE(
			(SELECT array_agg(p.name ORDER BY rp.position)
			 FROM role_permissions rp JOIN permissions p ON p.id = rp.permission_id
			 WHERE rp.role_id = ro.id),
			'{}'
		)
	FROM roles ro`

func (r *RoleRepository) FindByID(ctx context.Context, id vo.ID) (*entity.Role, error) {
	key, ok := uuidOf(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, roleSelect+` WHERE ro.id = $1`, key)
}

func (r *RoleRepository) FindByName(ctx context.Context, name vo.RoleName, guard vo.GuardName) (*entity.Role, error) {
	return r.findOne(ctx, roleSelect+` WHERE ro.name = $1 AND ro.guard_name = $2`, name.Value(), guard.Value())
}

func (r *RoleRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return role, err
}

func (r *RoleRepository) FindByNames(ctx context.Context, names []string, guard vo.GuardName) ([]*entity.Role, error) {
	if len(names) == 0 {
		return []*entity.Role{}, nil
	}
	return r.list(ctx, roleSelect+` WHERE ro.guard_name = $1 AND ro.name = ANY($2::text[]) ORDER BY ro.name`, guard.Value(), names)
}

func (r *RoleRepository) Paginate(ctx context.Context, page, perPage int) ([]*entity.Role, error) {
	return r.list(ctx, roleSelect+` ORDER BY ro.created_at, ro.id LIMIT $1 OFFSET $2`, perPage, offset(page, perPage))
}

func (r *RoleRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Role, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*entity.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *RoleRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM roles`).Scan(&n)
	return n, err
}

// Save writes the role row and replaces its permission links in one transaction.
func (r *RoleRepository) Save(ctx context.Context, role *entity.Role) (*entity.Role, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	dup := func() error {
		return apperr.AlreadyExists("A role with name '%s' and guard '%s' already exists.", role.Name(), role.Guard())
	}
	var (
		key                  string
		createdAt, updatedAt time.Time
	)
	if id, ok := role.ID(); ok {
		k, valid := uuidOf(id)
		if !valid {
			return nil, apperr.NotFound("Role with ID %s not found.", id)
		}
		// Users only link roles of their own guard, so a guard change drops
		// every user link of this role.
		err = tx.QueryRow(ctx, `
			WITH prev AS (
				SELECT id, guard_name FROM roles WHERE id = $1 FOR UPDATE
			), detached AS (
				DELETE FROM user_roles ur USING prev
				WHERE ur.role_id = prev.id AND prev.guard_name <> $2
			)
			UPDATE roles ro SET guard_name = $2, updated_at = NOW()
			FROM prev
			WHERE ro.id = prev.id
			RETURNING ro.id::text, ro.created_at, ro.updated_at
		`, k, role.Guard().Value()).Scan(&key, &createdAt, &updatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Role with ID %s not found.", id)
		}
	} else {
		err = tx.QueryRow(ctx, `
			INSERT INTO roles (name, guard_name)
			VALUES ($1, $2)
			RETURNING id::text, created_at, updated_at
		`, role.Name().Value(), role.Guard().Value()).Scan(&key, &createdAt, &updatedAt)
	}
	if err != nil {
		return nil, translate(err, dup)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, key); err != nil {
		return nil, err
	}
	var kept []string
	if names := role.Permissions(); len(names) > 0 {
		rows, err := tx.Query(ctx, `
			INSERT INTO role_permissions (role_id, permission_id, position)
			SELECT $1, p.id, array_position($2::text[], p.name)
			FROM permissions p
			WHERE p.guard_name = $3 AND p.name = ANY($2::text[])
			RETURNING position
		`, key, names, role.Guard().Value())
		if err != nil {
			return nil, translate(err, dup)
		}
		positions, err := pgx.CollectRows(rows, pgx.RowTo[int])
		if err != nil {
			return nil, translate(err, dup)
		}
		kept = keepPositions(names, positions)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	id, err := vo.NewID(key)
	if err != nil {
		return nil, err
	}
	saved := entity.ReconstituteRole(id, role.Name(), role.Guard(), kept)
	saved.CreatedAt, saved.UpdatedAt = createdAt, updatedAt
	return saved, nil
}

// Delete removes the role. Foreign keys cascade to role_permissions and user_roles.
func (r *RoleRepository) Delete(ctx context.Context, id vo.ID) error {
	key, ok := uuidOf(id)
	if !ok {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, key)
	return err
}

// keepPositions returns names whose 1-based position was stored, in order.
func keepPositions(names []string, positions []int) []string {
	stored := make(map[int]struct{}, len(positions))
	for _, p := range positions {
		stored[p] = struct{}{}
	}
	out := make([]string, 0, len(positions))
	for i, n := range names {
		if _, ok := stored[i+1]; ok {
			out = append(out, n)
		}
	}
	return out
}

func scanRole(row pgx.Row) (*entity.Role, error) {
	var (
		rawID, rawName, rawGuard string
		createdAt, updatedAt     time.Time
		perms                    []string
	)
	if err := row.Scan(&rawID, &rawName, &rawGuard, &createdAt, &updatedAt, &perms); err != nil {
		return nil, err
	}
	id, err := vo.NewID(rawID)
	if err != nil {
		return nil, err
	}
	name, err := vo.NewRoleName(rawName)
	if err != nil {
		return nil, err
	}
	guard, err := vo.NewGuardName(rawGuard)
	if err != nil {
		return nil, err
	}
	role := entity.ReconstituteRole(id, name, guard, perms)
	role.CreatedAt, role.UpdatedAt = createdAt, updatedAt
	return role, nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
