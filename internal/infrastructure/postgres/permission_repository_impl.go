package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	"github.com/oksasatya/go-ddd-rbac/internal/domain/repository"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

type PermissionRepository struct {
	pool *pgxpool.Pool
}

func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

const permissionSelect = `SELECT id::text, name, guard_name, created_at, updated_at FROM permissions`

func (r *PermissionRepository) FindByID(ctx context.Context, id vo.ID) (*entity.Permission, error) {
	key, ok := uuidOf(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, permissionSelect+` WHERE id = $1`, key)
}

func (r *PermissionRepository) FindByName(ctx context.Context, name vo.PermissionName, guard vo.GuardName) (*entity.Permission, error) {
	return r.findOne(ctx, permissionSelect+` WHERE name = $1 AND guard_name = $2`, name.Value(), guard.Value())
}

func (r *PermissionRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Permission, error) {
	p, err := scanPermission(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PermissionRepository) ExistingNames(ctx context.Context, names []string, guard vo.GuardName) ([]string, error) {
	if len(names) == 0 {
		return []string{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT name FROM permissions WHERE guard_name = $1 AND name = ANY($2::text[])`,
		guard.Value(), names)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// nameFilter renders the optional case-insensitive name match starting at
// placeholder $n.
func nameFilter(filter repository.PermissionFilter, n int) (string, []any) {
	needle := strings.TrimSpace(filter.Name)
	if needle == "" {
		return "", nil
	}
	return ` WHERE name ILIKE '%' || $` + strconv.Itoa(n) + ` || '%'`, []any{needle}
}

func (r *PermissionRepository) Paginate(ctx context.Context, page, perPage int, filter repository.PermissionFilter) ([]*entity.Permission, error) {
	where, args := nameFilter(filter, 3)
	args = append([]any{perPage, offset(page, perPage)}, args...)
	rows, err := r.pool.Query(ctx, permissionSelect+where+` ORDER BY created_at, id LIMIT $1 OFFSET $2`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*entity.Permission{}
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PermissionRepository) Count(ctx context.Context, filter repository.PermissionFilter) (int, error) {
	where, args := nameFilter(filter, 1)
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM permissions`+where, args...).Scan(&n)
	return n, err
}

func (r *PermissionRepository) Save(ctx context.Context, p *entity.Permission) (*entity.Permission, error) {
	dup := func() error {
		return apperr.AlreadyExists("A permission with name '%s' and guard '%s' already exists.", p.Name(), p.Guard())
	}
	var (
		key                  string
		createdAt, updatedAt time.Time
		err                  error
	)
	if id, ok := p.ID(); ok {
		k, valid := uuidOf(id)
		if !valid {
			return nil, apperr.NotFound("Permission with ID %s not found.", id)
		}
		// Links from roles of another guard do not survive a guard move.
		err = r.pool.QueryRow(ctx, `
			WITH moved AS (
				UPDATE permissions SET guard_name = $2, updated_at = NOW()
				WHERE id = $1
				RETURNING id, created_at, updated_at
			), detached AS (
				DELETE FROM role_permissions rp
				USING roles ro, moved
				WHERE rp.permission_id = moved.id AND ro.id = rp.role_id AND ro.guard_name <> $2
			)
			SELECT id::text, created_at, updated_at FROM moved
		`, k, p.Guard().Value()).Scan(&key, &createdAt, &updatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Permission with ID %s not found.", id)
		}
	} else {
		err = r.pool.QueryRow(ctx, `
			INSERT INTO permissions (name, guard_name)
			VALUES ($1, $2)
			RETURNING id::text, created_at, updated_at
		`, p.Name().Value(), p.Guard().Value()).Scan(&key, &createdAt, &updatedAt)
	}
	if err != nil {
		return nil, translate(err, dup)
	}

	id, err := vo.NewID(key)
	if err != nil {
		return nil, err
	}
	saved := entity.ReconstitutePermission(id, p.Name(), p.Guard())
	saved.CreatedAt, saved.UpdatedAt = createdAt, updatedAt
	return saved, nil
}

func (r *PermissionRepository) Delete(ctx context.Context, id vo.ID) error {
	key, ok := uuidOf(id)
	if !ok {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, key)
	return err
}

func scanPermission(row pgx.Row) (*entity.Permission, error) {
	var (
		rawID, rawName, rawGuard string
		createdAt, updatedAt     time.Time
	)
	if err := row.Scan(&rawID, &rawName, &rawGuard, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	id, err := vo.NewID(rawID)
	if err != nil {
		return nil, err
	}
	name, err := vo.NewPermissionName(rawName)
	if err != nil {
		return nil, err
	}
	guard, err := vo.NewGuardName(rawGuard)
	if err != nil {
		return nil, err
	}
	p := entity.ReconstitutePermission(id, name, guard)
	p.CreatedAt, p.UpdatedAt = createdAt, updatedAt
	return p, nil
}

var _ repository.PermissionRepository = (*PermissionRepository)(nil)
