package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

// UserRepository defines the interface for user persistence.
// Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	FindByID(ctx context.Context, id vo.ID) (*entity.User, error)
	FindByEmail(ctx context.Context, email vo.Email) (*entity.User, error)
	Paginate(ctx context.Context, page, perPage int) ([]*entity.User, error)
	Count(ctx context.Context) (int, error)
	// Save inserts users without an ID and updates the others. A duplicate
	// email is reported as apperr.AlreadyExists.
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
	Delete(ctx context.Context, id vo.ID) error
}
