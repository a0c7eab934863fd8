package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
	vo "github.com/oksasatya/go-ddd-rbac/internal/domain/valueobject"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// translate maps constraint violations to domain errors. onUnique builds the
// AlreadyExists error for the row being written.
func translate(err error, onUnique func() error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return onUnique()
		case codeForeignKeyViolation:
			return apperr.Wrap(apperr.KindNotFound, err, "Referenced record no longer exists.")
		}
	}
	return err
}

// uuidOf returns the canonical uuid text of id. Numeric ids never match a row
// in this store.
func uuidOf(id vo.ID) (string, bool) {
	u, err := uuid.Parse(id.Value())
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
