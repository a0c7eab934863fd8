package valueobject

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

// ID identifies an aggregate. It holds either a positive integer or a canonical
// 36-character UUID, depending on the storage engine.
type ID struct {
	value string
}

func NewID(raw string) (ID, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ID{}, apperr.InvalidValue("ID cannot be empty.")
	}
	if isDigits(v) {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return ID{}, apperr.InvalidValue("ID must be a positive integer: %s", v)
		}
		return ID{value: strconv.FormatUint(n, 10)}, nil
	}
	if len(v) == 36 {
		if u, err := uuid.Parse(v); err == nil {
			return ID{value: u.String()}, nil
		}
	}
	return ID{}, apperr.InvalidValue("Invalid ID format: %s", v)
}

func IDFromInt(n int64) (ID, error) {
	if n <= 0 {
		return ID{}, apperr.InvalidValue("ID must be positive.")
	}
	return ID{value: strconv.FormatInt(n, 10)}, nil
}

// MustID is for tests and trusted storage rows.
func MustID(raw string) ID {
	id, err := NewID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

func (i ID) Value() string        { return i.value }
func (i ID) String() string       { return i.value }
func (i ID) Equals(other ID) bool { return i.value == other.value }
func (i ID) IsZero() bool         { return i.value == "" }

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
