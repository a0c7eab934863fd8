package valueobject

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

const minPasswordLen = 8

// Password holds a bcrypt hash. The plain text is never retained.
type Password struct {
	hash string
}

// PasswordFromPlain validates the length and hashes the password.
func PasswordFromPlain(plain string) (Password, error) {
	plain = strings.TrimSpace(plain)
	if utf8.RuneCountInString(plain) < minPasswordLen {
		return Password{}, apperr.InvalidValue("Password must be at least %d characters.", minPasswordLen)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Password{}, apperr.InvalidValue("Password must be at most 72 bytes.")
		}
		return Password{}, err
	}
	return Password{hash: string(b)}, nil
}

// PasswordFromHash wraps a hash loaded from storage.
func PasswordFromHash(hash string) (Password, error) {
	if hash == "" {
		return Password{}, apperr.InvalidValue("Password hash cannot be empty.")
	}
	return Password{hash: hash}, nil
}

// Verify compares plain, untrimmed, against the stored hash in constant time.
func (p Password) Verify(plain string) bool {
	if p.hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.hash), []byte(plain)) == nil
}

// Hash is exposed for persistence adapters only.
func (p Password) Hash() string { return p.hash }

func (p Password) String() string { return "[redacted]" }
