package valueobject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-rbac/internal/domain/apperr"
)

func TestEmailNormalizesAndValidates(t *testing.T) {
	e, err := NewEmail("  Admin@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", e.Value())

	for _, raw := range []string{"not-an-email", "", "   ", "a@", "@b.com"} {
		_, err := NewEmail(raw)
		require.ErrorIs(t, err, apperr.ErrInvalidValue, raw)
	}
}

func TestUserNameMinimumLength(t *testing.T) {
	_, err := NewUserName(" a ")
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	n, err := NewUserName("  Jo ")
	require.NoError(t, err)
	require.Equal(t, "Jo", n.Value())

	other, _ := NewUserName("JO")
	require.True(t, n.Equals(other))
}

func TestRoleAndPermissionNamesRejectBlank(t *testing.T) {
	_, err := NewRoleName("  ")
	require.ErrorIs(t, err, apperr.ErrInvalidValue)
	_, err = NewPermissionName("")
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	r, err := NewRoleName(" editor ")
	require.NoError(t, err)
	require.Equal(t, "editor", r.Value())
}

func TestGuardName(t *testing.T) {
	_, err := NewGuardName(" ")
	require.ErrorIs(t, err, apperr.ErrInvalidValue)
	require.Equal(t, DefaultGuard, GuardOrDefault("").Value())
	require.Equal(t, "web", GuardOrDefault(" web ").Value())
}

func TestID(t *testing.T) {
	cases := map[string]bool{
		"1":                                      true,
		"0042":                                   true,
		"0":                                      false,
		"-3":                                     false,
		"abc":                                    false,
		"":                                       false,
		"3f2504e0-4f89-11d3-9a0c-0305e82c3301":   true,
		"3F2504E0-4F89-11D3-9A0C-0305E82C3301":   true,
		"3f2504e04f8911d39a0c0305e82c3301":       false,
		"{3f2504e0-4f89-11d3-9a0c-0305e82c3301}": false,
	}
	for raw, ok := range cases {
		_, err := NewID(raw)
		if ok {
			require.NoError(t, err, raw)
		} else {
			require.ErrorIs(t, err, apperr.ErrInvalidValue, raw)
		}
	}

	id, err := NewID("0042")
	require.NoError(t, err)
	require.Equal(t, "42", id.Value())

	_, err = IDFromInt(0)
	require.ErrorIs(t, err, apperr.ErrInvalidValue)
}

func TestPasswordFromPlainVerifies(t *testing.T) {
	p, err := PasswordFromPlain("secret123")
	require.NoError(t, err)
	require.NotContains(t, p.Hash(), "secret123")
	require.True(t, p.Verify("secret123"))
	require.False(t, p.Verify("secret123x"))
	require.False(t, p.Verify("secret123 "))
	require.Equal(t, "[redacted]", p.String())
}

func TestPasswordRules(t *testing.T) {
	_, err := PasswordFromPlain("short")
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	_, err = PasswordFromPlain(strings.Repeat("a", 80))
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	_, err = PasswordFromHash("")
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	orig, err := PasswordFromPlain("password123")
	require.NoError(t, err)
	restored, err := PasswordFromHash(orig.Hash())
	require.NoError(t, err)
	require.True(t, restored.Verify("password123"))
}

func TestRoleSet(t *testing.T) {
	s, err := NewRoleSet([]string{"admin", " admin", "editor"})
	require.NoError(t, err)
	require.Equal(t, []string{"admin", "editor"}, s.Names())

	_, err = NewRoleSet([]string{"admin", ""})
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	s, err = s.Add("viewer")
	require.NoError(t, err)
	s, err = s.Add("viewer")
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	require.True(t, s.Contains("viewer"))

	s = s.Remove("admin").Remove("missing")
	require.Equal(t, "editor, viewer", s.String())
}

func TestAuthToken(t *testing.T) {
	_, err := NewAuthToken("  ")
	require.ErrorIs(t, err, apperr.ErrInvalidValue)

	tok, err := NewAuthToken(" abc.def ")
	require.NoError(t, err)
	require.Equal(t, "abc.def", tok.Value())
}
